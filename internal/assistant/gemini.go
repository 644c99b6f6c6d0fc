package assistant

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com"

// Gemini calls the generateContent REST endpoint of the Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  HTTPDoer
}

// NewGemini creates a Gemini backend. Empty baseURL uses the public API.
func NewGemini(apiKey, model, baseURL string, client HTTPDoer) *Gemini {
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	if client == nil {
		client = defaultClient(0)
	}
	return &Gemini{apiKey: apiKey, model: model, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"responseMimeType,omitempty"`
		MaxOutputTokens  int    `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Complete implements Backend.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.JSON {
		payload.GenerationConfig.ResponseMimeType = "application/json"
	}
	payload.GenerationConfig.MaxOutputTokens = req.MaxTokens

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	var resp geminiResponse
	if err := postJSON(ctx, g.client, endpoint, map[string]string{"x-goog-api-key": g.apiKey}, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
