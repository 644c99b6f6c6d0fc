package assistant

import (
	"context"
	"strings"
)

const defaultOpenAIURL = "https://api.openai.com"

// OpenAI calls the chat completions endpoint.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  HTTPDoer
}

// NewOpenAI creates an OpenAI backend. Empty baseURL uses the public API.
func NewOpenAI(apiKey, model, baseURL string, client HTTPDoer) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	if client == nil {
		client = defaultClient(0)
	}
	return &OpenAI{apiKey: apiKey, model: model, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (o *OpenAI) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements Backend.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	payload := openAIRequest{
		Model:       o.model,
		Messages:    []openAIMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: 0.7,
	}
	if req.JSON {
		payload.ResponseFormat = map[string]string{"type": "json_object"}
	}

	var resp openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	if err := postJSON(ctx, o.client, o.baseURL+"/v1/chat/completions", headers, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
