// Package assistant wraps a hosted language model for two best-effort
// helpers: spam-score commentary on a draft and template scaffolding from a
// topic. Neither call is retried and neither is needed for sending.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ignite/mailflow/internal/mailing"
	"github.com/ignite/mailflow/internal/pkg/logger"
)

// User-visible answers of AnalyzeSpamScore when no analysis is available.
const (
	MsgMissingKey = "API Key missing. Cannot analyze."
	MsgConnError  = "Error connecting to AI service."
	MsgNoAnalysis = "Could not generate analysis."
)

// snippetLen bounds the body text sent for spam analysis.
const snippetLen = 500

// ErrUnavailable is returned when no model credentials are configured.
var ErrUnavailable = errors.New("API Key missing")

// Request is one prompt for a Backend.
type Request struct {
	Prompt    string
	JSON      bool // ask the model for a bare JSON object
	MaxTokens int
}

// Backend sends a prompt to a model and returns its text answer.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// GeneratedTemplate is the model's answer to GenerateTemplate.
type GeneratedTemplate struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Assistant runs the prompts against a Backend. A nil backend makes every
// call report the assistant as unavailable.
type Assistant struct {
	backend Backend
	policy  *bluemonday.Policy
}

// New creates an Assistant over backend, which may be nil.
func New(backend Backend) *Assistant {
	return &Assistant{backend: backend, policy: emailPolicy()}
}

// Available reports whether a backend is configured.
func (a *Assistant) Available() bool {
	return a != nil && a.backend != nil
}

// AnalyzeSpamScore asks for a 1-10 deliverability score with one
// recommendation. It always returns displayable text.
func (a *Assistant) AnalyzeSpamScore(ctx context.Context, subject, html string) string {
	if !a.Available() {
		return MsgMissingKey
	}

	body, err := mailing.PlainText(html)
	if err != nil {
		body = html
	}
	prompt := fmt.Sprintf(`Analyze the following email subject and body for spam triggers.
Act as an email deliverability expert.

Subject: %s
Body Snippet: %s...

Provide a short response (max 50 words) giving it a score out of 10 (10 being clean, 1 being spammy) and one key recommendation to improve inbox placement.`,
		subject, mailing.Truncate(body, snippetLen))

	answer, err := a.backend.Complete(ctx, Request{Prompt: prompt, MaxTokens: 256})
	if err != nil {
		logger.With("assistant").Error("spam analysis failed", "backend", a.backend.Name(), "error", err)
		return MsgConnError
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return MsgNoAnalysis
	}
	return answer
}

// GenerateTemplate asks for a subject and an inline-styled HTML body about
// topic. The HTML is sanitized before it is returned.
func (a *Assistant) GenerateTemplate(ctx context.Context, topic string) (GeneratedTemplate, error) {
	if !a.Available() {
		return GeneratedTemplate{}, ErrUnavailable
	}

	prompt := fmt.Sprintf(`Create a professional HTML email template for: %s.
Return ONLY a JSON object with two keys: "subject" and "html".
The HTML should be modern, responsive, and use inline CSS suitable for email clients.`, topic)

	answer, err := a.backend.Complete(ctx, Request{Prompt: prompt, JSON: true, MaxTokens: 4000})
	if err != nil {
		return GeneratedTemplate{}, fmt.Errorf("%s request: %w", a.backend.Name(), err)
	}

	var out GeneratedTemplate
	if err := json.Unmarshal([]byte(stripFences(answer)), &out); err != nil {
		return GeneratedTemplate{}, fmt.Errorf("parsing generated template: %w", err)
	}
	out.HTML = a.policy.Sanitize(out.HTML)
	return out, nil
}

// stripFences removes a Markdown code fence around a JSON answer.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// emailPolicy allows the markup email clients render: tables, layout
// attributes and inline styles. Scripts and event handlers are dropped.
func emailPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").Globally()
	p.AllowAttrs("align", "valign", "bgcolor", "width", "height", "border", "cellpadding", "cellspacing", "role").Globally()
	p.AllowElements("center", "font", "span", "div")
	p.AllowAttrs("color", "face", "size").OnElements("font")
	return p
}
