package assistant

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/ignite/mailflow/internal/config"
)

// NewFromConfig builds an Assistant for cfg.Provider. Gemini and OpenAI
// without an API key yield an unavailable assistant rather than an error.
func NewFromConfig(ctx context.Context, cfg config.AIConfig) (*Assistant, error) {
	client := defaultClient(cfg.Timeout())

	switch cfg.Provider {
	case "gemini", "":
		if cfg.APIKey == "" {
			return New(nil), nil
		}
		return New(NewGemini(cfg.APIKey, cfg.Model, cfg.BaseURL, client)), nil
	case "openai":
		if cfg.APIKey == "" {
			return New(nil), nil
		}
		return New(NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, client)), nil
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		return New(NewBedrock(bedrockruntime.NewFromConfig(awsCfg), cfg.Model)), nil
	case "none":
		return New(nil), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
