package completion

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/parrot-platform/parrot/internal/config"
)

// New builds the Converser selected by cfg.Provider.
func New(cfg config.CompletionConfig, awsCfg aws.Config) (Converser, error) {
	switch cfg.Provider {
	case "bedrock":
		return NewBedrockConverser(bedrockruntime.NewFromConfig(awsCfg)), nil
	case "openai":
		return NewOpenAIConverser(NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
