package embedding

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/parrot-platform/parrot/internal/completion"
	"github.com/parrot-platform/parrot/internal/config"
)

// New builds the Embedder selected by cfg.Provider.
func New(cfg config.EmbeddingConfig, awsCfg aws.Config) (Embedder, error) {
	switch cfg.Provider {
	case "bedrock":
		return NewBedrockEmbedder(bedrockruntime.NewFromConfig(awsCfg), cfg.Model, cfg.Dimension), nil
	case "openai":
		client := completion.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)
		return NewOpenAIEmbedder(client, cfg.Model, cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
