package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks Config for production-critical problems in the API process.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateIngest is Validate for the ingest worker, which neither signs
// tokens nor calls the completion gateway.
func (c *Config) ValidateIngest() error {
	return c.validate(false)
}

func (c *Config) validate(api bool) error {
	var errs []string

	// JWT secret
	if api && len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Buckets
	if c.Buckets.Audio == "" {
		errs = append(errs, "AUDIO_BUCKET is required")
	}
	if c.Buckets.Transcripts == "" {
		errs = append(errs, "S3_BUCKET_NAME is required")
	}
	if c.Buckets.Audio != "" && c.Buckets.Audio == c.Buckets.Transcripts {
		errs = append(errs, "AUDIO_BUCKET and S3_BUCKET_NAME must differ")
	}

	// Providers
	switch c.Embedding.Provider {
	case "bedrock":
	case "openai":
		if c.Embedding.OpenAIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
	default:
		errs = append(errs, fmt.Sprintf("EMBEDDING_PROVIDER must be bedrock or openai, got %q", c.Embedding.Provider))
	}
	if api {
		switch c.Completion.Provider {
		case "bedrock":
		case "openai":
			if c.Completion.OpenAIKey == "" {
				errs = append(errs, "OPENAI_API_KEY is required when COMPLETION_PROVIDER=openai")
			}
		default:
			errs = append(errs, fmt.Sprintf("COMPLETION_PROVIDER must be bedrock or openai, got %q", c.Completion.Provider))
		}
	}

	// Model parameters
	if c.Embedding.Dimension < 1 {
		errs = append(errs, fmt.Sprintf("EMBEDDING_DIMENSION must be positive, got %d", c.Embedding.Dimension))
	}
	if c.Completion.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("COMPLETION_MAX_TOKENS must be positive, got %d", c.Completion.MaxTokens))
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 1 {
		errs = append(errs, fmt.Sprintf("COMPLETION_TEMPERATURE must be 0-1, got %g", c.Completion.Temperature))
	}
	if c.Completion.TopP < 0 || c.Completion.TopP > 1 {
		errs = append(errs, fmt.Sprintf("COMPLETION_TOP_P must be 0-1, got %g", c.Completion.TopP))
	}
	if c.Retrieval.MatchLimit < 1 {
		errs = append(errs, fmt.Sprintf("RETRIEVAL_MATCH_LIMIT must be positive, got %d", c.Retrieval.MatchLimit))
	}
	if c.Ingest.Interval <= 0 {
		errs = append(errs, fmt.Sprintf("INGEST_INTERVAL must be positive, got %s", c.Ingest.Interval))
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}
	if c.Ingest.MetricsPort < 1 || c.Ingest.MetricsPort > 65535 {
		errs = append(errs, fmt.Sprintf("INGEST_METRICS_PORT must be 1-65535, got %d", c.Ingest.MetricsPort))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
