package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	NATS       NATSConfig
	AWS        AWSConfig
	Buckets    BucketConfig
	Embedding  EmbeddingConfig
	Completion CompletionConfig
	Retrieval  RetrievalConfig
	Ingest     IngestConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
	AutoMigrate    bool
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig is optional; an empty URL disables ingestion events.
type NATSConfig struct {
	URL string
}

type AWSConfig struct {
	Region string
}

type BucketConfig struct {
	Audio         string
	Transcripts   string
	ArchivePrefix string
	FailedPrefix  string
}

type EmbeddingConfig struct {
	Provider      string
	Model         string
	Dimension     int
	OpenAIKey     string
	OpenAIBaseURL string
}

type CompletionConfig struct {
	Provider      string
	Model         string
	MaxTokens     int
	Temperature   float32
	TopP          float32
	OpenAIKey     string
	OpenAIBaseURL string
}

type RetrievalConfig struct {
	MatchLimit     int
	HistoryMax     int
	HistoryTTL     time.Duration
	WindowDefaults int
}

type IngestConfig struct {
	Interval     time.Duration
	DefaultUser  string
	LanguageCode string
	MaxSpeakers  int
	MetricsPort  int
}

type JWTConfig struct {
	AccessSecret string
}

type RateLimitConfig struct {
	AnswerMaxRequests int
	AnswerWindowSec   int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
			AutoMigrate:    k.Bool("db.auto.migrate"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		AWS: AWSConfig{
			Region: k.String("aws.region"),
		},
		Buckets: BucketConfig{
			Audio:         k.String("audio.bucket"),
			Transcripts:   k.String("s3.bucket.name"),
			ArchivePrefix: k.String("archive.prefix"),
			FailedPrefix:  k.String("failed.prefix"),
		},
		Embedding: EmbeddingConfig{
			Provider:      k.String("embedding.provider"),
			Model:         k.String("embedding.model"),
			Dimension:     k.Int("embedding.dimension"),
			OpenAIKey:     k.String("openai.api.key"),
			OpenAIBaseURL: k.String("openai.base.url"),
		},
		Completion: CompletionConfig{
			Provider:      k.String("completion.provider"),
			Model:         k.String("completion.model"),
			MaxTokens:     k.Int("completion.max.tokens"),
			Temperature:   float32(k.Float64("completion.temperature")),
			TopP:          float32(k.Float64("completion.top.p")),
			OpenAIKey:     k.String("openai.api.key"),
			OpenAIBaseURL: k.String("openai.base.url"),
		},
		Retrieval: RetrievalConfig{
			MatchLimit:     k.Int("retrieval.match.limit"),
			HistoryMax:     k.Int("history.max"),
			WindowDefaults: k.Int("retrieval.window.default"),
		},
		Ingest: IngestConfig{
			DefaultUser:  k.String("ingest.default.user"),
			LanguageCode: k.String("ingest.language.code"),
			MaxSpeakers:  k.Int("ingest.max.speakers"),
			MetricsPort:  k.Int("ingest.metrics.port"),
		},
		JWT: JWTConfig{
			AccessSecret: k.String("jwt.access.secret"),
		},
		RateLimit: RateLimitConfig{
			AnswerMaxRequests: k.Int("ratelimit.answer.max"),
			AnswerWindowSec:   k.Int("ratelimit.answer.window"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Completion parameters are only defaulted when unset, so an explicit
	// COMPLETION_TEMPERATURE=0 is kept.
	applyDefaults(cfg, k.Exists("completion.temperature"), k.Exists("completion.top.p"))

	// Parse durations
	cfg.Ingest.Interval, err = parseDuration(k.String("ingest.interval"), "5s")
	if err != nil {
		return nil, fmt.Errorf("parsing ingest interval: %w", err)
	}
	cfg.Retrieval.HistoryTTL, err = parseDuration(k.String("history.ttl"), "168h")
	if err != nil {
		return nil, fmt.Errorf("parsing history ttl: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config, temperatureSet, topPSet bool) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "parrot"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "parrot"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 10
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-west-2"
	}
	if cfg.Buckets.ArchivePrefix == "" {
		cfg.Buckets.ArchivePrefix = "archive/"
	}
	if cfg.Buckets.FailedPrefix == "" {
		cfg.Buckets.FailedPrefix = "failed/"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "bedrock"
	}
	if cfg.Embedding.Model == "" {
		if cfg.Embedding.Provider == "openai" {
			cfg.Embedding.Model = "text-embedding-3-small"
		} else {
			cfg.Embedding.Model = "amazon.titan-embed-text-v2:0"
		}
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 1024
	}
	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = "bedrock"
	}
	if cfg.Completion.Model == "" {
		if cfg.Completion.Provider == "openai" {
			cfg.Completion.Model = "gpt-4o-mini"
		} else {
			cfg.Completion.Model = "anthropic.claude-3-5-haiku-20241022-v1:0"
		}
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 200
	}
	if !temperatureSet {
		cfg.Completion.Temperature = 1
	}
	if !topPSet {
		cfg.Completion.TopP = 0.999
	}
	if cfg.Retrieval.MatchLimit == 0 {
		cfg.Retrieval.MatchLimit = 5
	}
	if cfg.Retrieval.HistoryMax == 0 {
		cfg.Retrieval.HistoryMax = 50
	}
	if cfg.Retrieval.WindowDefaults == 0 {
		cfg.Retrieval.WindowDefaults = 5
	}
	if cfg.Ingest.DefaultUser == "" {
		cfg.Ingest.DefaultUser = "test_user"
	}
	if cfg.Ingest.LanguageCode == "" {
		cfg.Ingest.LanguageCode = "en-US"
	}
	if cfg.Ingest.MetricsPort == 0 {
		cfg.Ingest.MetricsPort = 9100
	}
	if cfg.RateLimit.AnswerMaxRequests == 0 {
		cfg.RateLimit.AnswerMaxRequests = 30
	}
	if cfg.RateLimit.AnswerWindowSec == 0 {
		cfg.RateLimit.AnswerWindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func parseDuration(s, def string) (time.Duration, error) {
	if s == "" {
		s = def
	}
	return time.ParseDuration(s)
}
