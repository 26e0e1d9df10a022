package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/parrot-platform/parrot/internal/api"
	"github.com/parrot-platform/parrot/internal/audio"
	"github.com/parrot-platform/parrot/internal/auth"
	"github.com/parrot-platform/parrot/internal/blobstore"
	"github.com/parrot-platform/parrot/internal/completion"
	"github.com/parrot-platform/parrot/internal/config"
	"github.com/parrot-platform/parrot/internal/database"
	"github.com/parrot-platform/parrot/internal/embedding"
	"github.com/parrot-platform/parrot/internal/memory"
	mw "github.com/parrot-platform/parrot/internal/middleware"
	inats "github.com/parrot-platform/parrot/internal/nats"
	iredis "github.com/parrot-platform/parrot/internal/redis"
	"github.com/parrot-platform/parrot/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// Migrations
	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB); err != nil {
			return err
		}
	}

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	memoryRepo := memory.NewPostgresRepository(pool)
	if err := memoryRepo.EnsureDimension(ctx, cfg.Embedding.Dimension); err != nil {
		return err
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisClient.Close()

	// NATS (optional, only reported by readiness here)
	var natsClient *inats.Client
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS, "api")
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer natsClient.Close()
	}

	// Managed model gateways
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("loading aws config: %w", err)
	}
	embedder, err := embedding.New(cfg.Embedding, awsCfg)
	if err != nil {
		return err
	}
	converser, err := completion.New(cfg.Completion, awsCfg)
	if err != nil {
		return err
	}

	// Memory
	history := memory.NewHistoryStore(redisClient)
	memorySvc := memory.NewService(memoryRepo, embedder, converser, history, memory.Options{
		Dimension:     cfg.Embedding.Dimension,
		MatchLimit:    cfg.Retrieval.MatchLimit,
		WindowDefault: cfg.Retrieval.WindowDefaults,
		ModelID:       cfg.Completion.Model,
		Inference: completion.Inference{
			MaxTokens:     cfg.Completion.MaxTokens,
			Temperature:   cfg.Completion.Temperature,
			TopP:          cfg.Completion.TopP,
			StopSequences: []string{},
		},
		HistoryMax: cfg.Retrieval.HistoryMax,
		HistoryTTL: cfg.Retrieval.HistoryTTL,
	})
	memoryHandler := memory.NewHandler(memorySvc)

	// Capture upload
	blobs := blobstore.NewS3Store(s3.NewFromConfig(awsCfg))
	audioHandler := audio.NewHandler(blobs, cfg.Buckets.Audio, cfg.Ingest.DefaultUser)

	// Auth
	jwtManager := auth.NewJWTManager(cfg.JWT.AccessSecret)

	answerLimiter := mw.NewRateLimiter(redisClient, "answer", cfg.RateLimit.AnswerMaxRequests, cfg.RateLimit.AnswerWindowSec)

	checks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, pool) },
		"memories": func(ctx context.Context) error {
			_, err := memoryRepo.Count(ctx)
			return err
		},
		"redis": func(ctx context.Context) error { return iredis.HealthCheck(ctx, redisClient) },
		"nats":  nil,
	}
	if natsClient != nil {
		checks["nats"] = natsClient.HealthCheck
	}

	// Router
	router := api.NewRouter(api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AnswerRateLimiter:  answerLimiter.Middleware,
		Checks:             checks,
	}, api.HandlerSet{
		Answer:        memoryHandler.Answer,
		InsertRecords: memoryHandler.Insert,
		Search:        memoryHandler.Search,
		Window:        memoryHandler.Window,
		History:       memoryHandler.History,

		UploadAudio: audioHandler.Upload,

		AuthMiddleware: auth.Middleware(jwtManager),
	})

	return server.New(cfg.Server, router).Run(ctx)
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
