package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/parrot-platform/parrot/internal/blobstore"
	"github.com/parrot-platform/parrot/internal/config"
	"github.com/parrot-platform/parrot/internal/database"
	"github.com/parrot-platform/parrot/internal/embedding"
	"github.com/parrot-platform/parrot/internal/ingest"
	"github.com/parrot-platform/parrot/internal/memory"
	inats "github.com/parrot-platform/parrot/internal/nats"
	"github.com/parrot-platform/parrot/internal/segment"
	itranscribe "github.com/parrot-platform/parrot/internal/transcribe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.ValidateIngest(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("ingest exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
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

	// Events (optional)
	var events ingest.EventPublisher = ingest.NopPublisher{}
	if cfg.NATS.URL != "" {
		natsClient, err := inats.NewClient(ctx, cfg.NATS, "ingest")
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer natsClient.Close()
		events = inats.NewPublisher(natsClient.JetStream())
	}

	// Managed services
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("loading aws config: %w", err)
	}
	embedder, err := embedding.New(cfg.Embedding, awsCfg)
	if err != nil {
		return err
	}
	blobs := blobstore.NewS3Store(s3.NewFromConfig(awsCfg))
	starter := itranscribe.NewAWSStarter(transcribe.NewFromConfig(awsCfg))
	segmenter := segment.NewComprehendSegmenter(comprehend.NewFromConfig(awsCfg))

	// The ingest side only writes; no completion gateway or history is needed.
	memorySvc := memory.NewService(memoryRepo, embedder, nil, nil, memory.Options{
		Dimension: cfg.Embedding.Dimension,
	})

	audioPoller := ingest.NewAudioPoller(blobs, starter, events, ingest.AudioConfig{
		Bucket:           cfg.Buckets.Audio,
		ArchivePrefix:    cfg.Buckets.ArchivePrefix,
		TranscriptBucket: cfg.Buckets.Transcripts,
		LanguageCode:     cfg.Ingest.LanguageCode,
		MaxSpeakers:      cfg.Ingest.MaxSpeakers,
		DefaultUser:      cfg.Ingest.DefaultUser,
	})
	transcriptPoller := ingest.NewTranscriptPoller(blobs, segmenter, embedder, memorySvc, events, ingest.TranscriptConfig{
		Bucket:       cfg.Buckets.Transcripts,
		FailedPrefix: cfg.Buckets.FailedPrefix,
		DefaultUser:  cfg.Ingest.DefaultUser,
	})

	// Prometheus metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Ingest.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ingest.Run(gctx, ingest.LoopAudio, cfg.Ingest.Interval, audioPoller.Poll)
	})
	g.Go(func() error {
		return ingest.Run(gctx, ingest.LoopTranscript, cfg.Ingest.Interval, transcriptPoller.Poll)
	})
	g.Go(func() error {
		slog.Info("starting metrics server", "addr", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler).With("service", "ingest"))
}
