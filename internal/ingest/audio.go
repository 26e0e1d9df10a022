package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/parrot-platform/parrot/internal/blobstore"
	"github.com/parrot-platform/parrot/internal/metrics"
	inats "github.com/parrot-platform/parrot/internal/nats"
	"github.com/parrot-platform/parrot/internal/transcribe"
)

// AudioConfig configures the audio loop.
type AudioConfig struct {
	Bucket           string
	ArchivePrefix    string
	TranscriptBucket string
	LanguageCode     string
	MaxSpeakers      int
	DefaultUser      string
}

// AudioPoller archives new audio files and starts their transcription.
type AudioPoller struct {
	store   blobstore.Store
	starter transcribe.Starter
	events  EventPublisher
	cfg     AudioConfig
}

// NewAudioPoller creates a new audio poller. events may be nil.
func NewAudioPoller(store blobstore.Store, starter transcribe.Starter, events EventPublisher, cfg AudioConfig) *AudioPoller {
	if events == nil {
		events = NopPublisher{}
	}
	return &AudioPoller{store: store, starter: starter, events: events, cfg: cfg}
}

// Poll handles every pending .wav file in the audio bucket. An empty listing
// means there is nothing to do until the next tick.
func (p *AudioPoller) Poll(ctx context.Context) error {
	keys, err := p.store.List(ctx, p.cfg.Bucket, "")
	if err != nil {
		return fmt.Errorf("listing audio bucket: %w", err)
	}

	pending := blobstore.ExcludePrefix(blobstore.FilterSuffix(keys, ".wav"), p.cfg.ArchivePrefix)
	if len(pending) == 0 {
		slog.Debug("no audio files, waiting", "bucket", p.cfg.Bucket)
		return nil
	}

	for _, key := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.process(ctx, key); err != nil {
			slog.Error("queueing audio file", "key", key, "error", err)
			metrics.IngestFilesTotal.WithLabelValues(LoopAudio, "error").Inc()
			continue
		}
		metrics.IngestFilesTotal.WithLabelValues(LoopAudio, "success").Inc()
	}
	return nil
}

func (p *AudioPoller) process(ctx context.Context, key string) error {
	archiveKey := p.cfg.ArchivePrefix + key
	if err := p.store.Move(ctx, p.cfg.Bucket, key, archiveKey); err != nil {
		return fmt.Errorf("archiving: %w", err)
	}

	jobName, err := p.starter.Start(ctx, transcribe.Job{
		MediaURI:     blobstore.URI(p.cfg.Bucket, archiveKey),
		LanguageCode: p.cfg.LanguageCode,
		OutputBucket: p.cfg.TranscriptBucket,
		OutputKey:    key + ".json",
		MaxSpeakers:  p.cfg.MaxSpeakers,
	})
	if err != nil {
		// Put the file back so the next tick retries it.
		if restoreErr := p.store.Move(ctx, p.cfg.Bucket, archiveKey, key); restoreErr != nil {
			return errors.Join(fmt.Errorf("starting transcription: %w", err), fmt.Errorf("restoring %s: %w", key, restoreErr))
		}
		return fmt.Errorf("starting transcription: %w", err)
	}

	username := UsernameFromKey(key, p.cfg.DefaultUser)
	slog.Info("audio queued for transcription", "key", key, "job", jobName, "username", username)

	event := inats.AudioQueued{
		Bucket:     p.cfg.Bucket,
		Key:        key,
		ArchiveKey: archiveKey,
		JobName:    jobName,
		Username:   username,
		QueuedAt:   time.Now().UTC(),
	}
	if err := p.events.PublishAudioQueued(ctx, event); err != nil {
		slog.Warn("publishing audio queued event", "key", key, "error", err)
	}
	return nil
}
