// Package ingest runs the polling loops that turn uploaded audio into stored memories.
package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	inats "github.com/parrot-platform/parrot/internal/nats"
)

// Loop names, used as log attributes and metric labels.
const (
	LoopAudio      = "audio"
	LoopTranscript = "transcript"
)

// PollFunc performs one pass over a bucket.
type PollFunc func(ctx context.Context) error

// Run calls poll once immediately and then on every tick until ctx is cancelled.
// A failing pass is logged and the loop waits for the next tick.
func Run(ctx context.Context, name string, interval time.Duration, poll PollFunc) error {
	slog.Info("ingest loop started", "loop", name, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := poll(ctx); err != nil && ctx.Err() == nil {
			slog.Error("ingest pass failed", "loop", name, "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("ingest loop stopped", "loop", name)
			return nil
		case <-ticker.C:
		}
	}
}

// EventPublisher announces ingestion progress.
type EventPublisher interface {
	PublishAudioQueued(ctx context.Context, event inats.AudioQueued) error
	PublishTranscriptIngested(ctx context.Context, event inats.TranscriptIngested) error
}

// NopPublisher drops every event. Used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishAudioQueued(context.Context, inats.AudioQueued) error { return nil }

func (NopPublisher) PublishTranscriptIngested(context.Context, inats.TranscriptIngested) error {
	return nil
}

// UsernameFromKey returns the first path segment of key, or def when the key has none.
func UsernameFromKey(key, def string) string {
	if i := strings.Index(key, "/"); i > 0 {
		return key[:i]
	}
	return def
}
