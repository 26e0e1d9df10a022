package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/parrot-platform/parrot/internal/blobstore"
	"github.com/parrot-platform/parrot/internal/memory"
	"github.com/parrot-platform/parrot/internal/metrics"
	inats "github.com/parrot-platform/parrot/internal/nats"
	"github.com/parrot-platform/parrot/internal/segment"
	"github.com/parrot-platform/parrot/internal/transcribe"
)

// Inserter stores a batch of embedded records.
type Inserter interface {
	Insert(ctx context.Context, records []memory.Record) (int, error)
}

// TranscriptConfig configures the transcript loop.
type TranscriptConfig struct {
	Bucket       string
	FailedPrefix string
	DefaultUser  string
}

// TranscriptPoller turns finished transcripts into stored memory records.
type TranscriptPoller struct {
	store     blobstore.Store
	segmenter segment.Segmenter
	embedder  memory.Embedder
	inserter  Inserter
	events    EventPublisher
	cfg       TranscriptConfig
}

// NewTranscriptPoller creates a new transcript poller. events may be nil.
func NewTranscriptPoller(
	store blobstore.Store,
	segmenter segment.Segmenter,
	embedder memory.Embedder,
	inserter Inserter,
	events EventPublisher,
	cfg TranscriptConfig,
) *TranscriptPoller {
	if events == nil {
		events = NopPublisher{}
	}
	return &TranscriptPoller{
		store:     store,
		segmenter: segmenter,
		embedder:  embedder,
		inserter:  inserter,
		events:    events,
		cfg:       cfg,
	}
}

// Poll ingests every transcript document in the bucket, one at a time.
func (p *TranscriptPoller) Poll(ctx context.Context) error {
	keys, err := p.store.List(ctx, p.cfg.Bucket, "")
	if err != nil {
		return fmt.Errorf("listing transcript bucket: %w", err)
	}

	pending := blobstore.ExcludePrefix(blobstore.FilterSuffix(keys, ".json"), p.cfg.FailedPrefix)
	if len(pending) == 0 {
		slog.Debug("no transcripts, waiting", "bucket", p.cfg.Bucket)
		return nil
	}

	for _, key := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		outcome := "success"
		if err := p.process(ctx, key); err != nil {
			outcome = "error"
			if errors.Is(err, transcribe.ErrMalformed) {
				outcome = "failed"
			}
			slog.Error("ingesting transcript", "key", key, "error", err)
		}
		metrics.IngestFilesTotal.WithLabelValues(LoopTranscript, outcome).Inc()
	}
	return nil
}

func (p *TranscriptPoller) process(ctx context.Context, key string) error {
	data, err := p.store.Get(ctx, p.cfg.Bucket, key)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	doc, err := transcribe.Parse(data)
	if err != nil {
		if moveErr := p.store.Move(ctx, p.cfg.Bucket, key, p.cfg.FailedPrefix+key); moveErr != nil {
			return errors.Join(err, fmt.Errorf("quarantining: %w", moveErr))
		}
		return err
	}

	username := UsernameFromKey(key, p.cfg.DefaultUser)
	records, err := p.buildRecords(ctx, doc, username)
	if err != nil {
		return err
	}

	if len(records) > 0 {
		if _, err := p.inserter.Insert(ctx, records); err != nil {
			return fmt.Errorf("inserting %d records: %w", len(records), err)
		}
	}

	if err := p.store.Delete(ctx, p.cfg.Bucket, key); err != nil {
		return fmt.Errorf("deleting ingested transcript: %w", err)
	}

	slog.Info("transcript ingested", "key", key, "username", username, "records", len(records))

	event := inats.TranscriptIngested{
		Bucket:     p.cfg.Bucket,
		Key:        key,
		Username:   username,
		Records:    len(records),
		IngestedAt: time.Now().UTC(),
	}
	if err := p.events.PublishTranscriptIngested(ctx, event); err != nil {
		slog.Warn("publishing transcript ingested event", "key", key, "error", err)
	}
	return nil
}

// buildRecords segments each utterance and embeds every non-blank sentence, in order.
func (p *TranscriptPoller) buildRecords(ctx context.Context, doc *transcribe.Document, username string) ([]memory.Record, error) {
	var records []memory.Record
	for _, utt := range doc.Utterances() {
		sentences, err := p.segmenter.Segment(ctx, utt.Text)
		if err != nil {
			return nil, fmt.Errorf("segmenting transcript: %w", err)
		}
		for _, sentence := range sentences {
			if strings.TrimSpace(sentence) == "" {
				continue
			}
			vec, err := p.embedder.Embed(ctx, sentence)
			if err != nil {
				return nil, fmt.Errorf("embedding sentence: %w", err)
			}
			records = append(records, memory.Record{
				Text:      sentence,
				Embedding: vec,
				Username:  username,
				Speaker:   utt.Speaker,
			})
		}
	}
	return records, nil
}
