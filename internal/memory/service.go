package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/parrot-platform/parrot/internal/completion"
	"github.com/parrot-platform/parrot/internal/metrics"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service runs the recall pipeline on top of a Store and the managed gateways.
type Service struct {
	store     Store
	embedder  Embedder
	converser completion.Converser
	history   *HistoryStore
	opts      Options
}

// NewService creates a new memory service. history may be nil.
func NewService(store Store, embedder Embedder, converser completion.Converser, history *HistoryStore, opts Options) *Service {
	return &Service{
		store:     store,
		embedder:  embedder,
		converser: converser,
		history:   history,
		opts:      opts.withDefaults(),
	}
}

// Options returns the effective settings of the service.
func (s *Service) Options() Options {
	return s.opts
}

// Insert validates and stores a batch of pre-embedded records.
func (s *Service) Insert(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, invalidf("empty batch")
	}
	for i, rec := range records {
		if strings.TrimSpace(rec.Text) == "" {
			return 0, invalidf("record %d: text is empty", i)
		}
		if strings.TrimSpace(rec.Username) == "" {
			return 0, invalidf("record %d: username is empty", i)
		}
		if len(rec.Embedding) != s.opts.Dimension {
			return 0, invalidf("record %d: embedding has %d dimensions, want %d", i, len(rec.Embedding), s.opts.Dimension)
		}
	}

	if err := s.store.InsertBatch(ctx, records); err != nil {
		return 0, stageErr(ErrStoreWrite, err)
	}
	metrics.RecordsInsertedTotal.Add(float64(len(records)))
	return len(records), nil
}

// Nearest returns stored records ranked by distance to query, sliced to [offset, offset+limit).
func (s *Service) Nearest(ctx context.Context, query []float32, offset, limit int) ([]Record, error) {
	if offset < 0 || limit < 0 {
		return nil, invalidf("offset and limit must be non-negative")
	}
	if len(query) != s.opts.Dimension {
		return nil, invalidf("query embedding has %d dimensions, want %d", len(query), s.opts.Dimension)
	}

	records, err := s.store.Nearest(ctx, query, offset, limit)
	if err != nil {
		return nil, stageErr(ErrStoreRead, err)
	}
	return records, nil
}

// Window returns up to after records later than ts, then up to before records at or before ts.
func (s *Service) Window(ctx context.Context, ts time.Time, before, after int) ([]Record, error) {
	if before < 0 || after < 0 {
		return nil, invalidf("before and after must be non-negative")
	}

	records, err := s.store.Window(ctx, ts.UTC(), before, after)
	if err != nil {
		return nil, stageErr(ErrStoreRead, err)
	}
	return records, nil
}

// Answer embeds the question, retrieves the closest records and asks the chat model
// to answer from them. Every stage fails fast.
func (s *Service) Answer(ctx context.Context, username, query string) (*Answer, error) {
	ans, err := s.answer(ctx, query)
	metrics.AnswersTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	if s.history != nil && username != "" {
		ex := Exchange{Question: query, Response: ans.Response, AskedAt: time.Now().UTC()}
		if err := s.history.Append(ctx, username, ex, s.opts.HistoryMax, s.opts.HistoryTTL); err != nil {
			slog.Warn("memory: failed to append exchange history", "error", err, "username", username)
		}
	}
	return ans, nil
}

func (s *Service) answer(ctx context.Context, query string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalidf("query is empty")
	}

	start := time.Now()
	vec, err := s.embedder.Embed(ctx, query)
	observeStage("embed", start)
	if err != nil {
		return nil, stageErr(ErrEmbedding, err)
	}

	start = time.Now()
	rows, err := s.store.Nearest(ctx, vec, 0, s.opts.MatchLimit)
	observeStage("search", start)
	if err != nil {
		return nil, stageErr(ErrStoreRead, err)
	}

	matches := FormatMatches(rows)
	req := BuildPrompt(s.opts, query, matches)

	start = time.Now()
	reply, err := s.converser.Converse(ctx, req)
	observeStage("complete", start)
	if err != nil {
		return nil, stageErr(ErrCompletion, err)
	}

	return &Answer{Matches: matches, Response: reply}, nil
}

// History returns the user's most recent exchanges, oldest first.
func (s *Service) History(ctx context.Context, username string, limit int) ([]Exchange, error) {
	if s.history == nil {
		return []Exchange{}, nil
	}
	if limit <= 0 || limit > s.opts.HistoryMax {
		limit = s.opts.HistoryMax
	}
	exchanges, err := s.history.Recent(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", username, err)
	}
	return exchanges, nil
}

func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, ErrEmbedding):
		return "embedding"
	case errors.Is(err, ErrStoreRead):
		return "store_read"
	case errors.Is(err, ErrCompletion):
		return "completion"
	default:
		return "error"
	}
}
