package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/parrot-platform/parrot/internal/completion"
)

// memStore is an in-process Store ranking by L2 distance.
type memStore struct {
	mu      sync.Mutex
	rows    []Record
	nextID  int64
	now     func() time.Time
	failOn  string
	failErr error
}

func newMemStore() *memStore {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	return &memStore{now: func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}}
}

func (s *memStore) InsertBatch(_ context.Context, records []Record) error {
	if s.failOn == "insert" {
		return s.failErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.nextID++
		rec.ID = s.nextID
		rec.CreatedAt = s.now()
		s.rows = append(s.rows, rec)
	}
	return nil
}

func (s *memStore) Nearest(_ context.Context, query []float32, offset, limit int) ([]Record, error) {
	if s.failOn == "nearest" {
		return nil, s.failErr
	}
	s.mu.Lock()
	ranked := append([]Record(nil), s.rows...)
	s.mu.Unlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return l2(ranked[i].Embedding, query) < l2(ranked[j].Embedding, query)
	})
	if offset >= len(ranked) {
		return []Record{}, nil
	}
	end := min(offset+limit, len(ranked))
	return ranked[offset:end], nil
}

func (s *memStore) Window(_ context.Context, ts time.Time, before, after int) ([]Record, error) {
	if s.failOn == "window" {
		return nil, s.failErr
	}
	var later, earlier []Record
	for _, rec := range s.rows {
		if rec.CreatedAt.After(ts) {
			later = append(later, rec)
		} else {
			earlier = append(earlier, rec)
		}
	}
	if len(later) > after {
		later = later[:after]
	}
	if len(earlier) > before {
		earlier = earlier[len(earlier)-before:]
	}
	return append(later, earlier...), nil
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

type fakeConverser struct {
	reply string
	err   error
	calls int
	last  completion.Request
}

func (f *fakeConverser) Converse(_ context.Context, req completion.Request) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
