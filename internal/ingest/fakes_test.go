package ingest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/parrot-platform/parrot/internal/blobstore"
	"github.com/parrot-platform/parrot/internal/memory"
	inats "github.com/parrot-platform/parrot/internal/nats"
	"github.com/parrot-platform/parrot/internal/transcribe"
)

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte // "bucket/key"
	listErr error
	moveErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (m *memBlobs) put(bucket, key, data string) {
	m.objects[bucket+"/"+key] = []byte(data)
}

func (m *memBlobs) has(bucket, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket+"/"+key]
	return ok
}

func (m *memBlobs) List(_ context.Context, bucket, prefix string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if key, ok := strings.CutPrefix(k, bucket+"/"); ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memBlobs) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return data, nil
}

func (m *memBlobs) Put(_ context.Context, bucket, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = data
	return nil
}

func (m *memBlobs) Move(_ context.Context, bucket, src, dst string) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+src]
	if !ok {
		return blobstore.ErrNotFound
	}
	m.objects[bucket+"/"+dst] = data
	delete(m.objects, bucket+"/"+src)
	return nil
}

func (m *memBlobs) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+key)
	return nil
}

type fakeStarter struct {
	jobs []transcribe.Job
	err  error
}

func (f *fakeStarter) Start(_ context.Context, job transcribe.Job) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, job)
	return "transcribe_test", nil
}

// splitSegmenter cuts on ". " boundaries.
type splitSegmenter struct{ err error }

func (s splitSegmenter) Segment(_ context.Context, text string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for _, part := range strings.SplitAfter(text, ". ") {
		out = append(out, strings.TrimSpace(part))
	}
	return out, nil
}

type lenEmbedder struct {
	texts []string
	err   error
}

func (e *lenEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.texts = append(e.texts, text)
	return []float32{float32(len(text)), 0, 0}, nil
}

type recordingInserter struct {
	batches [][]memory.Record
	err     error
}

func (r *recordingInserter) Insert(_ context.Context, records []memory.Record) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.batches = append(r.batches, records)
	return len(records), nil
}

type recordingEvents struct {
	queued   []inats.AudioQueued
	ingested []inats.TranscriptIngested
	err      error
}

func (r *recordingEvents) PublishAudioQueued(_ context.Context, e inats.AudioQueued) error {
	r.queued = append(r.queued, e)
	return r.err
}

func (r *recordingEvents) PublishTranscriptIngested(_ context.Context, e inats.TranscriptIngested) error {
	r.ingested = append(r.ingested, e)
	return r.err
}

var errBoom = errors.New("boom")
