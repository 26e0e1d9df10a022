package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSuffix(t *testing.T) {
	keys := []string{"a.wav", "b.WAV", "c.mp3", "d.wav.json"}
	assert.Equal(t, []string{"a.wav", "b.WAV"}, FilterSuffix(keys, ".wav"))
	assert.Equal(t, []string{"d.wav.json"}, FilterSuffix(keys, ".json"))
	assert.Empty(t, FilterSuffix(nil, ".wav"))
}

func TestExcludePrefix(t *testing.T) {
	keys := []string{"alice/a.wav", "archive/alice/a.wav", "failed/x.json", "b.wav"}
	assert.Equal(t, []string{"alice/a.wav", "b.wav"}, ExcludePrefix(keys, "archive/", "failed/"))
	assert.Equal(t, keys, ExcludePrefix(keys, ""))
}

func TestURI(t *testing.T) {
	assert.Equal(t, "s3://audio/alice/a.wav", URI("audio", "alice/a.wav"))
}

// fakeS3 keeps objects in memory and pages listings two keys at a time.
type fakeS3 struct {
	objects map[string][]byte
	order   []string
	copies  []string
	failPut error
}

func newFakeS3(keys ...string) *fakeS3 {
	f := &fakeS3{objects: map[string][]byte{}}
	for _, k := range keys {
		f.objects[k] = []byte("data:" + k)
		f.order = append(f.order, k)
	}
	return f
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	start := 0
	if in.ContinuationToken != nil {
		for i, k := range f.order {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	end := min(start+2, len(f.order))
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.order[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(f.order) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(f.order[end])
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.copies = append(f.copies, *in.CopySource)
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_ListPaginates(t *testing.T) {
	store := NewS3Store(newFakeS3("a.wav", "b.wav", "c.wav", "d.wav", "e.wav"))

	keys, err := store.List(context.Background(), "audio", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.wav", "b.wav", "c.wav", "d.wav", "e.wav"}, keys)
}

func TestS3Store_GetPutDelete(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "audio", "alice/a.wav", []byte("RIFF"), "audio/wav"))
	data, err := store.Get(ctx, "audio", "alice/a.wav")
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), data)

	require.NoError(t, store.Delete(ctx, "audio", "alice/a.wav"))
	_, err = store.Get(ctx, "audio", "alice/a.wav")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_Move(t *testing.T) {
	fake := newFakeS3("alice/a.wav")
	store := NewS3Store(fake)

	require.NoError(t, store.Move(context.Background(), "audio", "alice/a.wav", "archive/alice/a.wav"))
	assert.Equal(t, []string{"audio/alice/a.wav"}, fake.copies)
	_, exists := fake.objects["alice/a.wav"]
	assert.False(t, exists)
}

func TestS3Store_PutError(t *testing.T) {
	boom := errors.New("denied")
	fake := newFakeS3()
	fake.failPut = boom

	err := NewS3Store(fake).Put(context.Background(), "audio", "k", nil, "")
	assert.ErrorIs(t, err, boom)
}
