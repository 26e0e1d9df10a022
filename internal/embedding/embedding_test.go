package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBedrock struct {
	input *bedrockruntime.InvokeModelInput
	body  []byte
	err   error
}

func (f *fakeBedrock) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func TestBedrockEmbedder(t *testing.T) {
	fake := &fakeBedrock{body: []byte(`{"embedding":[0.1,0.2,0.3],"inputTextTokenCount":4}`)}
	e := NewBedrockEmbedder(fake, "amazon.titan-embed-text-v2:0", 3)

	vec, err := e.Embed(context.Background(), "I love sushi")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	assert.Equal(t, "amazon.titan-embed-text-v2:0", *fake.input.ModelId)
	var req map[string]any
	require.NoError(t, json.Unmarshal(fake.input.Body, &req))
	assert.Equal(t, "I love sushi", req["inputText"])
	assert.Equal(t, float64(3), req["dimensions"])
	assert.Equal(t, true, req["normalize"])
}

func TestBedrockEmbedder_DimensionMismatch(t *testing.T) {
	e := NewBedrockEmbedder(&fakeBedrock{body: []byte(`{"embedding":[0.1,0.2]}`)}, "m", 3)
	_, err := e.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBedrockEmbedder_Errors(t *testing.T) {
	boom := errors.New("access denied")
	_, err := NewBedrockEmbedder(&fakeBedrock{err: boom}, "m", 3).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	_, err = NewBedrockEmbedder(&fakeBedrock{body: []byte("not json")}, "m", 3).Embed(context.Background(), "x")
	assert.Error(t, err)
}

type fakeOpenAI struct {
	req  openai.EmbeddingRequest
	resp openai.EmbeddingResponse
	err  error
}

func (f *fakeOpenAI) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.req = conv.Convert()
	return f.resp, f.err
}

func TestOpenAIEmbedder(t *testing.T) {
	fake := &fakeOpenAI{resp: openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: []float32{1, 2}}},
	}}
	e := NewOpenAIEmbedder(fake, "text-embedding-3-small", 2)

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
	assert.Equal(t, openai.EmbeddingModel("text-embedding-3-small"), fake.req.Model)
	assert.Equal(t, 2, fake.req.Dimensions)
	assert.Equal(t, []string{"hello"}, fake.req.Input)
}

func TestOpenAIEmbedder_EmptyAndMismatch(t *testing.T) {
	_, err := NewOpenAIEmbedder(&fakeOpenAI{}, "m", 2).Embed(context.Background(), "x")
	assert.Error(t, err)

	fake := &fakeOpenAI{resp: openai.EmbeddingResponse{Data: []openai.Embedding{{Embedding: []float32{1}}}}}
	_, err = NewOpenAIEmbedder(fake, "m", 2).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
