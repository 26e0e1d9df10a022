package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAPI is the subset of the go-openai client used by OpenAIEmbedder.
type OpenAIAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client    OpenAIAPI
	model     string
	dimension int
}

// NewOpenAIEmbedder creates an Embedder backed by an OpenAI-compatible API.
func NewOpenAIEmbedder(client OpenAIAPI, model string, dimension int) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model, dimension: dimension}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding with %s: %w", e.model, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("creating embedding with %s: empty response", e.model)
	}

	vec := resp.Data[0].Embedding
	if err := checkDimension(vec, e.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}
