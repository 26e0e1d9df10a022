package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockAPI is the subset of the Bedrock runtime client used by BedrockEmbedder.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type titanRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
	Normalize  bool   `json:"normalize"`
}

type titanResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// BedrockEmbedder calls a Titan text embedding model.
type BedrockEmbedder struct {
	client    BedrockAPI
	modelID   string
	dimension int
}

// NewBedrockEmbedder creates an Embedder backed by Bedrock InvokeModel.
func NewBedrockEmbedder(client BedrockAPI, modelID string, dimension int) *BedrockEmbedder {
	return &BedrockEmbedder{client: client, modelID: modelID, dimension: dimension}
}

func (e *BedrockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanRequest{
		InputText:  text,
		Dimensions: e.dimension,
		Normalize:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling titan request: %w", err)
	}

	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoking %s: %w", e.modelID, err)
	}

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", e.modelID, err)
	}
	if err := checkDimension(resp.Embedding, e.dimension); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}
