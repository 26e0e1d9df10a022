package completion

import (
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAPI is the subset of the go-openai client used by OpenAIConverser.
type OpenAIAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConverser calls an OpenAI-compatible chat completion endpoint.
type OpenAIConverser struct {
	client OpenAIAPI
}

// NewOpenAIConverser creates a Converser backed by an OpenAI-compatible API.
func NewOpenAIConverser(client OpenAIAPI) *OpenAIConverser {
	return &OpenAIConverser{client: client}
}

// NewOpenAIClient builds a go-openai client, optionally pointed at baseURL.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

func (c *OpenAIConverser) Converse(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       req.ModelID,
		Messages:    messages,
		MaxTokens:   req.Inference.MaxTokens,
		Temperature: openAITemperature(req.Inference.Temperature),
		TopP:        req.Inference.TopP,
	}
	if len(req.Inference.StopSequences) > 0 {
		chatReq.Stop = req.Inference.StopSequences
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai chat completion %s: %w", req.ModelID, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion %s: %w", req.ModelID, ErrEmptyOutput)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("openai chat completion %s: %w", req.ModelID, ErrEmptyOutput)
	}
	return reply, nil
}

// openAITemperature keeps an explicit zero. go-openai omits a zero temperature
// from the request body, which the API reads as its default of 1.
func openAITemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
