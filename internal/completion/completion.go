// Package completion wraps managed chat-completion endpoints behind a single
// Converser interface.
package completion

import (
	"context"
	"errors"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyOutput is returned when the model produced no text.
var ErrEmptyOutput = errors.New("model returned no text")

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role string
	Text string
}

// Inference holds the generation parameters of a request.
type Inference struct {
	MaxTokens     int
	Temperature   float32
	TopP          float32
	StopSequences []string
}

// Request is a single chat-completion call.
type Request struct {
	ModelID   string
	System    string
	Messages  []Message
	Inference Inference
}

// Converser produces the model's reply text for a request.
type Converser interface {
	Converse(ctx context.Context, req Request) (string, error)
}
