// Package embedding turns text into fixed-dimension vectors through a managed model.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when the model's vector length differs from configuration.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

func checkDimension(vec []float32, want int) error {
	if want > 0 && len(vec) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), want)
	}
	return nil
}
