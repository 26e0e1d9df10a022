package memory

import (
	"time"

	"github.com/parrot-platform/parrot/internal/completion"
)

// DefaultSystemPrompt instructs the model to answer from the retrieved matches only.
const DefaultSystemPrompt = "You are a memory-recall assistant. You are given a question the user asked " +
	"and the transcript snippets that matched it, each with who said it and when. " +
	"Answer the question directly from those snippets. No rambling."

// Options holds the retrieval and generation settings of a Service.
type Options struct {
	Dimension     int
	MatchLimit    int
	WindowDefault int
	ModelID       string
	SystemPrompt  string
	Inference     completion.Inference
	HistoryMax    int
	HistoryTTL    time.Duration
}

// DefaultOptions returns Options with the settings the recall pipeline ships with.
func DefaultOptions() Options {
	return Options{
		Dimension:     1024,
		MatchLimit:    5,
		WindowDefault: 5,
		ModelID:       "anthropic.claude-3-5-haiku-20241022-v1:0",
		SystemPrompt:  DefaultSystemPrompt,
		Inference: completion.Inference{
			MaxTokens:     200,
			Temperature:   1,
			TopP:          0.999,
			StopSequences: []string{},
		},
		HistoryMax: 50,
		HistoryTTL: 7 * 24 * time.Hour,
	}
}

// withDefaults fills zero-valued fields from DefaultOptions. Temperature is
// left alone since zero is a valid setting.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Dimension <= 0 {
		o.Dimension = def.Dimension
	}
	if o.MatchLimit <= 0 {
		o.MatchLimit = def.MatchLimit
	}
	if o.WindowDefault <= 0 {
		o.WindowDefault = def.WindowDefault
	}
	if o.ModelID == "" {
		o.ModelID = def.ModelID
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = def.SystemPrompt
	}
	if o.Inference.MaxTokens <= 0 {
		o.Inference.MaxTokens = def.Inference.MaxTokens
	}
	if o.Inference.TopP <= 0 {
		o.Inference.TopP = def.Inference.TopP
	}
	if o.Inference.StopSequences == nil {
		o.Inference.StopSequences = []string{}
	}
	if o.HistoryMax <= 0 {
		o.HistoryMax = def.HistoryMax
	}
	if o.HistoryTTL <= 0 {
		o.HistoryTTL = def.HistoryTTL
	}
	return o
}
