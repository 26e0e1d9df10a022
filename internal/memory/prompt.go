package memory

import (
	"strings"

	"github.com/parrot-platform/parrot/internal/completion"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	matchSeparator  = " | "
	noMatches       = "(none)"
)

// FormatRecord renders a record as its text, username, speaker and timestamp
// joined by single spaces. A nil speaker is omitted.
func FormatRecord(rec Record) string {
	parts := []string{rec.Text, rec.Username}
	if rec.Speaker != nil && *rec.Speaker != "" {
		parts = append(parts, *rec.Speaker)
	}
	parts = append(parts, rec.CreatedAt.UTC().Format(timestampLayout))
	return strings.Join(parts, " ")
}

// FormatMatches renders records in order, separated by " | ".
func FormatMatches(records []Record) string {
	rendered := make([]string, len(records))
	for i, rec := range records {
		rendered[i] = FormatRecord(rec)
	}
	return strings.Join(rendered, matchSeparator)
}

// BuildPrompt assembles the completion request for a question and its formatted matches.
func BuildPrompt(opts Options, question, matches string) completion.Request {
	if matches == "" {
		matches = noMatches
	}

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nMatches: ")
	sb.WriteString(matches)

	return completion.Request{
		ModelID:   opts.ModelID,
		System:    opts.SystemPrompt,
		Messages:  []completion.Message{{Role: completion.RoleUser, Text: sb.String()}},
		Inference: opts.Inference,
	}
}
