package transcribe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks a transcript document that cannot be parsed.
var ErrMalformed = errors.New("malformed transcript document")

// Document is the output JSON written by a transcription job.
type Document struct {
	JobName string  `json:"jobName"`
	Results Results `json:"results"`
}

type Results struct {
	Transcripts   []Transcript   `json:"transcripts"`
	AudioSegments []AudioSegment `json:"audio_segments"`
}

type Transcript struct {
	Transcript string `json:"transcript"`
}

type AudioSegment struct {
	Transcript   string `json:"transcript"`
	SpeakerLabel string `json:"speaker_label"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// Utterance is a run of speech attributed to one speaker, or to nobody.
type Utterance struct {
	Text    string
	Speaker *string
}

// Parse decodes a transcript document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(doc.Results.Transcripts) == 0 && len(doc.Results.AudioSegments) == 0 {
		return nil, fmt.Errorf("%w: no results", ErrMalformed)
	}
	return &doc, nil
}

// FullText joins every transcript alternative.
func (d *Document) FullText() string {
	parts := make([]string, 0, len(d.Results.Transcripts))
	for _, t := range d.Results.Transcripts {
		if s := strings.TrimSpace(t.Transcript); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Utterances returns speaker-labelled segments when the job produced them, merging
// consecutive segments of the same speaker. Otherwise it returns the full transcript
// as a single utterance with no speaker.
func (d *Document) Utterances() []Utterance {
	var out []Utterance
	for _, seg := range d.Results.AudioSegments {
		text := strings.TrimSpace(seg.Transcript)
		if text == "" || seg.SpeakerLabel == "" {
			continue
		}
		if n := len(out); n > 0 && *out[n-1].Speaker == seg.SpeakerLabel {
			out[n-1].Text += " " + text
			continue
		}
		speaker := seg.SpeakerLabel
		out = append(out, Utterance{Text: text, Speaker: &speaker})
	}
	if len(out) > 0 {
		return out
	}

	if full := d.FullText(); full != "" {
		return []Utterance{{Text: full}}
	}
	return nil
}
