package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamPublisher is the part of jetstream.JetStream used to publish.
type JetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher provides typed methods for publishing events to NATS JetStream.
type Publisher struct {
	js JetStreamPublisher
}

// NewPublisher creates a new Publisher.
func NewPublisher(js JetStreamPublisher) *Publisher {
	return &Publisher{js: js}
}

// PublishAudioQueued publishes an audio file hand-off to the transcription service.
func (p *Publisher) PublishAudioQueued(ctx context.Context, event AudioQueued) error {
	return p.publish(ctx, SubjectAudioQueued, event.JobName, event)
}

// PublishTranscriptIngested publishes the completion of a transcript ingestion.
func (p *Publisher) PublishTranscriptIngested(ctx context.Context, event TranscriptIngested) error {
	return p.publish(ctx, SubjectTranscriptIngested, event.Bucket+"/"+event.Key, event)
}

// publish sends data with msgID as the JetStream dedup id, so a pass retried
// within the stream's duplicate window is stored once.
func (p *Publisher) publish(ctx context.Context, subject, msgID string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload, jetstream.WithMsgID(msgID))
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
