package nats

import (
	"time"
)

// Stream names.
const (
	StreamIngest = "PARROT_INGEST"
)

// Subject constants.
const (
	SubjectIngestPrefix       = "parrot.ingest"
	SubjectAudioQueued        = "parrot.ingest.audio_queued"
	SubjectTranscriptIngested = "parrot.ingest.transcript_ingested"
)

// AudioQueued is published when an audio file is archived and its transcription job started.
type AudioQueued struct {
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	ArchiveKey string    `json:"archive_key"`
	JobName    string    `json:"job_name"`
	Username   string    `json:"username"`
	QueuedAt   time.Time `json:"queued_at"`
}

// TranscriptIngested is published after a transcript's sentences are stored.
type TranscriptIngested struct {
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	Username   string    `json:"username"`
	Records    int       `json:"records"`
	IngestedAt time.Time `json:"ingested_at"`
}
