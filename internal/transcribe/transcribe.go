// Package transcribe submits speech-to-text jobs and parses their transcript documents.
package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/google/uuid"
)

// Job describes one transcription request.
type Job struct {
	MediaURI     string
	MediaFormat  string
	LanguageCode string
	OutputBucket string
	OutputKey    string
	// MaxSpeakers enables speaker labels when >= 2.
	MaxSpeakers int
}

// Starter submits transcription jobs and returns the job name.
type Starter interface {
	Start(ctx context.Context, job Job) (string, error)
}

// JobName returns transcribe_<YYYYmmdd_HHMMSS>_<8 hex>. The suffix keeps names
// unique when several files are queued within the same second.
func JobName(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("transcribe_%s_%s", now.UTC().Format("20060102_150405"), suffix)
}

// API is the subset of the Transcribe client used by AWSStarter.
type API interface {
	StartTranscriptionJob(ctx context.Context, params *transcribe.StartTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error)
}

// AWSStarter submits jobs to Amazon Transcribe.
type AWSStarter struct {
	client API
	now    func() time.Time
}

// NewAWSStarter creates a Starter backed by Amazon Transcribe.
func NewAWSStarter(client API) *AWSStarter {
	return &AWSStarter{client: client, now: time.Now}
}

func (s *AWSStarter) Start(ctx context.Context, job Job) (string, error) {
	name := JobName(s.now())

	format := job.MediaFormat
	if format == "" {
		format = string(types.MediaFormatWav)
	}

	input := &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(name),
		Media:                &types.Media{MediaFileUri: aws.String(job.MediaURI)},
		MediaFormat:          types.MediaFormat(format),
		LanguageCode:         types.LanguageCode(job.LanguageCode),
		OutputBucketName:     aws.String(job.OutputBucket),
		OutputKey:            aws.String(job.OutputKey),
	}
	if job.MaxSpeakers >= 2 {
		input.Settings = &types.Settings{
			ShowSpeakerLabels: aws.Bool(true),
			MaxSpeakerLabels:  aws.Int32(int32(job.MaxSpeakers)),
		}
	}

	if _, err := s.client.StartTranscriptionJob(ctx, input); err != nil {
		return "", fmt.Errorf("starting transcription job %s for %s: %w", name, job.MediaURI, err)
	}
	return name, nil
}
