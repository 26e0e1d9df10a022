package transcribe

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobName(t *testing.T) {
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	a := JobName(now)
	b := JobName(now)
	assert.Regexp(t, regexp.MustCompile(`^transcribe_20240203_040506_[0-9a-f]{8}$`), a)
	assert.NotEqual(t, a, b, "same-second jobs get distinct names")
}

type fakeTranscribe struct {
	input *transcribe.StartTranscriptionJobInput
	err   error
}

func (f *fakeTranscribe) StartTranscriptionJob(_ context.Context, params *transcribe.StartTranscriptionJobInput, _ ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &transcribe.StartTranscriptionJobOutput{}, nil
}

func TestAWSStarter_Start(t *testing.T) {
	fake := &fakeTranscribe{}
	s := NewAWSStarter(fake)

	name, err := s.Start(context.Background(), Job{
		MediaURI:     "s3://audio/archive/alice/clip.wav",
		LanguageCode: "en-US",
		OutputBucket: "transcripts",
		OutputKey:    "alice/clip.wav.json",
	})
	require.NoError(t, err)
	assert.Equal(t, name, *fake.input.TranscriptionJobName)
	assert.Equal(t, "s3://audio/archive/alice/clip.wav", *fake.input.Media.MediaFileUri)
	assert.Equal(t, types.MediaFormatWav, fake.input.MediaFormat)
	assert.Equal(t, types.LanguageCode("en-US"), fake.input.LanguageCode)
	assert.Equal(t, "transcripts", *fake.input.OutputBucketName)
	assert.Equal(t, "alice/clip.wav.json", *fake.input.OutputKey)
	assert.Nil(t, fake.input.Settings)
}

func TestAWSStarter_SpeakerLabels(t *testing.T) {
	fake := &fakeTranscribe{}
	_, err := NewAWSStarter(fake).Start(context.Background(), Job{MediaURI: "s3://a/b.wav", MaxSpeakers: 3})
	require.NoError(t, err)
	require.NotNil(t, fake.input.Settings)
	assert.True(t, *fake.input.Settings.ShowSpeakerLabels)
	assert.Equal(t, int32(3), *fake.input.Settings.MaxSpeakerLabels)
}

func TestAWSStarter_Error(t *testing.T) {
	boom := errors.New("limit exceeded")
	_, err := NewAWSStarter(&fakeTranscribe{err: boom}).Start(context.Background(), Job{MediaURI: "s3://a/b.wav"})
	assert.ErrorIs(t, err, boom)
}

const plainDoc = `{
  "jobName": "transcribe_20240203_040506",
  "results": {
    "transcripts": [{"transcript": "I love sushi. The weather is nice."}],
    "items": []
  },
  "status": "COMPLETED"
}`

const labelledDoc = `{
  "jobName": "j",
  "results": {
    "transcripts": [{"transcript": "Hi there. Hello. How are you?"}],
    "audio_segments": [
      {"transcript": "Hi there.", "speaker_label": "spk_0", "start_time": "0.0", "end_time": "1.0"},
      {"transcript": "Hello.", "speaker_label": "spk_1", "start_time": "1.0", "end_time": "2.0"},
      {"transcript": "How are you?", "speaker_label": "spk_1", "start_time": "2.0", "end_time": "3.0"}
    ]
  }
}`

func TestParse_PlainTranscript(t *testing.T) {
	doc, err := Parse([]byte(plainDoc))
	require.NoError(t, err)

	utts := doc.Utterances()
	require.Len(t, utts, 1)
	assert.Equal(t, "I love sushi. The weather is nice.", utts[0].Text)
	assert.Nil(t, utts[0].Speaker)
}

func TestParse_SpeakerLabels(t *testing.T) {
	doc, err := Parse([]byte(labelledDoc))
	require.NoError(t, err)

	utts := doc.Utterances()
	require.Len(t, utts, 2)
	assert.Equal(t, "Hi there.", utts[0].Text)
	assert.Equal(t, "spk_0", *utts[0].Speaker)
	assert.Equal(t, "Hello. How are you?", utts[1].Text)
	assert.Equal(t, "spk_1", *utts[1].Speaker)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse([]byte(`{"results": {}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDocument_EmptyTranscript(t *testing.T) {
	doc, err := Parse([]byte(`{"results": {"transcripts": [{"transcript": ""}]}}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Utterances())
}
