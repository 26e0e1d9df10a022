// Package audio accepts recorded audio from clients and drops it into the audio bucket.
package audio

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/parrot-platform/parrot/internal/api"
	"github.com/parrot-platform/parrot/internal/auth"
	"github.com/parrot-platform/parrot/internal/blobstore"
)

// maxUploadBytes bounds the request body; base64 inflates audio by a third.
const maxUploadBytes = 64 << 20

// UploadRequest carries one base64-encoded WAV recording.
type UploadRequest struct {
	Audio string `json:"audio" validate:"required"`
}

// UploadResult tells the client where the recording landed.
type UploadResult struct {
	Key   string `json:"key"`
	S3URI string `json:"s3_uri"`
}

// Handler handles capture uploads.
type Handler struct {
	store       blobstore.Store
	bucket      string
	defaultUser string
	now         func() time.Time
	suffix      func() string
	validate    *validator.Validate
}

// NewHandler creates a new upload handler writing into bucket.
func NewHandler(store blobstore.Store, bucket, defaultUser string) *Handler {
	return &Handler{
		store:       store,
		bucket:      bucket,
		defaultUser: defaultUser,
		now:         time.Now,
		suffix:      randomSuffix,
		validate:    validator.New(),
	}
}

// ObjectKey returns <username>/microphone_prompt_audio_<YYYYmmdd_HHMMSS>_<suffix>.wav.
// The suffix keeps two uploads within the same second apart.
func ObjectKey(username string, at time.Time, suffix string) string {
	return fmt.Sprintf("%s/microphone_prompt_audio_%s_%s.wav", username, at.UTC().Format("20060102_150405"), suffix)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Upload decodes the recording and stores it for the ingestion loop to pick up.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError("no audio data provided"))
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil || len(data) == 0 {
		api.HandleError(w, api.NewBadRequestError("invalid audio data format"))
		return
	}

	username := auth.Username(r.Context())
	if username == "" {
		username = h.defaultUser
	}
	key := ObjectKey(username, h.now(), h.suffix())

	if err := h.store.Put(r.Context(), h.bucket, key, data, "audio/wav"); err != nil {
		slog.Error("uploading audio", "error", err, "key", key)
		api.HandleError(w, api.NewInternalError("failed to store audio"))
		return
	}

	slog.Info("audio uploaded", "key", key, "bytes", len(data), "username", username)
	api.JSON(w, http.StatusCreated, UploadResult{Key: key, S3URI: blobstore.URI(h.bucket, key)})
}
