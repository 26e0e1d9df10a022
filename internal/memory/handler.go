package memory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/parrot-platform/parrot/internal/api"
	"github.com/parrot-platform/parrot/internal/auth"
)

// Handler handles memory HTTP endpoints.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler creates a new memory handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// Answer runs the recall pipeline for the authenticated user's question.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	ans, err := h.svc.Answer(r.Context(), auth.Username(r.Context()), req.Query)
	if err != nil {
		handleServiceError(w, "answering query", err)
		return
	}

	api.JSON(w, http.StatusOK, ans)
}

// Insert stores a batch of pre-embedded records.
func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	records := make([]Record, len(req.Records))
	for i, rec := range req.Records {
		records[i] = Record{
			Text:      rec.Text,
			Embedding: rec.Embedding,
			Username:  rec.Username,
			Speaker:   rec.Speaker,
		}
	}

	n, err := h.svc.Insert(r.Context(), records)
	if err != nil {
		handleServiceError(w, "inserting records", err)
		return
	}

	api.JSON(w, http.StatusCreated, InsertResult{Inserted: n})
}

// Search ranks stored records by distance to a query embedding.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	limit := h.svc.Options().MatchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	records, err := h.svc.Nearest(r.Context(), req.Embedding, req.Offset, limit)
	if err != nil {
		handleServiceError(w, "searching records", err)
		return
	}

	api.JSON(w, http.StatusOK, records)
}

// Window returns the records around a point in time.
func (h *Handler) Window(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ts, err := time.Parse(time.RFC3339, q.Get("timestamp"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("timestamp must be RFC3339"))
		return
	}

	def := h.svc.Options().WindowDefault
	before, err := intParam(q.Get("before"), def)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("before must be an integer"))
		return
	}
	after, err := intParam(q.Get("after"), def)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("after must be an integer"))
		return
	}

	records, err := h.svc.Window(r.Context(), ts, before, after)
	if err != nil {
		handleServiceError(w, "querying window", err)
		return
	}

	api.JSON(w, http.StatusOK, records)
}

// History returns the authenticated user's recent exchanges.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	exchanges, err := h.svc.History(r.Context(), auth.Username(r.Context()), limit)
	if err != nil {
		slog.Error("reading history", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, exchanges)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// handleServiceError maps stage errors to 400 for invalid input and 500 naming the stage otherwise.
func handleServiceError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, ErrInvalidRequest) {
		api.HandleError(w, api.NewBadRequestError(err.Error()))
		return
	}

	slog.Error(action, "error", err)
	if kind := Stage(err); kind != nil {
		api.HandleError(w, api.NewInternalError(kind.Error()))
		return
	}
	api.HandleError(w, api.ErrInternalServer)
}
