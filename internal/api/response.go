package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the envelope of every JSON body the API writes.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{Data: data})
}

func JSONMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, Response{Message: message})
}

func JSONErrorMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, Response{Error: message})
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("writing response body", "status", status, "error", err)
	}
}
