package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/orderlist/internal/apperr"
	"github.com/starford/orderlist/internal/itemservice"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps a service error to a status code and user-facing message.
func writeError(w http.ResponseWriter, err error) {
	msg := itemservice.MessageFor(err)
	switch {
	case errors.Is(err, apperr.ErrMissingIcon), errors.Is(err, apperr.ErrInvalidFields):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(msg))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(msg))
	case errors.Is(err, apperr.ErrEmptyLedger):
		writeJSON(w, http.StatusConflict, errorBody(msg))
	case errors.Is(err, apperr.ErrRender):
		writeJSON(w, http.StatusInternalServerError, errorBody(msg))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
