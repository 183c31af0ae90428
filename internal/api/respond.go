package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
	"github.com/iammorganparry/pof-dashboard/internal/models"
	"github.com/iammorganparry/pof-dashboard/internal/sessions"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON strictly decodes a single JSON object into v. Unknown fields
// and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *dashboard.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, dashboard.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, dashboard.ErrConflict):
		writeError(w, http.StatusConflict, "question already answered")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, sessions.ErrSessionNotFound) {
		return "session not found"
	}
	return "question not found"
}
