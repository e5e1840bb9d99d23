package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"hearth/internal/auth"
	"hearth/internal/log"
	"hearth/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service-layer errors onto HTTP statuses. The
// denied outcome is always a plain 404 so callers cannot tell a missing
// record from a foreign one.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrDenied):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrEmailExists):
		respondError(w, http.StatusConflict, auth.ErrEmailExists.Error())
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusUnprocessableEntity, auth.ErrWeakPassword.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON parses a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
