package server

import (
	"encoding/json"
	"net/http"

	"github.com/lintangjaya/go-storefront/auth"
	"github.com/lintangjaya/go-storefront/internal/errorz"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message})
}

// respondServiceError maps auth service failures onto the HTTP error taxonomy.
// Unexpected errors become an opaque 500; details leak only in development.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var ve *errorz.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"details": ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCaptcha):
		respondError(w, http.StatusBadRequest, "Invalid or expired captcha")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrRegistrationFailed):
		respondError(w, http.StatusBadRequest, "Registration failed")
	case errors.Is(err, auth.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "Please login to access this resource")
	default:
		log.Err(err).Msg("internal server error")
		if s.env == "DEV" {
			respondJSON(w, http.StatusInternalServerError, map[string]any{
				"error":   "Internal server error",
				"details": err.Error(),
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}
