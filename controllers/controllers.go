package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mingle_server/models"
)

// currentUserID resolves the acting identity from the request. The gateway in
// front of this service authenticates and injects the header.
func currentUserID(r *http.Request) (string, error) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return "", models.ErrNotAuthenticated
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyFriends),
		errors.Is(err, models.ErrRequestAlreadySent),
		errors.Is(err, models.ErrBlocked):
		status = http.StatusConflict
	case errors.Is(err, models.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	}
	if status == http.StatusInternalServerError {
		log.Println("Request failed:", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
