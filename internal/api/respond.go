package api

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "parkhive/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps the error taxonomy onto status codes: validation 400,
// conflict 409, not found 404, everything else 500 with a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		message = "Internal server error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}
