package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brewvote/server/internal/api/problem"
	"github.com/brewvote/server/internal/domain/fault"
	"github.com/google/uuid"
)

var errEventNotFound = fault.NotFound("event_not_found", "Event not found")

// writeJSON writes payload with "success": true merged in.
func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["success"] = true

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, nil)
}

// eventIDParam parses the {id} path value. Malformed ids are reported as an
// unknown event.
func eventIDParam(w http.ResponseWriter, r *http.Request, env string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		problem.FromError(w, r, errEventNotFound, env)
		return uuid.Nil, false
	}
	return id, true
}
