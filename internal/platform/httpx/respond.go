// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details. Authorization denials
// additionally carry the required and held permission lists so clients can
// render precise messages.
type ProblemDetail struct {
	Type     string   `json:"type,omitempty"`
	Title    string   `json:"title"`
	Status   int      `json:"status"`
	Detail   string   `json:"detail,omitempty"`
	Required []string `json:"required,omitempty"`
	Held     []string `json:"held,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// Forbidden reports an authorization denial including the permissions the
// operation required and those the caller held.
func Forbidden(w http.ResponseWriter, required, held []string) {
	JSON(w, http.StatusForbidden, ProblemDetail{
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   "insufficient permissions",
		Required: required,
		Held:     held,
	})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
