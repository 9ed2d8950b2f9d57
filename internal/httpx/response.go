package httpx

import (
	"encoding/json"
	"net/http"
)

// ApiResponse is the envelope every lifecycle handler answers with.
type ApiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// errorBody is used by the router-level handlers (404, 405, panics).
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON indents the output when the query carries ?pretty.
func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	if r != nil {
		if _, ok := r.URL.Query()["pretty"]; ok {
			enc.SetIndent("", "  ")
		}
	}
	_ = enc.Encode(v)
}
