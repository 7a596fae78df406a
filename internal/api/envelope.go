package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// errorBody is the payload of every non-2xx response.
type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

// resultBody wraps every successful response.
type resultBody struct {
	Result json.RawMessage `json:"result"`
}

func writeResult(w http.ResponseWriter, r *http.Request, status int, payload any) {
	writeJSON(w, r, status, map[string]any{"result": payload})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	var body errorBody
	body.Error.Status = status
	body.Error.Message = message
	if err != nil {
		body.Error.Detail = err.Error()
	}
	writeJSON(w, r, status, body)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("encode response")
	}
}
