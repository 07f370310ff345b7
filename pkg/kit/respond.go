package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// MessageResponse is the body shape for every plain confirmation and every
// error the service returns.
type MessageResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, status, MessageResponse{
		Message:   msg,
		RequestID: chimw.GetReqID(r.Context()),
	})
}
