// Package problem writes RFC 7807 problem details responses.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/kbmproject/kbm-backend/pkg/ctxutil"
)

// ContentType is the media type of a problem details body.
const ContentType = "application/problem+json"

// Details is an RFC 7807 problem details object.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// New builds problem details for status.
func New(status int, detail string) Details {
	return Details{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

// Write sends d as the response, filling the instance and request id from r.
func Write(w http.ResponseWriter, r *http.Request, d Details) {
	if r != nil {
		if d.Instance == "" {
			d.Instance = r.URL.Path
		}
		if d.RequestID == "" {
			d.RequestID = ctxutil.RequestIDFromCtx(r.Context())
		}
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(d.Status)
	json.NewEncoder(w).Encode(d) //nolint:errcheck
}

// Error writes New(status, detail).
func Error(w http.ResponseWriter, r *http.Request, status int, detail string) {
	Write(w, r, New(status, detail))
}
