// Package response writes the JSON envelope used by every endpoint and maps
// service errors onto HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/oggyb/smshub/internal/domain/activation"
	"github.com/oggyb/smshub/internal/smshub"
)

// JSONResponse is the common envelope.
type JSONResponse struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, JSONResponse{
		Success:   true,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func RespondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, JSONResponse{
		Error: &ErrorBody{
			Code:    status,
			Message: msg,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RespondErr writes err with the status and message Describe picks for it.
// The error text itself never reaches the client: provider errors carry the
// API key and request URL.
func RespondErr(w http.ResponseWriter, err error) {
	status, msg := Describe(err)
	RespondError(w, status, msg)
}

// StatusFor maps provider and domain errors to HTTP statuses.
func StatusFor(err error) int {
	status, _ := Describe(err)
	return status
}

// Describe maps err to an HTTP status and a message safe to show callers.
// Failures the caller can fix are 4xx; anything that went wrong talking to
// the provider is 502.
func Describe(err error) (int, string) {
	var transportErr *smshub.TransportError

	switch {
	case errors.Is(err, activation.ErrNotFound):
		return http.StatusNotFound, activation.ErrNotFound.Error()
	case errors.Is(err, smshub.ErrNoActivation):
		return http.StatusNotFound, "provider has no such activation"
	case errors.Is(err, smshub.ErrNoNumbers):
		return http.StatusConflict, "no numbers available"
	case errors.Is(err, smshub.ErrNoBalance):
		return http.StatusConflict, "provider balance is too low"
	case errors.Is(err, activation.ErrTerminal):
		return http.StatusConflict, activation.ErrTerminal.Error()
	case errors.Is(err, smshub.ErrWrongService):
		return http.StatusBadRequest, "provider rejected the service"
	case errors.Is(err, smshub.ErrBadKey):
		return http.StatusBadGateway, "provider rejected api key"
	case errors.Is(err, smshub.ErrBadAction):
		return http.StatusBadGateway, "provider rejected the request"
	case errors.Is(err, smshub.ErrSQL):
		return http.StatusBadGateway, "provider internal error"
	case errors.Is(err, smshub.ErrUnrecognizedResponse),
		errors.Is(err, smshub.ErrMalformedResponse):
		return http.StatusBadGateway, "unexpected provider response"
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, "provider unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
