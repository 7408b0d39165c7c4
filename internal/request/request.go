package request

import (
	"errors"
	"strings"
)

// SchedulerRequest represents the JSON body for scheduler control.
type SchedulerRequest struct {
	// Action controls the scheduler. Allowed values:
	// - "start": start polling pending activations
	// - "stop":  stop polling
	Action string `json:"action" example:"start"`
}

// OrderRequest is the body of POST /activations.
type OrderRequest struct {
	Country  string `json:"country" example:"0"`
	Operator string `json:"operator" example:"any"`
	Service  string `json:"service" example:"tg"`
}

// Normalize trims fields and fills defaults. Operator defaults to "any".
func (r *OrderRequest) Normalize() error {
	r.Country = strings.TrimSpace(r.Country)
	r.Operator = strings.TrimSpace(r.Operator)
	r.Service = strings.TrimSpace(r.Service)

	if r.Service == "" {
		return errors.New("service is required")
	}
	if r.Country == "" {
		return errors.New("country is required")
	}
	if r.Operator == "" {
		r.Operator = "any"
	}
	return nil
}

// StatusChangeRequest is the body of POST /activations/{id}/status.
type StatusChangeRequest struct {
	// Action is one of "ready", "resend", "complete", "cancel" or the
	// matching numeric code (1, 3, 6, 8).
	Action string `json:"action" example:"cancel"`
}
