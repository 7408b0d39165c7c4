package response

import (
	"encoding/json"
	"time"

	"github.com/oggyb/smshub/internal/domain/activation"
	"github.com/oggyb/smshub/internal/smshub"
)

type WelcomePayload struct {
	Message string `json:"message"`
}

type HealthPayload struct {
	Status string `json:"status"`
}

type WelcomeResponse struct {
	Success   bool           `json:"success"`
	Data      WelcomePayload `json:"data"`
	Timestamp string         `json:"timestamp"`
}

type HealthResponse struct {
	Success   bool          `json:"success"`
	Data      HealthPayload `json:"data"`
	Timestamp string        `json:"timestamp"`
}

type SchedulerControlPayload struct {
	Message string `json:"message"`
	Running bool   `json:"running"`
}

type SchedulerControlResponse struct {
	Success   bool                    `json:"success"`
	Data      SchedulerControlPayload `json:"data"`
	Timestamp string                  `json:"timestamp"`
}

// BalancePayload carries the balance as a decimal string so no precision
// is lost on the way to the client.
type BalancePayload struct {
	Balance string `json:"balance" example:"104.50"`
}

type BalanceResponse struct {
	Success   bool           `json:"success"`
	Data      BalancePayload `json:"data"`
	Timestamp string         `json:"timestamp"`
}

type NumbersStatusResponse struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data" swaggertype:"object"`
	Timestamp string          `json:"timestamp"`
}

type PricesResponse struct {
	Success   bool              `json:"success"`
	Data      smshub.PriceTable `json:"data" swaggertype:"object"`
	Timestamp string            `json:"timestamp"`
}

// ActivationDTO is the public representation of an activation.
type ActivationDTO struct {
	ID         string     `json:"id"`
	ProviderID string     `json:"providerId"`
	Phone      string     `json:"phone"`
	Country    string     `json:"country"`
	Operator   string     `json:"operator"`
	Service    string     `json:"service"`
	Status     string     `json:"status"`
	Code       string     `json:"code,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

type ActivationResponse struct {
	Success   bool          `json:"success"`
	Data      ActivationDTO `json:"data"`
	Timestamp string        `json:"timestamp"`
}

type ActivationListPayload struct {
	Items []ActivationDTO `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ActivationListResponse struct {
	Success   bool                  `json:"success"`
	Data      ActivationListPayload `json:"data"`
	Timestamp string                `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

// FromActivation converts a domain activation into its DTO.
func FromActivation(a *activation.Activation) ActivationDTO {
	return ActivationDTO{
		ID:         a.ID.String(),
		ProviderID: a.ProviderID,
		Phone:      a.Phone,
		Country:    a.Country,
		Operator:   a.Operator,
		Service:    a.Service,
		Status:     string(a.Status),
		Code:       a.Code,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
		FinishedAt: a.FinishedAt,
	}
}

// FromActivations converts a page of activations.
func FromActivations(items []*activation.Activation) []ActivationDTO {
	out := make([]ActivationDTO, len(items))
	for i, a := range items {
		out[i] = FromActivation(a)
	}
	return out
}
