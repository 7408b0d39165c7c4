// Package activation holds the domain model for reserved numbers and the
// rules for moving them between states.
package activation

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusWaitCode   Status = "WAIT_CODE"
	StatusWaitResend Status = "WAIT_RESEND"
	StatusOK         Status = "OK"
	StatusCancelled  Status = "CANCELLED"
	StatusFinished   Status = "FINISHED"
)

// PendingStatuses are the states in which the provider may still deliver
// a code, so the activation is worth polling.
var PendingStatuses = []Status{StatusWaitCode, StatusWaitResend}

var (
	// ErrEmptyProviderID is returned when the provider did not hand back an activation id.
	ErrEmptyProviderID = errors.New("provider activation id is required")
	// ErrEmptyPhone is returned when no phone number was reserved.
	ErrEmptyPhone = errors.New("phone number is required")
	// ErrEmptyService is returned when the service code is missing.
	ErrEmptyService = errors.New("service is required")
	// ErrNotFound is returned by repositories for unknown ids.
	ErrNotFound = errors.New("activation not found")
	// ErrTerminal is returned when a finished or cancelled activation is changed.
	ErrTerminal = errors.New("activation is already closed")
)

// Activation is a number reserved from the provider for one service.
type Activation struct {
	ID         uuid.UUID
	ProviderID string
	Phone      string
	Country    string
	Operator   string
	Service    string
	Status     Status
	Code       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// New builds an activation waiting for its code.
func New(providerID, phone, country, operator, service string) (*Activation, error) {
	providerID = strings.TrimSpace(providerID)
	phone = strings.TrimSpace(phone)
	service = strings.TrimSpace(service)

	if providerID == "" {
		return nil, ErrEmptyProviderID
	}
	if phone == "" {
		return nil, ErrEmptyPhone
	}
	if service == "" {
		return nil, ErrEmptyService
	}

	now := time.Now()
	return &Activation{
		ID:         uuid.New(),
		ProviderID: providerID,
		Phone:      phone,
		Country:    strings.TrimSpace(country),
		Operator:   strings.TrimSpace(operator),
		Service:    service,
		Status:     StatusWaitCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsTerminal reports whether the activation can no longer change.
func (a *Activation) IsTerminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusFinished
}

// IsPending reports whether a code may still arrive.
func (a *Activation) IsPending() bool {
	for _, s := range PendingStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// Apply moves the activation to status. A non-empty code replaces the
// stored one; an empty code keeps it.
func (a *Activation) Apply(status Status, code string) error {
	if a.IsTerminal() {
		if status == a.Status {
			return nil
		}
		return ErrTerminal
	}

	now := time.Now()
	a.Status = status
	if code != "" {
		a.Code = code
	}
	a.UpdatedAt = now
	if a.IsTerminal() {
		a.FinishedAt = &now
	}
	return nil
}
