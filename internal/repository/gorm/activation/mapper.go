package activationgorm

import (
	"github.com/oggyb/smshub/internal/domain/activation"
)

func toDomain(m *ActivationModel) *activation.Activation {
	return &activation.Activation{
		ID:         m.ID,
		ProviderID: m.ProviderID,
		Phone:      m.Phone,
		Country:    m.Country,
		Operator:   m.Operator,
		Service:    m.Service,
		Status:     activation.Status(m.Status),
		Code:       m.Code,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		FinishedAt: m.FinishedAt,
	}
}

func toDomainMany(models []ActivationModel) []*activation.Activation {
	out := make([]*activation.Activation, len(models))
	for i := range models {
		out[i] = toDomain(&models[i])
	}
	return out
}

func fromDomain(d *activation.Activation) *ActivationModel {
	return &ActivationModel{
		ID:         d.ID,
		ProviderID: d.ProviderID,
		Phone:      d.Phone,
		Country:    d.Country,
		Operator:   d.Operator,
		Service:    d.Service,
		Status:     string(d.Status),
		Code:       d.Code,
		FinishedAt: d.FinishedAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
