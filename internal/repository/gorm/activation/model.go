package activationgorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivationModel is the GORM persistence model for activations.
// It maps directly to the "activations" table in Postgres.
type ActivationModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProviderID string     `gorm:"size:64;not null;uniqueIndex"`
	Phone      string     `gorm:"size:32;not null"`
	Country    string     `gorm:"size:16"`
	Operator   string     `gorm:"size:32"`
	Service    string     `gorm:"size:32;not null"`
	Status     string     `gorm:"size:20;not null;index"`
	Code       string     `gorm:"size:64"`
	FinishedAt *time.Time `gorm:"index"`
	CreatedAt  time.Time  `gorm:"not null;index"`
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the default table name used by GORM.
func (ActivationModel) TableName() string {
	return "activations"
}

// BeforeCreate ensures a UUID is set before inserting a new record.
func (m *ActivationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
