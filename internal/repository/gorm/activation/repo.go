package activationgorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/smshub/internal/db"
	"github.com/oggyb/smshub/internal/domain/activation"
)

// Repository is a GORM-backed implementation of activation.Repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an activation repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// Save inserts a new activation record.
func (r *Repository) Save(ctx context.Context, a *activation.Activation) error {
	return r.db.WithContext(ctx).Create(fromDomain(a)).Error
}

// Get loads one activation by its local id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*activation.Activation, error) {
	var m ActivationModel

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, activation.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&m), nil
}

// GetPending returns up to limit activations still waiting for a code,
// oldest first. Rows are not locked: the scheduler runs one batch at a time
// per process and a status refresh is idempotent, so two processes polling
// the same row only cost an extra provider call.
func (r *Repository) GetPending(ctx context.Context, limit int) ([]*activation.Activation, error) {
	var models []ActivationModel

	if err := pendingQuery(r.db.WithContext(ctx), limit).Find(&models).Error; err != nil {
		return nil, err
	}

	return toDomainMany(models), nil
}

func pendingQuery(tx *gorm.DB, limit int) *gorm.DB {
	return tx.Model(&ActivationModel{}).
		Where("status IN ?", pendingStatuses()).
		Order("created_at ASC").
		Limit(limit)
}

// List returns a page of activations, newest first, and the total count.
func (r *Repository) List(ctx context.Context, page, limit int) ([]*activation.Activation, int64, error) {
	var models []ActivationModel
	var total int64

	query := r.db.WithContext(ctx).Model(&ActivationModel{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset(page, limit)).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	return toDomainMany(models), total, nil
}

// UpdateStatus persists the current status, code and timestamps.
func (r *Repository) UpdateStatus(ctx context.Context, a *activation.Activation) error {
	updates := map[string]interface{}{
		"status":      string(a.Status),
		"code":        a.Code,
		"finished_at": a.FinishedAt,
		"updated_at":  a.UpdatedAt,
	}

	res := r.db.WithContext(ctx).
		Model(&ActivationModel{}).
		Where("id = ?", a.ID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return activation.ErrNotFound
	}
	return nil
}

func pendingStatuses() []string {
	out := make([]string, len(activation.PendingStatuses))
	for i, s := range activation.PendingStatuses {
		out[i] = string(s)
	}
	return out
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// compile-time interface check
var _ activation.Repository = (*Repository)(nil)
