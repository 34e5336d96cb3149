package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// ChangeFilter narrows a journal listing. Zero values mean "any".
type ChangeFilter struct {
	Service string
	Action  string
	From    time.Time
	To      time.Time
	Page    int
	Limit   int
}

type ChangeLogGormRepository struct {
	db *gorm.DB
}

func NewChangeLogGormRepository(db *gorm.DB) *ChangeLogGormRepository {
	return &ChangeLogGormRepository{db: db}
}

// Create ignores a change id that was already journaled.
func (r *ChangeLogGormRepository) Create(
	ctx context.Context,
	entry *models.ChangeLog,
) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "change_id"}},
			DoNothing: true,
		}).
		Create(entry).Error
}

func (r *ChangeLogGormRepository) List(
	ctx context.Context,
	f ChangeFilter,
) ([]models.ChangeLog, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.ChangeLog{})

	if f.Service != "" {
		q = q.Where("service = ?", f.Service)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if !f.From.IsZero() {
		q = q.Where("occurred_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("occurred_at < ?", f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.ChangeLog
	if err := q.
		Order("occurred_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
