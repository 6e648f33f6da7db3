package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fitness-league/internal/models"
	"fitness-league/pkg/errors"
)

type WeekRepository struct {
	db *gorm.DB
}

func NewWeekRepository(db *gorm.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

// GetByID returns the week or an error wrapping errors.ErrWeekNotFound.
func (r *WeekRepository) GetByID(ctx context.Context, id uint) (*models.Week, error) {
	var week models.Week
	err := r.db.WithContext(ctx).First(&week, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("week %d: %w", id, errors.ErrWeekNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &week, nil
}

// ListEndedBetween returns weeks whose end date falls in [from, to), oldest first.
func (r *WeekRepository) ListEndedBetween(ctx context.Context, from, to time.Time) ([]models.Week, error) {
	var weeks []models.Week
	err := r.db.WithContext(ctx).
		Where("end_date >= ? AND end_date < ?", from, to).
		Order("end_date ASC, id ASC").
		Find(&weeks).Error
	return weeks, err
}

func (r *WeekRepository) ListByBlock(ctx context.Context, blockID uint) ([]models.Week, error) {
	var weeks []models.Week
	err := r.db.WithContext(ctx).
		Where("block_id = ?", blockID).
		Order("week_number ASC").
		Find(&weeks).Error
	return weeks, err
}
