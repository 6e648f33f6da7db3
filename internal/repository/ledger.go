package repository

import (
	"context"

	"gorm.io/gorm"

	"fitness-league/internal/models"
)

// TeamPoints is a team's season total from the point ledger.
type TeamPoints struct {
	TeamID   uint   `json:"team_id"`
	TeamName string `json:"team_name"`
	Points   int    `json:"points"`
}

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// SeasonTotals sums every ledger entry per team. Teams without entries
// appear with zero points.
func (r *LedgerRepository) SeasonTotals(ctx context.Context) ([]TeamPoints, error) {
	var totals []TeamPoints
	err := r.db.WithContext(ctx).
		Table("teams").
		Select("teams.id AS team_id, teams.name AS team_name, COALESCE(SUM(point_ledger_entries.amount), 0) AS points").
		Joins("LEFT JOIN point_ledger_entries ON point_ledger_entries.team_id = teams.id").
		Group("teams.id, teams.name").
		Order("points DESC, teams.name ASC").
		Scan(&totals).Error
	return totals, err
}

// EntriesByTeam returns the newest entries first. limit <= 0 returns all.
func (r *LedgerRepository) EntriesByTeam(ctx context.Context, teamID uint, limit int) ([]models.PointLedgerEntry, error) {
	var entries []models.PointLedgerEntry
	query := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&entries).Error
	return entries, err
}

// AddManual records a non-award grant, e.g. a bonus or penalty set by an admin.
func (r *LedgerRepository) AddManual(ctx context.Context, teamID uint, amount int, reason string) (*models.PointLedgerEntry, error) {
	entry := &models.PointLedgerEntry{
		TeamID: teamID,
		Amount: amount,
		Reason: reason,
		Source: "manual",
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
