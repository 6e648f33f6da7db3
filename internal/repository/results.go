package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitness-league/internal/models"
	"fitness-league/internal/scoring"
)

// WeekOutcome is everything one finalize run writes for a week.
type WeekOutcome struct {
	Week           models.Week
	RunID          string
	Results        []scoring.TeamResult
	Awards         []scoring.Award
	PointsPerAward int
	ReasonPrefix   string
}

// LedgerReason renders the human readable reason stored on a ledger entry.
func LedgerReason(prefix string, category scoring.Category, weekNumber int) string {
	return fmt.Sprintf("%s: %s (week %d)", prefix, category, weekNumber)
}

// ResultsRepository owns team_week_metrics, team_week_awards and the
// weekly-award slice of the point ledger.
type ResultsRepository struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
}

func NewResultsRepository(db *gorm.DB) *ResultsRepository {
	return &ResultsRepository{db: db, isolation: sql.LevelSerializable}
}

// WithIsolation returns a copy that runs ReplaceWeekResults at level, for
// drivers that do not accept serializable transactions.
func (r *ResultsRepository) WithIsolation(level sql.IsolationLevel) *ResultsRepository {
	return &ResultsRepository{db: r.db, isolation: level}
}

// ReplaceWeekResults swaps the week's metrics, awards and award ledger entries
// for the outcome's in one transaction, serializable unless WithIsolation
// says otherwise.
func (r *ResultsRepository) ReplaceWeekResults(ctx context.Context, outcome WeekOutcome) error {
	weekID := outcome.Week.ID

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, res := range outcome.Results {
			metric := models.TeamWeekMetric{
				TeamID:          res.TeamID,
				WeekID:          weekID,
				MemberCount:     res.MemberCount,
				Eligible:        res.Eligible,
				KmAvg:           res.KmAvg,
				LifestyleAvg:    res.LifestyleAvg,
				AttendanceAvg:   res.AttendanceAvg,
				WeightLossTotal: res.WeightLossTotal,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "team_id"}, {Name: "week_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"member_count", "eligible", "km_avg", "lifestyle_avg",
					"attendance_avg", "weight_loss_total", "updated_at",
				}),
			}).Create(&metric).Error
			if err != nil {
				return fmt.Errorf("upsert metric for team %d: %w", res.TeamID, err)
			}
		}

		// Teams no longer on a roster keep no row for the week.
		stale := tx.Where("week_id = ?", weekID)
		if len(outcome.Results) > 0 {
			teamIDs := make([]uint, 0, len(outcome.Results))
			for _, res := range outcome.Results {
				teamIDs = append(teamIDs, res.TeamID)
			}
			stale = stale.Where("team_id NOT IN ?", teamIDs)
		}
		if err := stale.Delete(&models.TeamWeekMetric{}).Error; err != nil {
			return fmt.Errorf("delete stale metrics: %w", err)
		}

		// Earlier runs must not leak points into this one.
		err := tx.Model(&models.TeamWeekMetric{}).
			Where("week_id = ?", weekID).
			UpdateColumn("points_awarded", 0).Error
		if err != nil {
			return fmt.Errorf("reset points: %w", err)
		}

		if err := tx.Where("week_id = ?", weekID).Delete(&models.TeamWeekAward{}).Error; err != nil {
			return fmt.Errorf("delete awards: %w", err)
		}

		err = tx.Where("source = ? AND week_id = ?", models.LedgerSourceWeeklyAward, weekID).
			Delete(&models.PointLedgerEntry{}).Error
		if err != nil {
			return fmt.Errorf("delete ledger entries: %w", err)
		}

		for _, a := range outcome.Awards {
			if err := r.applyAward(tx, outcome, a); err != nil {
				return err
			}
		}
		return nil
	}, &sql.TxOptions{Isolation: r.isolation})
}

func (r *ResultsRepository) applyAward(tx *gorm.DB, outcome WeekOutcome, a scoring.Award) error {
	weekID := outcome.Week.ID

	award := models.TeamWeekAward{
		TeamID:   a.TeamID,
		WeekID:   weekID,
		Category: string(a.Category),
		Value:    a.Value,
	}
	if err := tx.Create(&award).Error; err != nil {
		return fmt.Errorf("insert %s award for team %d: %w", a.Category, a.TeamID, err)
	}

	err := tx.Model(&models.TeamWeekMetric{}).
		Where("team_id = ? AND week_id = ?", a.TeamID, weekID).
		UpdateColumn("points_awarded", gorm.Expr("points_awarded + ?", outcome.PointsPerAward)).Error
	if err != nil {
		return fmt.Errorf("add points for team %d: %w", a.TeamID, err)
	}

	entry := models.PointLedgerEntry{
		TeamID:   a.TeamID,
		Amount:   outcome.PointsPerAward,
		Reason:   LedgerReason(outcome.ReasonPrefix, a.Category, outcome.Week.WeekNumber),
		Source:   models.LedgerSourceWeeklyAward,
		WeekID:   &weekID,
		Category: string(a.Category),
		RunID:    outcome.RunID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("insert ledger entry for team %d: %w", a.TeamID, err)
	}
	return nil
}

func (r *ResultsRepository) GetWeekMetrics(ctx context.Context, weekID uint) ([]models.TeamWeekMetric, error) {
	var metrics []models.TeamWeekMetric
	err := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Order("points_awarded DESC, team_id ASC").
		Find(&metrics).Error
	return metrics, err
}

func (r *ResultsRepository) GetWeekAwards(ctx context.Context, weekID uint) ([]models.TeamWeekAward, error) {
	var awards []models.TeamWeekAward
	err := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Order("category ASC, team_id ASC").
		Find(&awards).Error
	return awards, err
}
