package service

import (
	"context"
	"fmt"
	"strings"

	"fitness-league/internal/models"
	"fitness-league/internal/repository"
	"fitness-league/pkg/errors"
	"fitness-league/pkg/logger"
)

type LedgerStore interface {
	SeasonTotals(ctx context.Context) ([]repository.TeamPoints, error)
	EntriesByTeam(ctx context.Context, teamID uint, limit int) ([]models.PointLedgerEntry, error)
	AddManual(ctx context.Context, teamID uint, amount int, reason string) (*models.PointLedgerEntry, error)
}

type Standing struct {
	Rank     int    `json:"rank"`
	TeamID   uint   `json:"team_id"`
	TeamName string `json:"team_name"`
	Points   int    `json:"points"`
}

type StandingsService struct {
	ledger LedgerStore
}

func NewStandingsService(ledger LedgerStore) *StandingsService {
	return &StandingsService{ledger: ledger}
}

// Standings returns the season table. Teams level on points share a rank
// and the next rank is skipped (1, 1, 3).
func (s *StandingsService) Standings(ctx context.Context) ([]Standing, error) {
	totals, err := s.ledger.SeasonTotals(ctx)
	if err != nil {
		return nil, err
	}
	return rankTotals(totals), nil
}

func rankTotals(totals []repository.TeamPoints) []Standing {
	standings := make([]Standing, 0, len(totals))
	for i, t := range totals {
		rank := i + 1
		if i > 0 && t.Points == totals[i-1].Points {
			rank = standings[i-1].Rank
		}
		standings = append(standings, Standing{
			Rank:     rank,
			TeamID:   t.TeamID,
			TeamName: t.TeamName,
			Points:   t.Points,
		})
	}
	return standings
}

func (s *StandingsService) TeamLedger(ctx context.Context, teamID uint, limit int) ([]models.PointLedgerEntry, error) {
	return s.ledger.EntriesByTeam(ctx, teamID, limit)
}

// AdjustPoints records a manual bonus or penalty. Finalize runs never touch
// these entries.
func (s *StandingsService) AdjustPoints(ctx context.Context, teamID uint, amount int, reason string) (*models.PointLedgerEntry, error) {
	reason = strings.TrimSpace(reason)
	if amount == 0 {
		return nil, fmt.Errorf("adjustment amount must be non-zero: %w", errors.ErrInvalidInput)
	}
	if reason == "" {
		return nil, fmt.Errorf("adjustment needs a reason: %w", errors.ErrInvalidInput)
	}

	entry, err := s.ledger.AddManual(ctx, teamID, amount, reason)
	if err != nil {
		return nil, errors.New(errors.ErrPersistence, "record point adjustment", err)
	}

	logger.WithFields(map[string]interface{}{
		"team_id": teamID,
		"amount":  amount,
	}).Info("manual point adjustment recorded: ", reason)
	return entry, nil
}
