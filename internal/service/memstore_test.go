package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"fitness-league/internal/models"
	"fitness-league/internal/repository"
	"fitness-league/internal/scoring"
	"fitness-league/pkg/errors"
)

type metricKey struct {
	teamID uint
	weekID uint
}

// memStore is an in-memory stand-in for the week, roster and results
// repositories. ReplaceWeekResults works on a copy and swaps it in only when
// every step succeeds, like a committed transaction.
type memStore struct {
	mu sync.Mutex

	weeks   map[uint]models.Week
	rosters map[uint][]scoring.TeamRoster

	metrics map[metricKey]models.TeamWeekMetric
	awards  []models.TeamWeekAward
	ledger  []models.PointLedgerEntry

	writeErr   error
	writes     int
	inFlight   map[uint]*int32
	overlapped atomic.Bool
	writeDelay time.Duration
	// block, when set, holds every write until it is closed.
	block chan struct{}
}

func newMemStore() *memStore {
	return &memStore{
		weeks:    make(map[uint]models.Week),
		rosters:  make(map[uint][]scoring.TeamRoster),
		metrics:  make(map[metricKey]models.TeamWeekMetric),
		inFlight: make(map[uint]*int32),
	}
}

func (s *memStore) addWeek(w models.Week, rosters []scoring.TeamRoster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weeks[w.ID] = w
	s.rosters[w.ID] = rosters
	var n int32
	s.inFlight[w.ID] = &n
}

func (s *memStore) GetByID(_ context.Context, id uint) (*models.Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.weeks[id]
	if !ok {
		return nil, fmt.Errorf("week %d: %w", id, errors.ErrWeekNotFound)
	}
	return &w, nil
}

func (s *memStore) ListEndedBetween(_ context.Context, from, to time.Time) ([]models.Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Week
	for _, w := range s.weeks {
		if !w.EndDate.Before(from) && w.EndDate.Before(to) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) LoadRosters(_ context.Context, week *models.Week) ([]scoring.TeamRoster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rosters[week.ID], nil
}

func (s *memStore) ReplaceWeekResults(ctx context.Context, outcome repository.WeekOutcome) error {
	weekID := outcome.Week.ID

	if counter := s.inFlight[weekID]; counter != nil {
		if atomic.AddInt32(counter, 1) > 1 {
			s.overlapped.Store(true)
		}
		defer atomic.AddInt32(counter, -1)
	}
	if s.writeDelay > 0 {
		time.Sleep(s.writeDelay)
	}
	if s.block != nil {
		<-s.block
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.writeErr != nil {
		return s.writeErr
	}

	metrics := make(map[metricKey]models.TeamWeekMetric, len(s.metrics))
	for k, v := range s.metrics {
		if k.weekID != weekID {
			metrics[k] = v
		}
	}
	for _, r := range outcome.Results {
		metrics[metricKey{r.TeamID, weekID}] = models.TeamWeekMetric{
			TeamID:          r.TeamID,
			WeekID:          weekID,
			MemberCount:     r.MemberCount,
			Eligible:        r.Eligible,
			KmAvg:           r.KmAvg,
			LifestyleAvg:    r.LifestyleAvg,
			AttendanceAvg:   r.AttendanceAvg,
			WeightLossTotal: r.WeightLossTotal,
		}
	}

	var awards []models.TeamWeekAward
	for _, a := range s.awards {
		if a.WeekID != weekID {
			awards = append(awards, a)
		}
	}
	var ledger []models.PointLedgerEntry
	for _, e := range s.ledger {
		if e.Source == models.LedgerSourceWeeklyAward && e.WeekID != nil && *e.WeekID == weekID {
			continue
		}
		ledger = append(ledger, e)
	}

	for _, a := range outcome.Awards {
		awards = append(awards, models.TeamWeekAward{TeamID: a.TeamID, WeekID: weekID, Category: string(a.Category), Value: a.Value})
		key := metricKey{a.TeamID, weekID}
		m := metrics[key]
		m.PointsAwarded += outcome.PointsPerAward
		metrics[key] = m
		id := weekID
		ledger = append(ledger, models.PointLedgerEntry{
			TeamID:   a.TeamID,
			Amount:   outcome.PointsPerAward,
			Reason:   repository.LedgerReason(outcome.ReasonPrefix, a.Category, outcome.Week.WeekNumber),
			Source:   models.LedgerSourceWeeklyAward,
			WeekID:   &id,
			Category: string(a.Category),
			RunID:    outcome.RunID,
		})
	}

	s.metrics = metrics
	s.awards = awards
	s.ledger = ledger
	return nil
}

func (s *memStore) setRosters(weekID uint, rosters []scoring.TeamRoster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[weekID] = rosters
}

func (s *memStore) inFlightWrites(weekID uint) int32 {
	return atomic.LoadInt32(s.inFlight[weekID])
}

func (s *memStore) weekMetrics(weekID uint) []models.TeamWeekMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TeamWeekMetric
	for k, v := range s.metrics {
		if k.weekID == weekID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

func (s *memStore) weekAwards(weekID uint) []models.TeamWeekAward {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TeamWeekAward
	for _, a := range s.awards {
		if a.WeekID == weekID {
			out = append(out, a)
		}
	}
	return out
}

func (s *memStore) ledgerTotals() map[uint]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[uint]int)
	for _, e := range s.ledger {
		totals[e.TeamID] += e.Amount
	}
	return totals
}

func (s *memStore) ledgerReasons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.ledger {
		out = append(out, e.Reason)
	}
	sort.Strings(out)
	return out
}
