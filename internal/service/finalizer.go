package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"fitness-league/internal/config"
	"fitness-league/internal/models"
	"fitness-league/internal/repository"
	"fitness-league/internal/scoring"
	"fitness-league/pkg/errors"
	"fitness-league/pkg/logger"
)

type WeekReader interface {
	GetByID(ctx context.Context, id uint) (*models.Week, error)
	ListEndedBetween(ctx context.Context, from, to time.Time) ([]models.Week, error)
}

type RosterLoader interface {
	LoadRosters(ctx context.Context, week *models.Week) ([]scoring.TeamRoster, error)
}

type ResultWriter interface {
	ReplaceWeekResults(ctx context.Context, outcome repository.WeekOutcome) error
}

// FinalizeResult is what one finalize run computed and stored.
type FinalizeResult struct {
	RunID      string               `json:"run_id"`
	WeekID     uint                 `json:"week_id"`
	WeekNumber int                  `json:"week_number"`
	Results    []scoring.TeamResult `json:"metrics"`
	Awards     []scoring.Award      `json:"awards"`
	Points     map[uint]int         `json:"points_by_team"`
}

// WeekFinalizer scores a week and replaces its stored results. Runs for the
// same week are serialized; runs for different weeks proceed in parallel.
type WeekFinalizer struct {
	weeks   WeekReader
	rosters RosterLoader
	writer  ResultWriter
	metrics *FinalizeMetrics

	policy         scoring.Policy
	pointsPerAward int
	reasonPrefix   string
	timeout        time.Duration
	maxParallel    int

	locks *weekLocks
}

func NewWeekFinalizer(
	weeks WeekReader,
	rosters RosterLoader,
	writer ResultWriter,
	cfg config.ScoringConfig,
	metrics *FinalizeMetrics,
) *WeekFinalizer {
	return &WeekFinalizer{
		weeks:   weeks,
		rosters: rosters,
		writer:  writer,
		metrics: metrics,
		policy: scoring.Policy{
			MinActiveMembers:        cfg.MinActiveMembers,
			Precision:               cfg.Precision,
			AwardNonPositiveLeaders: cfg.AwardNonPositiveLeaders,
		},
		pointsPerAward: cfg.PointsPerAward,
		reasonPrefix:   cfg.ReasonPrefix,
		timeout:        cfg.Timeout(),
		maxParallel:    cfg.MaxParallelWeeks,
		locks:          newWeekLocks(),
	}
}

// FinalizeWeek recomputes the week's metrics and awards and replaces
// whatever an earlier run stored. Calling it again with unchanged data
// leaves the stored state unchanged.
func (f *WeekFinalizer) FinalizeWeek(ctx context.Context, weekID uint) (*FinalizeResult, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	ctx, span := otel.Tracer("week-finalizer").Start(ctx, "WeekFinalizer.FinalizeWeek",
		trace.WithAttributes(attribute.Int64("week.id", int64(weekID))))
	defer span.End()

	started := time.Now()
	result, err := f.finalize(ctx, weekID)
	f.metrics.observeRun(err, time.Since(started))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithFields(map[string]interface{}{
			"week_id": weekID,
			"code":    errors.CodeOf(err),
		}).Error("week finalize failed: ", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("finalize.run_id", result.RunID),
		attribute.Int("finalize.awards", len(result.Awards)),
	)
	return result, nil
}

func (f *WeekFinalizer) finalize(ctx context.Context, weekID uint) (*FinalizeResult, error) {
	release, err := f.locks.acquire(ctx, weekID)
	if err != nil {
		return nil, errors.New(errors.ErrTimeout, fmt.Sprintf("waiting for another run of week %d", weekID), err)
	}
	defer release()

	week, err := f.weeks.GetByID(ctx, weekID)
	if err != nil {
		if errors.Is(err, errors.ErrWeekNotFound) {
			return nil, errors.New(errors.ErrWeekNotFoundCode, fmt.Sprintf("week %d does not exist", weekID), err)
		}
		return nil, errors.New(errors.ErrDataLoad, "load week", err)
	}

	rosters, err := f.rosters.LoadRosters(ctx, week)
	if err != nil {
		return nil, errors.New(errors.ErrDataLoad, "load team rosters", err)
	}

	window := scoring.Window{Start: week.StartDate, End: week.EndDate}
	results, err := scoring.ComputeMetrics(rosters, window, f.policy)
	if err != nil {
		return nil, errors.New(errors.ErrComputation, "compute team metrics", err)
	}
	awards := scoring.DetermineWinners(results, f.policy)
	if awards == nil {
		awards = []scoring.Award{}
	}

	runID := uuid.NewString()
	outcome := repository.WeekOutcome{
		Week:           *week,
		RunID:          runID,
		Results:        results,
		Awards:         awards,
		PointsPerAward: f.pointsPerAward,
		ReasonPrefix:   f.reasonPrefix,
	}
	if err := f.writer.ReplaceWeekResults(ctx, outcome); err != nil {
		return nil, errors.New(errors.ErrPersistence, "replace week results", err)
	}

	for _, a := range awards {
		f.metrics.observeAward(string(a.Category))
	}

	logger.WithWeek(week.ID, week.WeekNumber).WithFields(map[string]interface{}{
		"run_id": runID,
		"teams":  len(results),
		"awards": len(awards),
	}).Info("week finalized")

	return &FinalizeResult{
		RunID:      runID,
		WeekID:     week.ID,
		WeekNumber: week.WeekNumber,
		Results:    results,
		Awards:     awards,
		Points:     scoring.PointsByTeam(awards, f.pointsPerAward),
	}, nil
}

// FinalizeWeeks finalizes each week independently. A failing week does not
// stop the others; the returned error joins every failure. Results are in
// weekIDs order with nil entries for failed weeks.
func (f *WeekFinalizer) FinalizeWeeks(ctx context.Context, weekIDs []uint) ([]*FinalizeResult, error) {
	results := make([]*FinalizeResult, len(weekIDs))
	errs := make([]error, len(weekIDs))

	var g errgroup.Group
	if f.maxParallel > 0 {
		g.SetLimit(f.maxParallel)
	}
	for i, id := range weekIDs {
		i, id := i, id
		g.Go(func() error {
			results[i], errs[i] = f.FinalizeWeek(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	return results, stderrors.Join(errs...)
}

// FinalizeRecentlyEnded finalizes every week whose end date is before now's
// date and no more than lookback in the past. Re-finalizing a week picks up
// logs entered late.
func (f *WeekFinalizer) FinalizeRecentlyEnded(ctx context.Context, now time.Time, lookback time.Duration) ([]*FinalizeResult, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	weeks, err := f.weeks.ListEndedBetween(ctx, today.Add(-lookback), today)
	if err != nil {
		return nil, errors.New(errors.ErrDataLoad, "list ended weeks", err)
	}

	ids := make([]uint, 0, len(weeks))
	for _, w := range weeks {
		ids = append(ids, w.ID)
	}

	logger.WithFields(map[string]interface{}{
		"weeks":    len(ids),
		"lookback": lookback.String(),
	}).Info("finalizing recently ended weeks")

	return f.FinalizeWeeks(ctx, ids)
}
