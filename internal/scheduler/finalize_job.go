package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"fitness-league/internal/config"
	"fitness-league/internal/service"
	"fitness-league/pkg/logger"
)

type RecentFinalizer interface {
	FinalizeRecentlyEnded(ctx context.Context, now time.Time, lookback time.Duration) ([]*service.FinalizeResult, error)
}

// FinalizeScheduler re-finalizes recently ended weeks on a cron schedule so
// late logs are picked up without anyone pressing the button.
type FinalizeScheduler struct {
	cron      *cron.Cron
	finalizer RecentFinalizer
	cronExpr  string
	lookback  time.Duration
	now       func() time.Time
}

func NewFinalizeScheduler(finalizer RecentFinalizer, cfg config.SchedulerConfig) *FinalizeScheduler {
	return &FinalizeScheduler{
		cron:      cron.New(cron.WithSeconds()),
		finalizer: finalizer,
		cronExpr:  cfg.FinalizeCron,
		lookback:  time.Duration(cfg.LookbackDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

func (s *FinalizeScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronExpr, s.run)
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.WithFields(map[string]interface{}{
		"cron":     s.cronExpr,
		"lookback": s.lookback.String(),
	}).Info("Week finalize scheduler started")
	return nil
}

func (s *FinalizeScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Week finalize scheduler stopped")
}

func (s *FinalizeScheduler) run() {
	if _, err := s.TriggerNow(context.Background()); err != nil {
		logger.Error("Scheduled week finalize finished with errors: ", err)
	}
}

// TriggerNow runs one pass immediately and reports how many weeks were
// finalized.
func (s *FinalizeScheduler) TriggerNow(ctx context.Context) (int, error) {
	results, err := s.finalizer.FinalizeRecentlyEnded(ctx, s.now().UTC(), s.lookback)

	done := 0
	for _, r := range results {
		if r != nil {
			done++
		}
	}

	logger.WithFields(map[string]interface{}{
		"finalized": done,
		"attempted": len(results),
	}).Info("Week finalize pass completed")
	return done, err
}
