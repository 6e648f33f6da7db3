package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"fitness-league/internal/config"
	"fitness-league/internal/database"
	"fitness-league/internal/repository"
	"fitness-league/internal/service"
	"fitness-league/pkg/logger"
)

// Reused across warm invocations.
var (
	finalizer *service.WeekFinalizer
	lookback  time.Duration
)

// handler finalizes recently ended weeks on an EventBridge schedule.
func handler(ctx context.Context, event events.CloudWatchEvent) error {
	if finalizer == nil {
		if err := initFinalizer(ctx); err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
	}

	logger.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_time": event.Time,
	}).Info("Scheduled week finalize invoked")

	results, err := finalizer.FinalizeRecentlyEnded(ctx, time.Now().UTC(), lookback)
	done := 0
	for _, r := range results {
		if r != nil {
			done++
		}
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{"finalized": done}).Error("Scheduled week finalize failed: ", err)
		return err
	}

	logger.WithFields(map[string]interface{}{"finalized": done}).Info("Scheduled week finalize completed")
	return nil
}

func initFinalizer(ctx context.Context) error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, "json", "stdout"); err != nil {
		return err
	}

	if arn := os.Getenv("DB_SECRET_ARN"); arn != "" {
		if err := config.LoadDatabaseSecret(ctx, &cfg.Database, arn); err != nil {
			return fmt.Errorf("failed to get DB credentials: %w", err)
		}
	}

	// small pool, one invocation at a time per container
	cfg.Database.MaxOpenConns = 5
	cfg.Database.MaxIdleConns = 2

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}

	finalizer = service.NewWeekFinalizer(
		repository.NewWeekRepository(db),
		repository.NewRosterRepository(db),
		repository.NewResultsRepository(db),
		cfg.Scoring,
		nil,
	)
	lookback = time.Duration(cfg.Scheduler.LookbackDays) * 24 * time.Hour
	return nil
}

func main() {
	lambda.Start(handler)
}
