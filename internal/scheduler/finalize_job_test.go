package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness-league/internal/config"
	"fitness-league/internal/service"
)

type fakeFinalizer struct {
	calls    int
	now      time.Time
	lookback time.Duration
	results  []*service.FinalizeResult
	err      error
}

func (f *fakeFinalizer) FinalizeRecentlyEnded(_ context.Context, now time.Time, lookback time.Duration) ([]*service.FinalizeResult, error) {
	f.calls++
	f.now = now
	f.lookback = lookback
	return f.results, f.err
}

func TestTriggerNow(t *testing.T) {
	fake := &fakeFinalizer{results: []*service.FinalizeResult{{WeekID: 1}, nil, {WeekID: 3}}}
	s := NewFinalizeScheduler(fake, config.SchedulerConfig{FinalizeCron: "0 5 * * * *", LookbackDays: 7})
	fixed := time.Date(2024, 3, 13, 5, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	done, err := s.TriggerNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, done)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, fixed, fake.now)
	assert.Equal(t, 7*24*time.Hour, fake.lookback)
}

func TestTriggerNow_ReportsErrors(t *testing.T) {
	fake := &fakeFinalizer{err: errors.New("week 4 failed")}
	s := NewFinalizeScheduler(fake, config.SchedulerConfig{FinalizeCron: "0 5 * * * *", LookbackDays: 1})

	done, err := s.TriggerNow(context.Background())
	assert.Error(t, err)
	assert.Zero(t, done)
}

func TestStart_InvalidCron(t *testing.T) {
	s := NewFinalizeScheduler(&fakeFinalizer{}, config.SchedulerConfig{FinalizeCron: "not a schedule", LookbackDays: 7})
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewFinalizeScheduler(&fakeFinalizer{}, config.SchedulerConfig{FinalizeCron: "0 5 * * * *", LookbackDays: 7})
	require.NoError(t, s.Start())
	s.Stop()
}
