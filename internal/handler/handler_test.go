package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness-league/internal/models"
	"fitness-league/internal/scoring"
	"fitness-league/internal/service"
	"fitness-league/pkg/errors"
)

type fakeFinalizer struct {
	result *service.FinalizeResult
	err    error
	gotID  uint
}

func (f *fakeFinalizer) FinalizeWeek(_ context.Context, weekID uint) (*service.FinalizeResult, error) {
	f.gotID = weekID
	return f.result, f.err
}

type fakeWeeks struct {
	weeks map[uint]models.Week
}

func (f *fakeWeeks) GetByID(_ context.Context, id uint) (*models.Week, error) {
	w, ok := f.weeks[id]
	if !ok {
		return nil, fmt.Errorf("week %d: %w", id, errors.ErrWeekNotFound)
	}
	return &w, nil
}

func (f *fakeWeeks) ListByBlock(_ context.Context, blockID uint) ([]models.Week, error) {
	var out []models.Week
	for _, w := range f.weeks {
		if w.BlockID == blockID {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakeResults struct {
	metrics []models.TeamWeekMetric
	awards  []models.TeamWeekAward
}

func (f *fakeResults) GetWeekMetrics(context.Context, uint) ([]models.TeamWeekMetric, error) {
	return f.metrics, nil
}

func (f *fakeResults) GetWeekAwards(context.Context, uint) ([]models.TeamWeekAward, error) {
	return f.awards, nil
}

type fakeStandings struct {
	standings []service.Standing
	entries   []models.PointLedgerEntry
	adjustErr error
	adjusted  []models.PointLedgerEntry
}

func (f *fakeStandings) Standings(context.Context) ([]service.Standing, error) {
	return f.standings, nil
}

func (f *fakeStandings) TeamLedger(_ context.Context, teamID uint, limit int) ([]models.PointLedgerEntry, error) {
	return f.entries, nil
}

func (f *fakeStandings) AdjustPoints(_ context.Context, teamID uint, amount int, reason string) (*models.PointLedgerEntry, error) {
	if f.adjustErr != nil {
		return nil, f.adjustErr
	}
	e := models.PointLedgerEntry{TeamID: teamID, Amount: amount, Reason: reason, Source: "manual"}
	f.adjusted = append(f.adjusted, e)
	return &e, nil
}

type fakeTrigger struct {
	done int
	err  error
}

func (f *fakeTrigger) TriggerNow(context.Context) (int, error) { return f.done, f.err }

type fixture struct {
	finalizer *fakeFinalizer
	results   *fakeResults
	standings *fakeStandings
	trigger   *fakeTrigger
	router    *mux.Router
}

func newFixture() *fixture {
	f := &fixture{
		finalizer: &fakeFinalizer{},
		results:   &fakeResults{},
		standings: &fakeStandings{},
		trigger:   &fakeTrigger{},
	}
	weeks := &fakeWeeks{weeks: map[uint]models.Week{
		3: {ID: 3, BlockID: 1, WeekNumber: 3},
		4: {ID: 4, BlockID: 1, WeekNumber: 4},
	}}
	f.router = mux.NewRouter()
	RegisterRoutes(f.router,
		NewWeekHandler(f.finalizer, f.results, weeks),
		NewStandingsHandler(f.standings),
		NewTriggerHandler(f.trigger),
	)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFinalize_OK(t *testing.T) {
	f := newFixture()
	f.finalizer.result = &service.FinalizeResult{
		RunID:      "run-1",
		WeekID:     3,
		WeekNumber: 3,
		Awards:     []scoring.Award{{TeamID: 1, Category: scoring.CategoryDistance, Value: 12.5}},
		Results:    []scoring.TeamResult{{TeamID: 1, KmAvg: 12.5, Eligible: true, MemberCount: 4}},
	}

	rec := f.do(http.MethodPost, "/api/weeks/3/finalize", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), f.finalizer.gotID)

	body := decode(t, rec)
	assert.Equal(t, "run-1", body["run_id"])
	assert.EqualValues(t, 3, body["week_number"])
	assert.Len(t, body["awards"], 1)
	assert.Len(t, body["metrics"], 1)
}

func TestFinalize_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "unknown week",
			err:    errors.New(errors.ErrWeekNotFoundCode, "week 9 does not exist", errors.ErrWeekNotFound),
			status: http.StatusNotFound,
		},
		{
			name:   "bad logs",
			err:    errors.New(errors.ErrComputation, "compute team metrics", errors.ErrInvalidInput),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "store failure",
			err:    errors.New(errors.ErrPersistence, "replace week results", stderrors.New("deadlock")),
			status: http.StatusInternalServerError,
		},
		{
			name:   "same week still running",
			err:    errors.New(errors.ErrTimeout, "waiting for another run of week 9", context.DeadlineExceeded),
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "load failure",
			err:    errors.New(errors.ErrDataLoad, "load team rosters", stderrors.New("timeout")),
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.finalizer.err = tc.err

			rec := f.do(http.MethodPost, "/api/weeks/9/finalize", "")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, errors.CodeOf(tc.err), decode(t, rec)["code"])
		})
	}
}

func TestFinalize_RejectsGetAndBadIDs(t *testing.T) {
	f := newFixture()

	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodGet, "/api/weeks/3/finalize", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/weeks/abc/finalize", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/weeks/0/finalize", "").Code)
}

func TestWeekResults(t *testing.T) {
	f := newFixture()
	f.results.metrics = []models.TeamWeekMetric{{TeamID: 1, WeekID: 3, KmAvg: 12.5, PointsAwarded: 1}}
	f.results.awards = []models.TeamWeekAward{{TeamID: 1, WeekID: 3, Category: "distance", Value: 12.5}}

	rec := f.do(http.MethodGet, "/api/weeks/3/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)

	rec = f.do(http.MethodGet, "/api/weeks/3/awards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)

	rec = f.do(http.MethodGet, "/api/weeks/77/awards", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBlockWeeks(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/blocks/1/weeks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var weeks []models.Week
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weeks))
	assert.Len(t, weeks, 2)
}

func TestStandingsAndLedger(t *testing.T) {
	f := newFixture()
	f.standings.standings = []service.Standing{
		{Rank: 1, TeamID: 2, TeamName: "Bravo", Points: 4},
		{Rank: 1, TeamID: 1, TeamName: "Alpha", Points: 4},
	}
	f.standings.entries = []models.PointLedgerEntry{{TeamID: 1, Amount: 1, Reason: "winner: distance (week 3)"}}

	rec := f.do(http.MethodGet, "/api/standings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var standings []service.Standing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &standings))
	assert.Equal(t, f.standings.standings, standings)

	rec = f.do(http.MethodGet, "/api/teams/1/ledger?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)
}

func TestAdjustPoints(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/teams/2/adjustments", `{"amount": 3, "reason": "charity run"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.standings.adjusted, 1)
	assert.Equal(t, uint(2), f.standings.adjusted[0].TeamID)

	rec = f.do(http.MethodPost, "/api/teams/2/adjustments", `{"amount": 0, "reason": "noop"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/teams/2/adjustments", `{"amount": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/teams/2/adjustments", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustPoints_StoreFailure(t *testing.T) {
	f := newFixture()
	f.standings.adjustErr = errors.New(errors.ErrPersistence, "record point adjustment", stderrors.New("fk violation"))

	rec := f.do(http.MethodPost, "/api/teams/99/adjustments", `{"amount": 1, "reason": "bonus"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFinalizeRecent(t *testing.T) {
	f := newFixture()
	f.trigger.done = 2
	f.trigger.err = stderrors.New("week 5 failed")

	rec := f.do(http.MethodPost, "/api/finalize/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 2, body["finalized"])
	assert.Equal(t, "week 5 failed", body["errors"])
}

func TestHealth(t *testing.T) {
	rec := newFixture().do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}
