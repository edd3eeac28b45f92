package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/activity"
	"github.com/2beens/fittrack/internal/biometrics"
	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/goals"
	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/tips"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profilesMock struct {
	profiles map[int]*profile.Profile
}

func (m *profilesMock) Get(_ context.Context, userID int) (*profile.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

type activitiesMock struct {
	todayTotals activity.Totals
	recent      []activity.Activity
}

func (m *activitiesMock) TotalsSince(_ context.Context, _ int, _ time.Time) (activity.Totals, error) {
	return m.todayTotals, nil
}

func (m *activitiesMock) List(_ context.Context, _ activity.ListParams) ([]activity.Activity, int, error) {
	return m.recent, len(m.recent), nil
}

type statsMock struct {
	weekly   activity.Totals
	monthly  int
	trend    []activity.DayCalories
	shares   []activity.TypeShare
	workouts int
	calories int
}

func (m *statsMock) WeeklyStats(_ context.Context, _ int) (activity.Totals, error) {
	return m.weekly, nil
}

func (m *statsMock) MonthlyWorkouts(_ context.Context, _ int) (int, error) {
	return m.monthly, nil
}

func (m *statsMock) CaloriesTrend(_ context.Context, _, days int) ([]activity.DayCalories, error) {
	return m.trend, nil
}

func (m *statsMock) TypeShares(_ context.Context, _ int) ([]activity.TypeShare, error) {
	return m.shares, nil
}

func (m *statsMock) AllTimeStats(_ context.Context, _ int) (int, int, error) {
	return m.workouts, m.calories, nil
}

type hydrationMock struct {
	totalMl int
}

func (m *hydrationMock) DailyTotal(_ context.Context, _ int, _ time.Time) (int, error) {
	return m.totalMl, nil
}

type nutritionMock struct {
	totals nutrition.DayTotals
}

func (m *nutritionMock) DailyTotals(_ context.Context, _ int, _ time.Time) (nutrition.DayTotals, error) {
	return m.totals, nil
}

type goalsMock struct {
	active []goals.Goal
}

func (m *goalsMock) ListByStatus(_ context.Context, _ int, _ goals.Status) ([]goals.Goal, error) {
	return m.active, nil
}

type biometricsMock struct {
	entries []biometrics.Biometric
}

func (m *biometricsMock) ListRange(_ context.Context, _ int, _, _ time.Time) ([]biometrics.Biometric, error) {
	return m.entries, nil
}

type tipsMock struct {
	calls int
	tip   tips.Tip
}

func (m *tipsMock) DailyTip(_ context.Context, _ int) tips.Tip {
	m.calls++
	return m.tip
}

func dashboardRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/dashboard/{userID}", handler.HandleSummary).Methods("GET")
	r.HandleFunc("/dashboard/{userID}/charts", handler.HandleCharts).Methods("GET")
	return r
}

func newTestHandler(tipsGen *tipsMock, biometricsRepo *biometricsMock) *Handler {
	profiles := &profilesMock{profiles: map[int]*profile.Profile{
		1: {
			UserID:        1,
			Sex:           calc.SexMale,
			DateOfBirth:   time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
			HeightCm:      175,
			WeightKg:      70,
			ActivityLevel: calc.ActivityLevelSedentary,
			Goal:          calc.GoalMaintain,
		},
	}}
	if biometricsRepo == nil {
		biometricsRepo = &biometricsMock{}
	}
	handler := NewHandler(
		profiles,
		&activitiesMock{
			todayTotals: activity.Totals{Workouts: 1, CaloriesBurned: 343},
			recent: []activity.Activity{
				{ID: 1, UserID: 1, Type: calc.ActivityRunning, DurationMinutes: 30, CaloriesBurned: 343},
			},
		},
		&statsMock{
			weekly:   activity.Totals{Workouts: 4, CaloriesBurned: 1200, DurationMinutes: 150},
			monthly:  10,
			workouts: 25,
			calories: 8000,
			trend:    []activity.DayCalories{{Day: "2025-06-14", Calories: 500}},
			shares:   []activity.TypeShare{{Type: calc.ActivityRunning, Workouts: 25, Percentage: 100}},
		},
		&hydrationMock{totalMl: 1225},
		&nutritionMock{totals: nutrition.DayTotals{Calories: 750, ProteinG: 35}},
		&goalsMock{active: []goals.Goal{{ID: 1, UserID: 1, Title: "run 100 km", TargetValue: 100, Status: goals.StatusActive}}},
		biometricsRepo,
		tipsGen,
		calc.New(calc.DefaultDefaults()),
	)
	handler.nowFunc = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return handler
}

func TestHandler_HandleSummary(t *testing.T) {
	tipsGen := &tipsMock{tip: tips.Tip{Kind: tips.TipMotivation, Message: "go"}}
	router := dashboardRouter(newTestHandler(tipsGen, nil))

	req := httptest.NewRequest("GET", "/dashboard/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.NotNil(t, resp.Metrics.BMI)
	assert.Equal(t, 22.86, *resp.Metrics.BMI)
	assert.Equal(t, 1, resp.Today.Workouts)
	assert.Equal(t, 343, resp.Today.CaloriesBurned)
	assert.Equal(t, 1225, resp.Today.WaterMl)
	assert.Equal(t, 2450, resp.Today.WaterTargetMl)
	assert.Equal(t, 50.0, resp.Today.WaterPercentage)
	assert.Equal(t, 4, resp.WeeklyStats.Workouts)
	assert.Equal(t, 10, resp.MonthlyWorkouts)
	assert.Equal(t, 750, resp.Nutrition.Calories)
	require.Len(t, resp.RecentActivities, 1)
	require.Len(t, resp.ActiveGoals, 1)
	assert.Equal(t, tips.TipMotivation, resp.Tip.Kind)
}

func TestHandler_HandleSummary_tipCachedPerDay(t *testing.T) {
	tipsGen := &tipsMock{tip: tips.Tip{Kind: tips.TipHydration, Message: "drink"}}
	router := dashboardRouter(newTestHandler(tipsGen, nil))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/dashboard/1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	assert.Equal(t, 1, tipsGen.calls)
}

func TestHandler_HandleCharts(t *testing.T) {
	tipsGen := &tipsMock{}
	biometricsRepo := &biometricsMock{
		entries: []biometrics.Biometric{
			{ID: 1, UserID: 1, WeightKg: 72, RecordedAt: time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)},
			{ID: 2, UserID: 1, WeightKg: 70.5, RecordedAt: time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)},
		},
	}
	router := dashboardRouter(newTestHandler(tipsGen, biometricsRepo))

	req := httptest.NewRequest("GET", "/dashboard/1/charts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ChartsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.Len(t, resp.WeightTrend, 2)
	assert.Equal(t, -1.5, resp.Stats.WeightChangeKg)
	assert.Equal(t, 25, resp.Stats.TotalWorkouts)
	assert.Equal(t, 8000, resp.Stats.TotalCalories)
	assert.Equal(t, 1200, resp.Stats.WeekCalories)
	require.Len(t, resp.ActivityBreakdown, 1)
	require.Len(t, resp.CaloriesTrend, 1)
}

func TestHandler_HandleCharts_profileWeightFallback(t *testing.T) {
	tipsGen := &tipsMock{}
	router := dashboardRouter(newTestHandler(tipsGen, &biometricsMock{}))

	req := httptest.NewRequest("GET", "/dashboard/1/charts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ChartsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.WeightTrend, 1)
	assert.Equal(t, 70.0, resp.WeightTrend[0].WeightKg)
	assert.Equal(t, 0.0, resp.Stats.WeightChangeKg)
}
