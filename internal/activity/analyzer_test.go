package activity

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyzerRepoMock struct {
	totals        Totals
	caloriesByDay map[string]int
	breakdown     map[calc.ActivityType]int
	count         int
	totalCalories int
}

func (m *analyzerRepoMock) TotalsSince(_ context.Context, _ int, _ time.Time) (Totals, error) {
	return m.totals, nil
}

func (m *analyzerRepoMock) TotalCaloriesOnDay(_ context.Context, _ int, day time.Time) (int, error) {
	return m.caloriesByDay[pkg.DayStart(day).Format("2006-01-02")], nil
}

func (m *analyzerRepoMock) TypeBreakdown(_ context.Context, _ int) (map[calc.ActivityType]int, error) {
	return m.breakdown, nil
}

func (m *analyzerRepoMock) Count(_ context.Context, _ int) (int, error) {
	return m.count, nil
}

func (m *analyzerRepoMock) TotalCaloriesBurned(_ context.Context, _ int) (int, error) {
	return m.totalCalories, nil
}

func TestAnalyzer_CaloriesTrend(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	repo := &analyzerRepoMock{
		caloriesByDay: map[string]int{
			"2025-03-10": 340,
			"2025-03-08": 500,
		},
	}

	analyzer := NewAnalyzer(repo)
	analyzer.nowFunc = func() time.Time { return now }

	trend, err := analyzer.CaloriesTrend(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, trend, 7)

	// oldest first, zero-filled
	assert.Equal(t, "2025-03-04", trend[0].Day)
	assert.Equal(t, 0, trend[0].Calories)
	assert.Equal(t, "2025-03-08", trend[4].Day)
	assert.Equal(t, 500, trend[4].Calories)
	assert.Equal(t, "2025-03-10", trend[6].Day)
	assert.Equal(t, 340, trend[6].Calories)
}

func TestAnalyzer_TypeShares(t *testing.T) {
	repo := &analyzerRepoMock{
		breakdown: map[calc.ActivityType]int{
			calc.ActivityRunning: 6,
			calc.ActivityYoga:    2,
			calc.ActivityCycling: 2,
		},
	}

	analyzer := NewAnalyzer(repo)

	shares, err := analyzer.TypeShares(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	assert.Equal(t, calc.ActivityRunning, shares[0].Type)
	assert.Equal(t, 60.0, shares[0].Percentage)
	// ties broken by type name
	assert.Equal(t, calc.ActivityCycling, shares[1].Type)
	assert.Equal(t, 20.0, shares[1].Percentage)
}

func TestAnalyzer_TypeShares_noActivities(t *testing.T) {
	analyzer := NewAnalyzer(&analyzerRepoMock{breakdown: map[calc.ActivityType]int{}})

	shares, err := analyzer.TypeShares(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, shares)
}

func TestAnalyzer_WeeklyStats(t *testing.T) {
	repo := &analyzerRepoMock{
		totals: Totals{Workouts: 4, CaloriesBurned: 1500, DurationMinutes: 180},
	}
	analyzer := NewAnalyzer(repo)

	stats, err := analyzer.WeeklyStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Workouts)
	assert.Equal(t, 1500, stats.CaloriesBurned)

	workouts, err := analyzer.MonthlyWorkouts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, workouts)
}

func TestAnalyzer_AllTimeStats(t *testing.T) {
	analyzer := NewAnalyzer(&analyzerRepoMock{count: 12, totalCalories: 4800})

	workouts, calories, err := analyzer.AllTimeStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 12, workouts)
	assert.Equal(t, 4800, calories)
}
