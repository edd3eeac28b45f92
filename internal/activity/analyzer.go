package activity

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

type analyzerRepo interface {
	TotalsSince(ctx context.Context, userID int, since time.Time) (Totals, error)
	TotalCaloriesOnDay(ctx context.Context, userID int, day time.Time) (int, error)
	TypeBreakdown(ctx context.Context, userID int) (map[calc.ActivityType]int, error)
	Count(ctx context.Context, userID int) (int, error)
	TotalCaloriesBurned(ctx context.Context, userID int) (int, error)
}

// DayCalories is one point of the daily calories trend.
type DayCalories struct {
	Day      string `json:"day"`
	Calories int    `json:"calories"`
}

// TypeShare is the all-time share of one activity type.
type TypeShare struct {
	Type       calc.ActivityType `json:"type"`
	Workouts   int               `json:"workouts"`
	Percentage float64           `json:"percentage"`
}

type Analyzer struct {
	repo analyzerRepo

	// swapped in tests
	nowFunc func() time.Time
}

func NewAnalyzer(repo analyzerRepo) *Analyzer {
	return &Analyzer{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// WeeklyStats aggregates the last 7 days of activity.
func (a *Analyzer) WeeklyStats(ctx context.Context, userID int) (Totals, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.activity.weeklyStats")
	defer span.End()

	return a.repo.TotalsSince(ctx, userID, a.nowFunc().AddDate(0, 0, -7))
}

// MonthlyWorkouts is the number of workouts in the last 30 days.
func (a *Analyzer) MonthlyWorkouts(ctx context.Context, userID int) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.activity.monthlyWorkouts")
	defer span.End()

	totals, err := a.repo.TotalsSince(ctx, userID, a.nowFunc().AddDate(0, 0, -30))
	if err != nil {
		return 0, err
	}
	return totals.Workouts, nil
}

// CaloriesTrend returns one point per day for the last `days` days,
// oldest first, with zero for days without activity.
func (a *Analyzer) CaloriesTrend(ctx context.Context, userID, days int) ([]DayCalories, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.activity.caloriesTrend")
	defer span.End()

	now := a.nowFunc()
	trend := make([]DayCalories, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		calories, err := a.repo.TotalCaloriesOnDay(ctx, userID, day)
		if err != nil {
			return nil, err
		}
		trend = append(trend, DayCalories{
			Day:      day.Format("2006-01-02"),
			Calories: calories,
		})
	}

	return trend, nil
}

// TypeShares returns the all-time activity type breakdown with percentages.
func (a *Analyzer) TypeShares(ctx context.Context, userID int) ([]TypeShare, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.activity.typeShares")
	defer span.End()

	breakdown, err := a.repo.TypeBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range breakdown {
		total += count
	}
	if total == 0 {
		return []TypeShare{}, nil
	}

	shares := make([]TypeShare, 0, len(breakdown))
	for activityType, count := range breakdown {
		shares = append(shares, TypeShare{
			Type:       activityType,
			Workouts:   count,
			Percentage: math.Round(float64(count)/float64(total)*10000) / 100,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Workouts != shares[j].Workouts {
			return shares[i].Workouts > shares[j].Workouts
		}
		return shares[i].Type < shares[j].Type
	})

	return shares, nil
}

// AllTimeStats returns the lifetime workout count and calories burned.
func (a *Analyzer) AllTimeStats(ctx context.Context, userID int) (workouts, calories int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.activity.allTimeStats")
	defer span.End()

	workouts, err = a.repo.Count(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	calories, err = a.repo.TotalCaloriesBurned(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return workouts, calories, nil
}
