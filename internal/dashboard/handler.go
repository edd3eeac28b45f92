package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/activity"
	"github.com/2beens/fittrack/internal/biometrics"
	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/goals"
	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/tips"
	"github.com/2beens/fittrack/pkg"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const tipCacheSizeBytes = 1024 * 1024

type profileGetter interface {
	Get(ctx context.Context, userID int) (*profile.Profile, error)
}

type activitiesRepo interface {
	TotalsSince(ctx context.Context, userID int, since time.Time) (activity.Totals, error)
	List(ctx context.Context, params activity.ListParams) (_ []activity.Activity, total int, err error)
}

type statsProvider interface {
	WeeklyStats(ctx context.Context, userID int) (activity.Totals, error)
	MonthlyWorkouts(ctx context.Context, userID int) (int, error)
	CaloriesTrend(ctx context.Context, userID, days int) ([]activity.DayCalories, error)
	TypeShares(ctx context.Context, userID int) ([]activity.TypeShare, error)
	AllTimeStats(ctx context.Context, userID int) (workouts, calories int, err error)
}

type hydrationRepo interface {
	DailyTotal(ctx context.Context, userID int, day time.Time) (int, error)
}

type nutritionRepo interface {
	DailyTotals(ctx context.Context, userID int, day time.Time) (nutrition.DayTotals, error)
}

type goalsRepo interface {
	ListByStatus(ctx context.Context, userID int, status goals.Status) ([]goals.Goal, error)
}

type biometricsRepo interface {
	ListRange(ctx context.Context, userID int, from, to time.Time) ([]biometrics.Biometric, error)
}

type tipProvider interface {
	DailyTip(ctx context.Context, userID int) tips.Tip
}

type TodayStats struct {
	Workouts        int     `json:"workouts"`
	CaloriesBurned  int     `json:"caloriesBurned"`
	WaterMl         int     `json:"waterMl"`
	WaterTargetMl   int     `json:"waterTargetMl"`
	WaterPercentage float64 `json:"waterPercentage"`
}

type SummaryResponse struct {
	Metrics          profile.DerivedMetrics `json:"metrics"`
	Today            TodayStats             `json:"today"`
	WeeklyStats      activity.Totals        `json:"weeklyStats"`
	MonthlyWorkouts  int                    `json:"monthlyWorkouts"`
	Nutrition        nutrition.DayTotals    `json:"nutrition"`
	RecentActivities []activity.Activity    `json:"recentActivities"`
	ActiveGoals      []goals.Goal           `json:"activeGoals"`
	Tip              tips.Tip               `json:"tip"`
}

type WeightPoint struct {
	Day      string  `json:"day"`
	WeightKg float64 `json:"weightKg"`
}

type ChartsStats struct {
	TotalWorkouts  int     `json:"totalWorkouts"`
	TotalCalories  int     `json:"totalCalories"`
	WeekCalories   int     `json:"weekCalories"`
	WeightChangeKg float64 `json:"weightChangeKg"`
}

type ChartsResponse struct {
	WeightTrend       []WeightPoint          `json:"weightTrend"`
	ActivityBreakdown []activity.TypeShare   `json:"activityBreakdown"`
	CaloriesTrend     []activity.DayCalories `json:"caloriesTrend"`
	Stats             ChartsStats            `json:"stats"`
}

type Handler struct {
	profiles   profileGetter
	activities activitiesRepo
	stats      statsProvider
	hydration  hydrationRepo
	nutrition  nutritionRepo
	goals      goalsRepo
	biometrics biometricsRepo
	tips       tipProvider
	calculator *calc.Calculator

	// daily tips are cached per (user, day), recomputing them on
	// every page view would hit the db for nothing
	tipCache *freecache.Cache

	// swapped in tests
	nowFunc func() time.Time
}

func NewHandler(
	profiles profileGetter,
	activities activitiesRepo,
	stats statsProvider,
	hydration hydrationRepo,
	nutritionRepo nutritionRepo,
	goalsRepo goalsRepo,
	biometricsRepo biometricsRepo,
	tipsGenerator tipProvider,
	calculator *calc.Calculator,
) *Handler {
	return &Handler{
		profiles:   profiles,
		activities: activities,
		stats:      stats,
		hydration:  hydration,
		nutrition:  nutritionRepo,
		goals:      goalsRepo,
		biometrics: biometricsRepo,
		tips:       tipsGenerator,
		calculator: calculator,
		tipCache:   freecache.NewCache(tipCacheSizeBytes),
		nowFunc:    time.Now,
	}
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.summary")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	now := handler.nowFunc()
	resp := SummaryResponse{
		RecentActivities: []activity.Activity{},
		ActiveGoals:      []goals.Goal{},
	}

	p, err := handler.profiles.Get(ctx, userID)
	if err == nil {
		resp.Metrics = profile.DeriveMetrics(handler.calculator, p)
	}

	todayTotals, err := handler.activities.TotalsSince(ctx, userID, pkg.DayStart(now))
	if err != nil {
		log.Errorf("dashboard, today totals for user %d: %s", userID, err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}
	resp.Today.Workouts = todayTotals.Workouts
	resp.Today.CaloriesBurned = todayTotals.CaloriesBurned

	if resp.Today.WaterMl, err = handler.hydration.DailyTotal(ctx, userID, now); err != nil {
		log.Errorf("dashboard, water total for user %d: %s", userID, err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}
	resp.Today.WaterTargetMl = handler.waterTarget(p)
	if resp.Today.WaterTargetMl > 0 {
		resp.Today.WaterPercentage = math.Min(
			math.Round(float64(resp.Today.WaterMl)/float64(resp.Today.WaterTargetMl)*10000)/100,
			100,
		)
	}

	if resp.WeeklyStats, err = handler.stats.WeeklyStats(ctx, userID); err != nil {
		log.Errorf("dashboard, weekly stats for user %d: %s", userID, err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}
	if resp.MonthlyWorkouts, err = handler.stats.MonthlyWorkouts(ctx, userID); err != nil {
		log.Errorf("dashboard, monthly workouts for user %d: %s", userID, err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}

	if resp.Nutrition, err = handler.nutrition.DailyTotals(ctx, userID, now); err != nil {
		log.Errorf("dashboard, nutrition totals for user %d: %s", userID, err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}

	recent, _, err := handler.activities.List(ctx, activity.ListParams{
		UserID: userID, Page: 1, Size: 5,
	})
	if err != nil {
		log.Errorf("dashboard, recent activities for user %d: %s", userID, err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}
	if recent != nil {
		resp.RecentActivities = recent
	}

	activeGoals, err := handler.goals.ListByStatus(ctx, userID, goals.StatusActive)
	if err != nil {
		log.Errorf("dashboard, active goals for user %d: %s", userID, err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}
	if activeGoals != nil {
		resp.ActiveGoals = activeGoals
	}

	resp.Tip = handler.dailyTip(ctx, userID, now)

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal dashboard summary: %s", err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleCharts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.charts")
	defer span.End()

	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	now := handler.nowFunc()
	resp := ChartsResponse{
		WeightTrend: []WeightPoint{},
	}

	entries, err := handler.biometrics.ListRange(ctx, userID, now.AddDate(0, 0, -30), now)
	if err != nil {
		log.Errorf("charts, biometric entries for user %d: %s", userID, err)
		http.Error(w, "failed to build charts", http.StatusInternalServerError)
		return
	}
	for _, entry := range entries {
		resp.WeightTrend = append(resp.WeightTrend, WeightPoint{
			Day:      entry.RecordedAt.Format("2006-01-02"),
			WeightKg: entry.WeightKg,
		})
	}
	if len(entries) == 0 {
		// no snapshots yet, show the profile weight as a single point
		if p, err := handler.profiles.Get(ctx, userID); err == nil && p.WeightKg > 0 {
			resp.WeightTrend = append(resp.WeightTrend, WeightPoint{
				Day:      now.Format("2006-01-02"),
				WeightKg: p.WeightKg,
			})
		}
	}
	if len(resp.WeightTrend) > 1 {
		first := resp.WeightTrend[0].WeightKg
		last := resp.WeightTrend[len(resp.WeightTrend)-1].WeightKg
		resp.Stats.WeightChangeKg = math.Round((last-first)*100) / 100
	}

	if resp.ActivityBreakdown, err = handler.stats.TypeShares(ctx, userID); err != nil {
		log.Errorf("charts, activity breakdown for user %d: %s", userID, err)
		http.Error(w, "failed to build charts", http.StatusInternalServerError)
		return
	}
	if resp.CaloriesTrend, err = handler.stats.CaloriesTrend(ctx, userID, 7); err != nil {
		log.Errorf("charts, calories trend for user %d: %s", userID, err)
		http.Error(w, "failed to build charts", http.StatusInternalServerError)
		return
	}

	if resp.Stats.TotalWorkouts, resp.Stats.TotalCalories, err = handler.stats.AllTimeStats(ctx, userID); err != nil {
		log.Errorf("charts, all time stats for user %d: %s", userID, err)
		http.Error(w, "failed to build charts", http.StatusInternalServerError)
		return
	}
	weekly, err := handler.stats.WeeklyStats(ctx, userID)
	if err != nil {
		log.Errorf("charts, weekly stats for user %d: %s", userID, err)
		http.Error(w, "failed to build charts", http.StatusInternalServerError)
		return
	}
	resp.Stats.WeekCalories = weekly.CaloriesBurned

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal charts response: %s", err)
		http.Error(w, "failed to build charts", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// dailyTip returns the cached tip for (user, day), generating and
// caching it on a miss.
func (handler *Handler) dailyTip(ctx context.Context, userID int, now time.Time) tips.Tip {
	cacheKey := []byte(fmt.Sprintf("tip::%d::%s", userID, now.Format("2006-01-02")))
	if cached, err := handler.tipCache.Get(cacheKey); err == nil {
		var tip tips.Tip
		if err := json.Unmarshal(cached, &tip); err == nil {
			return tip
		}
	}

	tip := handler.tips.DailyTip(ctx, userID)

	tipJson, err := json.Marshal(tip)
	if err != nil {
		log.Errorf("marshal daily tip for cache: %s", err)
		return tip
	}
	secondsLeftToday := int(pkg.DayStart(now).AddDate(0, 0, 1).Sub(now).Seconds())
	if err := handler.tipCache.Set(cacheKey, tipJson, secondsLeftToday); err != nil {
		log.Errorf("cache daily tip for user %d: %s", userID, err)
	}

	return tip
}

func (handler *Handler) waterTarget(p *profile.Profile) int {
	if p == nil {
		return handler.calculator.Defaults().WaterTargetMl
	}
	return handler.calculator.WaterTargetOrDefault(p.WeightKg, p.ActivityLevel)
}
