package achievements

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const (
	earlyBirdHour = 7

	calorieBurnerTier1 = 1000
	calorieBurnerTier2 = 5000

	hydrationStreakDays = 7

	// upper bound for the backward day-by-day streak scan,
	// keeps a pathological data set from looping forever
	maxStreakScanDays = 366
)

type badgesRepo interface {
	Exists(ctx context.Context, userID int, badgeType BadgeType) (bool, error)
	AwardIfAbsent(ctx context.Context, userID int, badgeType BadgeType, awardedAt time.Time) (bool, error)
	List(ctx context.Context, userID int) ([]Badge, error)
	Count(ctx context.Context, userID int) (int, error)
}

type activitiesRepo interface {
	Count(ctx context.Context, userID int) (int, error)
	TotalCaloriesBurned(ctx context.Context, userID int) (int, error)
	ExistsOnDay(ctx context.Context, userID int, day time.Time) (bool, error)
	ExistsBeforeHour(ctx context.Context, userID, hour int) (bool, error)
}

type hydrationRepo interface {
	DailyTotal(ctx context.Context, userID int, day time.Time) (int, error)
}

type profileGetter interface {
	Get(ctx context.Context, userID int) (*profile.Profile, error)
}

// CheckAllResult summarizes one full badge evaluation pass.
type CheckAllResult struct {
	NewlyAwarded  []BadgeType `json:"newlyAwarded"`
	CurrentStreak int         `json:"currentStreak"`
	TotalBadges   int         `json:"totalBadges"`
}

// BadgeProgress reports how close an unearned badge is.
type BadgeProgress struct {
	Type       BadgeType `json:"type"`
	Current    int       `json:"current"`
	Required   int       `json:"required"`
	Percentage float64   `json:"percentage"`
}

// Engine evaluates badge predicates and awards badges. Awarding is
// idempotent: already earned kinds are skipped, and the repo insert is
// an atomic insert-if-absent, so concurrent CheckAll calls for the same
// user cannot produce duplicates.
type Engine struct {
	badges     badgesRepo
	activities activitiesRepo
	hydration  hydrationRepo
	profiles   profileGetter
	calculator *calc.Calculator
	metrics    *metrics.Manager

	// swapped in tests
	nowFunc func() time.Time
}

func NewEngine(
	badges badgesRepo,
	activities activitiesRepo,
	hydration hydrationRepo,
	profiles profileGetter,
	calculator *calc.Calculator,
	metricsManager *metrics.Manager,
) *Engine {
	return &Engine{
		badges:     badges,
		activities: activities,
		hydration:  hydration,
		profiles:   profiles,
		calculator: calculator,
		metrics:    metricsManager,
		nowFunc:    time.Now,
	}
}

// CheckAll evaluates every badge predicate for the user, persists the
// newly satisfied ones and returns the pass summary.
func (e *Engine) CheckAll(ctx context.Context, userID int) (_ *CheckAllResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "achievements.engine.checkAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	streak, err := e.CurrentStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("current streak: %w", err)
	}

	workouts, err := e.activities.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}
	totalCalories, err := e.activities.TotalCaloriesBurned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("total calories burned: %w", err)
	}

	satisfied := map[BadgeType]bool{
		BadgeFirstWorkout:      workouts >= 1,
		BadgeConsistency7:      streak >= 7,
		BadgeConsistency30:     streak >= 30,
		BadgeCalorieBurner1000: totalCalories >= calorieBurnerTier1,
		BadgeCalorieBurner5000: totalCalories >= calorieBurnerTier2,
	}

	if satisfied[BadgeEarlyBird], err = e.activities.ExistsBeforeHour(ctx, userID, earlyBirdHour); err != nil {
		return nil, fmt.Errorf("early bird check: %w", err)
	}
	if satisfied[BadgeHydrationMaster], err = e.hydrationStreakSatisfied(ctx, userID); err != nil {
		return nil, fmt.Errorf("hydration master check: %w", err)
	}

	result := &CheckAllResult{
		NewlyAwarded:  []BadgeType{},
		CurrentStreak: streak,
	}
	for _, badgeType := range AllBadgeTypes {
		if !satisfied[badgeType] {
			continue
		}
		awarded, err := e.award(ctx, userID, badgeType)
		if err != nil {
			return nil, fmt.Errorf("award %s: %w", badgeType, err)
		}
		if awarded {
			result.NewlyAwarded = append(result.NewlyAwarded, badgeType)
		}
	}

	if result.TotalBadges, err = e.badges.Count(ctx, userID); err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}

	return result, nil
}

// CurrentStreak counts consecutive days with at least one activity,
// scanning backward from today. Capped at maxStreakScanDays.
func (e *Engine) CurrentStreak(ctx context.Context, userID int) (streak int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "achievements.engine.currentStreak")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	day := e.nowFunc()
	for i := 0; i < maxStreakScanDays; i++ {
		exists, err := e.activities.ExistsOnDay(ctx, userID, day)
		if err != nil {
			return 0, err
		}
		if !exists {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak, nil
}

// Progress reports the unearned streak and calorie badges with how far
// the user currently is.
func (e *Engine) Progress(ctx context.Context, userID int) (_ []BadgeProgress, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "achievements.engine.progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	streak, err := e.CurrentStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("current streak: %w", err)
	}
	totalCalories, err := e.activities.TotalCaloriesBurned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("total calories burned: %w", err)
	}

	current := map[BadgeType]int{
		BadgeConsistency7:      streak,
		BadgeConsistency30:     streak,
		BadgeCalorieBurner1000: totalCalories,
		BadgeCalorieBurner5000: totalCalories,
	}
	required := map[BadgeType]int{
		BadgeConsistency7:      7,
		BadgeConsistency30:     30,
		BadgeCalorieBurner1000: calorieBurnerTier1,
		BadgeCalorieBurner5000: calorieBurnerTier2,
	}

	progress := []BadgeProgress{}
	for _, badgeType := range []BadgeType{
		BadgeConsistency7, BadgeConsistency30,
		BadgeCalorieBurner1000, BadgeCalorieBurner5000,
	} {
		earned, err := e.badges.Exists(ctx, userID, badgeType)
		if err != nil {
			return nil, fmt.Errorf("badge exists check: %w", err)
		}
		if earned {
			continue
		}
		progress = append(progress, BadgeProgress{
			Type:       badgeType,
			Current:    current[badgeType],
			Required:   required[badgeType],
			Percentage: math.Min(math.Round(float64(current[badgeType])/float64(required[badgeType])*10000)/100, 100),
		})
	}

	return progress, nil
}

// award persists the badge unless already earned. The existence check is
// an optimization, the repo insert stays the authority on uniqueness.
func (e *Engine) award(ctx context.Context, userID int, badgeType BadgeType) (bool, error) {
	exists, err := e.badges.Exists(ctx, userID, badgeType)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	awarded, err := e.badges.AwardIfAbsent(ctx, userID, badgeType, e.nowFunc())
	if err != nil {
		return false, err
	}
	if awarded {
		e.metrics.CounterBadgesAwarded.WithLabelValues(badgeType.String()).Inc()
		log.Debugf("badge %s awarded to user %d", badgeType, userID)
	}
	return awarded, nil
}

// hydrationStreakSatisfied checks whether each of the last
// hydrationStreakDays days, today included, hit the water target.
func (e *Engine) hydrationStreakSatisfied(ctx context.Context, userID int) (bool, error) {
	target := e.waterTarget(ctx, userID)

	day := e.nowFunc()
	for i := 0; i < hydrationStreakDays; i++ {
		total, err := e.hydration.DailyTotal(ctx, userID, day)
		if err != nil {
			return false, err
		}
		if total < target {
			return false, nil
		}
		day = day.AddDate(0, 0, -1)
	}

	return true, nil
}

func (e *Engine) waterTarget(ctx context.Context, userID int) int {
	p, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return e.calculator.Defaults().WaterTargetMl
	}
	return e.calculator.WaterTargetOrDefault(p.WeightKg, p.ActivityLevel)
}
