package tips

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const (
	lowWaterThresholdMl  = 2000
	highBurnThresholdCal = 500
)

type TipKind string

const (
	TipHydration  TipKind = "hydration"
	TipActivity   TipKind = "activity"
	TipMotivation TipKind = "motivation"
)

// Tip is the daily recommendation shown on the dashboard.
type Tip struct {
	Kind    TipKind `json:"kind"`
	Message string  `json:"message"`
}

type hydrationRepo interface {
	DailyTotal(ctx context.Context, userID int, day time.Time) (int, error)
}

type activitiesRepo interface {
	TotalCaloriesOnDay(ctx context.Context, userID int, day time.Time) (int, error)
}

// Generator picks a daily tip from yesterday's data. The rules form a
// first-match decision list; missing data counts as zero and repo
// failures never prevent a tip from being produced.
type Generator struct {
	hydration  hydrationRepo
	activities activitiesRepo

	// swapped in tests
	nowFunc func() time.Time
}

func NewGenerator(hydration hydrationRepo, activities activitiesRepo) *Generator {
	return &Generator{
		hydration:  hydration,
		activities: activities,
		nowFunc:    time.Now,
	}
}

func (g *Generator) DailyTip(ctx context.Context, userID int) Tip {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tips.generator.dailyTip")
	defer span.End()

	yesterday := g.nowFunc().AddDate(0, 0, -1)

	waterMl, err := g.hydration.DailyTotal(ctx, userID, yesterday)
	if err != nil {
		log.Errorf("daily tip, water total for user %d: %s", userID, err)
		waterMl = 0
	}
	if waterMl < lowWaterThresholdMl {
		return Tip{
			Kind:    TipHydration,
			Message: "You drank less than 2 liters of water yesterday. Keep a bottle nearby and sip through the day.",
		}
	}

	// a sleep-based rule would slot in here once sleep tracking lands

	caloriesBurned, err := g.activities.TotalCaloriesOnDay(ctx, userID, yesterday)
	if err != nil {
		log.Errorf("daily tip, calories burned for user %d: %s", userID, err)
		caloriesBurned = 0
	}
	if caloriesBurned > highBurnThresholdCal {
		return Tip{
			Kind:    TipActivity,
			Message: "Great burn yesterday! Remember to refuel with protein and get enough rest.",
		}
	}

	return Tip{
		Kind:    TipMotivation,
		Message: "Every workout counts. Lace up and log something today!",
	}
}
