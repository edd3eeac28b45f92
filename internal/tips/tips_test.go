package tips

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type hydrationRepoMock struct {
	totalMl int
	err     error
}

func (m *hydrationRepoMock) DailyTotal(_ context.Context, _ int, _ time.Time) (int, error) {
	return m.totalMl, m.err
}

type activitiesRepoMock struct {
	calories int
	err      error
}

func (m *activitiesRepoMock) TotalCaloriesOnDay(_ context.Context, _ int, _ time.Time) (int, error) {
	return m.calories, m.err
}

func newTestGenerator(hydration *hydrationRepoMock, activities *activitiesRepoMock) *Generator {
	g := NewGenerator(hydration, activities)
	g.nowFunc = func() time.Time {
		return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	}
	return g
}

func TestGenerator_DailyTip_lowWater(t *testing.T) {
	g := newTestGenerator(
		&hydrationRepoMock{totalMl: 1500},
		&activitiesRepoMock{calories: 200},
	)

	tip := g.DailyTip(context.Background(), 1)
	assert.Equal(t, TipHydration, tip.Kind)
}

func TestGenerator_DailyTip_lowWaterWinsOverHighBurn(t *testing.T) {
	// first matching rule takes it, even with a big burn
	g := newTestGenerator(
		&hydrationRepoMock{totalMl: 800},
		&activitiesRepoMock{calories: 900},
	)

	tip := g.DailyTip(context.Background(), 1)
	assert.Equal(t, TipHydration, tip.Kind)
}

func TestGenerator_DailyTip_highBurn(t *testing.T) {
	g := newTestGenerator(
		&hydrationRepoMock{totalMl: 2400},
		&activitiesRepoMock{calories: 650},
	)

	tip := g.DailyTip(context.Background(), 1)
	assert.Equal(t, TipActivity, tip.Kind)
}

func TestGenerator_DailyTip_default(t *testing.T) {
	g := newTestGenerator(
		&hydrationRepoMock{totalMl: 2400},
		&activitiesRepoMock{calories: 500},
	)

	tip := g.DailyTip(context.Background(), 1)
	assert.Equal(t, TipMotivation, tip.Kind)
	assert.NotEmpty(t, tip.Message)
}

func TestGenerator_DailyTip_noRecords(t *testing.T) {
	// zero water counts as low water
	g := newTestGenerator(
		&hydrationRepoMock{totalMl: 0},
		&activitiesRepoMock{calories: 0},
	)

	tip := g.DailyTip(context.Background(), 1)
	assert.Equal(t, TipHydration, tip.Kind)
}

func TestGenerator_DailyTip_repoErrorsIgnored(t *testing.T) {
	g := newTestGenerator(
		&hydrationRepoMock{err: errors.New("db down")},
		&activitiesRepoMock{err: errors.New("db down")},
	)

	// failed lookups count as zero, so the hydration rule matches
	tip := g.DailyTip(context.Background(), 1)
	assert.Equal(t, TipHydration, tip.Kind)
}
