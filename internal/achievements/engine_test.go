package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type badgesRepoMock struct {
	badges map[BadgeType]Badge
}

func newBadgesRepoMock() *badgesRepoMock {
	return &badgesRepoMock{
		badges: map[BadgeType]Badge{},
	}
}

func (m *badgesRepoMock) Exists(_ context.Context, _ int, badgeType BadgeType) (bool, error) {
	_, ok := m.badges[badgeType]
	return ok, nil
}

func (m *badgesRepoMock) AwardIfAbsent(_ context.Context, userID int, badgeType BadgeType, awardedAt time.Time) (bool, error) {
	if _, ok := m.badges[badgeType]; ok {
		return false, nil
	}
	m.badges[badgeType] = Badge{
		ID: len(m.badges) + 1, UserID: userID, Type: badgeType, AwardedAt: awardedAt,
	}
	return true, nil
}

func (m *badgesRepoMock) List(_ context.Context, _ int) ([]Badge, error) {
	var badges []Badge
	for _, b := range m.badges {
		badges = append(badges, b)
	}
	return badges, nil
}

func (m *badgesRepoMock) Count(_ context.Context, _ int) (int, error) {
	return len(m.badges), nil
}

type activitiesRepoMock struct {
	count            int
	totalCalories    int
	activityDays     map[string]bool
	existsBeforeHour bool
}

func (m *activitiesRepoMock) Count(_ context.Context, _ int) (int, error) {
	return m.count, nil
}

func (m *activitiesRepoMock) TotalCaloriesBurned(_ context.Context, _ int) (int, error) {
	return m.totalCalories, nil
}

func (m *activitiesRepoMock) ExistsOnDay(_ context.Context, _ int, day time.Time) (bool, error) {
	return m.activityDays[pkg.DayStart(day).Format("2006-01-02")], nil
}

func (m *activitiesRepoMock) ExistsBeforeHour(_ context.Context, _, _ int) (bool, error) {
	return m.existsBeforeHour, nil
}

type activitiesEveryDayMock struct {
	activitiesRepoMock
}

func (m *activitiesEveryDayMock) ExistsOnDay(_ context.Context, _ int, _ time.Time) (bool, error) {
	return true, nil
}

type hydrationRepoMock struct {
	totalsByDay map[string]int
}

func (m *hydrationRepoMock) DailyTotal(_ context.Context, _ int, day time.Time) (int, error) {
	return m.totalsByDay[pkg.DayStart(day).Format("2006-01-02")], nil
}

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

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dayKey(daysAgo int) string {
	return testNow.AddDate(0, 0, -daysAgo).Format("2006-01-02")
}

func newTestEngine(
	badges *badgesRepoMock,
	activities activitiesRepo,
	hydration *hydrationRepoMock,
	profiles *profilesMock,
) *Engine {
	if hydration == nil {
		hydration = &hydrationRepoMock{totalsByDay: map[string]int{}}
	}
	if profiles == nil {
		profiles = &profilesMock{profiles: map[int]*profile.Profile{}}
	}
	engine := NewEngine(
		badges, activities, hydration, profiles,
		calc.New(calc.DefaultDefaults()), metrics.NewTestManager(),
	)
	engine.nowFunc = func() time.Time { return testNow }
	return engine
}

func TestEngine_CurrentStreak(t *testing.T) {
	activities := &activitiesRepoMock{
		activityDays: map[string]bool{
			dayKey(0): true,
			dayKey(1): true,
			dayKey(3): true,
		},
	}
	engine := newTestEngine(newBadgesRepoMock(), activities, nil, nil)

	// the gap on day -2 ends the streak at 2
	streak, err := engine.CurrentStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestEngine_CurrentStreak_noActivityToday(t *testing.T) {
	activities := &activitiesRepoMock{
		activityDays: map[string]bool{
			dayKey(1): true,
			dayKey(2): true,
		},
	}
	engine := newTestEngine(newBadgesRepoMock(), activities, nil, nil)

	streak, err := engine.CurrentStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestEngine_CurrentStreak_scanCap(t *testing.T) {
	engine := newTestEngine(newBadgesRepoMock(), &activitiesEveryDayMock{}, nil, nil)

	streak, err := engine.CurrentStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, maxStreakScanDays, streak)
}

func TestEngine_CheckAll_firstWorkout(t *testing.T) {
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{
		count:         1,
		totalCalories: 343,
		activityDays:  map[string]bool{dayKey(0): true},
	}
	engine := newTestEngine(badges, activities, nil, nil)

	result, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []BadgeType{BadgeFirstWorkout}, result.NewlyAwarded)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.TotalBadges)
}

func TestEngine_CheckAll_idempotent(t *testing.T) {
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{
		count:         12,
		totalCalories: 1500,
		activityDays:  map[string]bool{dayKey(0): true},
	}
	engine := newTestEngine(badges, activities, nil, nil)

	first, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]BadgeType{BadgeFirstWorkout, BadgeCalorieBurner1000},
		first.NewlyAwarded,
	)

	// nothing changed, nothing new to award
	second, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, second.NewlyAwarded)
	assert.Equal(t, first.TotalBadges, second.TotalBadges)
}

func TestEngine_CheckAll_bothCalorieTiersInOnePass(t *testing.T) {
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{
		count:         30,
		totalCalories: 6200,
		activityDays:  map[string]bool{},
	}
	engine := newTestEngine(badges, activities, nil, nil)

	result, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]BadgeType{BadgeFirstWorkout, BadgeCalorieBurner1000, BadgeCalorieBurner5000},
		result.NewlyAwarded,
	)
}

func TestEngine_CheckAll_consistency(t *testing.T) {
	activityDays := map[string]bool{}
	for i := 0; i < 9; i++ {
		activityDays[dayKey(i)] = true
	}
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{
		count:         9,
		totalCalories: 900,
		activityDays:  activityDays,
	}
	engine := newTestEngine(badges, activities, nil, nil)

	result, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 9, result.CurrentStreak)
	assert.Contains(t, result.NewlyAwarded, BadgeConsistency7)
	assert.NotContains(t, result.NewlyAwarded, BadgeConsistency30)
}

func TestEngine_CheckAll_earlyBird(t *testing.T) {
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{
		count:            1,
		totalCalories:    100,
		activityDays:     map[string]bool{},
		existsBeforeHour: true,
	}
	engine := newTestEngine(badges, activities, nil, nil)

	result, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, result.NewlyAwarded, BadgeEarlyBird)
}

func TestEngine_CheckAll_hydrationMaster(t *testing.T) {
	totalsByDay := map[string]int{}
	for i := 0; i < 7; i++ {
		// default target 2500 ml, no profile
		totalsByDay[dayKey(i)] = 2600
	}
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{activityDays: map[string]bool{}}
	hydration := &hydrationRepoMock{totalsByDay: totalsByDay}
	engine := newTestEngine(badges, activities, hydration, nil)

	result, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []BadgeType{BadgeHydrationMaster}, result.NewlyAwarded)
}

func TestEngine_CheckAll_hydrationMaster_oneDayShort(t *testing.T) {
	totalsByDay := map[string]int{}
	for i := 0; i < 7; i++ {
		totalsByDay[dayKey(i)] = 2600
	}
	totalsByDay[dayKey(3)] = 1200
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{activityDays: map[string]bool{}}
	hydration := &hydrationRepoMock{totalsByDay: totalsByDay}
	engine := newTestEngine(badges, activities, hydration, nil)

	result, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, result.NewlyAwarded)
}

func TestEngine_CheckAll_hydrationMaster_profileTarget(t *testing.T) {
	// 70 kg sedentary -> 2450 ml target
	profiles := &profilesMock{profiles: map[int]*profile.Profile{
		1: {UserID: 1, WeightKg: 70, ActivityLevel: calc.ActivityLevelSedentary},
	}}
	totalsByDay := map[string]int{}
	for i := 0; i < 7; i++ {
		totalsByDay[dayKey(i)] = 2450
	}
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{activityDays: map[string]bool{}}
	hydration := &hydrationRepoMock{totalsByDay: totalsByDay}
	engine := newTestEngine(badges, activities, hydration, profiles)

	result, err := engine.CheckAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []BadgeType{BadgeHydrationMaster}, result.NewlyAwarded)
}

func TestEngine_Progress(t *testing.T) {
	badges := newBadgesRepoMock()
	// consistency_7 already earned
	badges.badges[BadgeConsistency7] = Badge{ID: 1, UserID: 1, Type: BadgeConsistency7}
	activities := &activitiesRepoMock{
		totalCalories: 500,
		activityDays: map[string]bool{
			dayKey(0): true,
			dayKey(1): true,
			dayKey(2): true,
		},
	}
	engine := newTestEngine(badges, activities, nil, nil)

	progress, err := engine.Progress(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, progress, 3)

	byType := map[BadgeType]BadgeProgress{}
	for _, p := range progress {
		byType[p.Type] = p
	}
	assert.NotContains(t, byType, BadgeConsistency7)

	consistency30 := byType[BadgeConsistency30]
	assert.Equal(t, 3, consistency30.Current)
	assert.Equal(t, 30, consistency30.Required)
	assert.Equal(t, 10.0, consistency30.Percentage)

	calorie1000 := byType[BadgeCalorieBurner1000]
	assert.Equal(t, 500, calorie1000.Current)
	assert.Equal(t, 50.0, calorie1000.Percentage)
}

func TestEngine_Progress_percentageCapped(t *testing.T) {
	badges := newBadgesRepoMock()
	activities := &activitiesRepoMock{
		totalCalories: 4200,
		activityDays:  map[string]bool{},
	}
	engine := newTestEngine(badges, activities, nil, nil)

	progress, err := engine.Progress(context.Background(), 1)
	require.NoError(t, err)

	for _, p := range progress {
		if p.Type == BadgeCalorieBurner1000 {
			// over the requirement but not yet persisted
			assert.Equal(t, 100.0, p.Percentage)
		}
	}
}
