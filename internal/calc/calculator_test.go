package calc_test

import (
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/calc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_BMI(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	bmi, ok := c.BMI(70, 175)
	require.True(t, ok)
	assert.Equal(t, 22.86, bmi)

	_, ok = c.BMI(0, 175)
	assert.False(t, ok)
	_, ok = c.BMI(70, 0)
	assert.False(t, ok)
	_, ok = c.BMI(-70, 175)
	assert.False(t, ok)
}

func TestCalculator_BMICategory(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	assert.Equal(t, "Underweight", c.BMICategory(18.49))
	assert.Equal(t, "Normal weight", c.BMICategory(18.5))
	assert.Equal(t, "Normal weight", c.BMICategory(24.99))
	assert.Equal(t, "Overweight", c.BMICategory(25))
	assert.Equal(t, "Overweight", c.BMICategory(29.99))
	assert.Equal(t, "Obese", c.BMICategory(30))
}

func TestCalculator_BMR(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	bmr, ok := c.BMR(70, 175, 30, calc.SexMale)
	require.True(t, ok)
	assert.Equal(t, 1648.75, bmr)

	// other uses the female formula
	bmrOther, ok := c.BMR(65, 170, 28, calc.SexOther)
	require.True(t, ok)
	bmrFemale, ok2 := c.BMR(65, 170, 28, calc.SexFemale)
	require.True(t, ok2)
	assert.Equal(t, bmrFemale, bmrOther)

	_, ok = c.BMR(0, 175, 30, calc.SexMale)
	assert.False(t, ok)
	_, ok = c.BMR(70, 0, 30, calc.SexMale)
	assert.False(t, ok)
	_, ok = c.BMR(70, 175, 0, calc.SexMale)
	assert.False(t, ok)
}

func TestCalculator_TDEE(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	tdee, ok := c.TDEE(1648.75, calc.ActivityLevelActive)
	require.True(t, ok)
	assert.InDelta(t, 2555.56, tdee, 0.01)

	// unknown level falls back to the sedentary multiplier
	tdeeUnknown, ok := c.TDEE(1000, calc.ActivityLevel("couch"))
	require.True(t, ok)
	assert.Equal(t, float64(1200), tdeeUnknown)

	_, ok = c.TDEE(0, calc.ActivityLevelActive)
	assert.False(t, ok)
}

func TestCalculator_CaloriesBurned(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	calories, ok := c.CaloriesBurned(calc.ActivityRunning, 30, 70)
	require.True(t, ok)
	assert.Equal(t, 343, calories)

	calories, ok = c.CaloriesBurned(calc.ActivityWalking, 60, 70)
	require.True(t, ok)
	assert.Equal(t, 266, calories)

	// unknown activity kind uses the default MET of 5.0
	calories, ok = c.CaloriesBurned(calc.ActivityType("unicycling"), 60, 70)
	require.True(t, ok)
	assert.Equal(t, 350, calories)

	_, ok = c.CaloriesBurned(calc.ActivityRunning, 0, 70)
	assert.False(t, ok)
	_, ok = c.CaloriesBurned(calc.ActivityRunning, 30, 0)
	assert.False(t, ok)
}

func TestCalculator_AgeOn(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	dob := time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC)

	age, ok := c.AgeOn(dob, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 35, age)

	// birthday not reached yet this year
	age, ok = c.AgeOn(dob, time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 34, age)

	// born in the future
	_, ok = c.AgeOn(dob, time.Date(1989, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestCalculator_IdealWeightRange(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	r, ok := c.IdealWeightRange(175)
	require.True(t, ok)
	assert.InDelta(t, 56.66, r.Min, 0.1)
	assert.InDelta(t, 76.26, r.Max, 0.1)

	_, ok = c.IdealWeightRange(0)
	assert.False(t, ok)
}

func TestCalculator_Macros(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	split, ok := c.Macros(2500, calc.GoalMaintain)
	require.True(t, ok)
	assert.Equal(t, 187.5, split.ProteinGrams)
	assert.Equal(t, 250.0, split.CarbsGrams)
	assert.Equal(t, 83.33, split.FatGrams)
	assert.Equal(t, 2500.0, split.Calories)

	split, ok = c.Macros(2000, calc.GoalWeightLoss)
	require.True(t, ok)
	assert.Equal(t, 200.0, split.ProteinGrams)
	assert.Equal(t, 150.0, split.CarbsGrams)
	assert.InDelta(t, 66.67, split.FatGrams, 0.01)

	// unknown goal behaves like maintain
	splitUnknown, ok := c.Macros(2500, calc.Goal("bulk"))
	require.True(t, ok)
	assert.Equal(t, 187.5, splitUnknown.ProteinGrams)
	assert.Equal(t, 250.0, splitUnknown.CarbsGrams)

	_, ok = c.Macros(0, calc.GoalMaintain)
	assert.False(t, ok)
}

func TestCalculator_WaterTarget(t *testing.T) {
	c := calc.New(calc.DefaultDefaults())

	target, ok := c.WaterTarget(70, calc.ActivityLevelSedentary)
	require.True(t, ok)
	assert.Equal(t, 2450, target)

	target, ok = c.WaterTarget(70, calc.ActivityLevelAthlete)
	require.True(t, ok)
	assert.InDelta(t, 3185, target, 1)

	target, ok = c.WaterTarget(70, calc.ActivityLevelActive)
	require.True(t, ok)
	assert.InDelta(t, 2818, target, 1)

	_, ok = c.WaterTarget(0, calc.ActivityLevelActive)
	assert.False(t, ok)
}

func TestCalculator_WaterTargetOrDefault(t *testing.T) {
	c := calc.New(calc.Defaults{WeightKg: 70, WaterTargetMl: 2500})

	assert.Equal(t, 2450, c.WaterTargetOrDefault(70, calc.ActivityLevelSedentary))
	// no usable weight -> configured fallback
	assert.Equal(t, 2500, c.WaterTargetOrDefault(0, calc.ActivityLevelSedentary))
}

func TestActivityTypeMET(t *testing.T) {
	assert.Equal(t, 9.8, calc.ActivityRunning.MET())
	assert.Equal(t, 2.5, calc.ActivityYoga.MET())
	assert.Equal(t, 5.0, calc.ActivityType("skydiving").MET())
	assert.False(t, calc.ActivityType("skydiving").IsValid())
	assert.True(t, calc.ActivityHIIT.IsValid())
}
