package calc

import (
	"math"
	"time"
)

// Calculator derives health metrics from raw biometric and activity inputs.
// All methods are pure: invalid domain input (non-positive weight, height,
// duration, age ...) yields ok == false instead of an error or a panic.
type Calculator struct {
	defaults Defaults
}

// Defaults are the fallback values used when a user profile
// has no usable data. Populated from service configuration.
type Defaults struct {
	WeightKg      float64
	WaterTargetMl int
}

func DefaultDefaults() Defaults {
	return Defaults{
		WeightKg:      70,
		WaterTargetMl: 2500,
	}
}

func New(defaults Defaults) *Calculator {
	if defaults.WeightKg <= 0 {
		defaults.WeightKg = DefaultDefaults().WeightKg
	}
	if defaults.WaterTargetMl <= 0 {
		defaults.WaterTargetMl = DefaultDefaults().WaterTargetMl
	}
	return &Calculator{defaults: defaults}
}

func (c *Calculator) Defaults() Defaults {
	return c.defaults
}

// BMI = weight (kg) / (height (m))^2, rounded to 2 decimals.
func (c *Calculator) BMI(weightKg, heightCm float64) (float64, bool) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, false
	}
	heightM := heightCm / 100
	return round2(weightKg / (heightM * heightM)), true
}

// BMICategory returns the WHO classification for a BMI value.
func (c *Calculator) BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// BMR uses the Mifflin-St Jeor equation:
//
//	men:   (10 × weight) + (6.25 × height) − (5 × age) + 5
//	women: (10 × weight) + (6.25 × height) − (5 × age) − 161
//
// Female and other both use the female variant.
func (c *Calculator) BMR(weightKg, heightCm float64, age int, sex Sex) (float64, bool) {
	if weightKg <= 0 || heightCm <= 0 || age <= 0 {
		return 0, false
	}

	bmr := (10 * weightKg) + (6.25 * heightCm) - (5 * float64(age))
	if sex == SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	return round2(bmr), true
}

// TDEE = BMR × activity multiplier. Unknown levels fall back to sedentary.
func (c *Calculator) TDEE(bmr float64, level ActivityLevel) (float64, bool) {
	if bmr <= 0 {
		return 0, false
	}
	return round2(bmr * level.tdeeMultiplier()), true
}

// CaloriesBurned estimates the calories burned during an activity:
// MET × weight (kg) × duration (hours), standard rounding.
func (c *Calculator) CaloriesBurned(activity ActivityType, durationMinutes int, weightKg float64) (int, bool) {
	if durationMinutes <= 0 || weightKg <= 0 {
		return 0, false
	}
	calories := activity.MET() * weightKg * (float64(durationMinutes) / 60)
	return int(math.Round(calories)), true
}

// Age returns the age in full years as of today.
func (c *Calculator) Age(dateOfBirth time.Time) (int, bool) {
	return c.AgeOn(dateOfBirth, time.Now())
}

// AgeOn returns the age in full years as of the given date.
func (c *Calculator) AgeOn(dateOfBirth, on time.Time) (int, bool) {
	age := on.Year() - dateOfBirth.Year()
	if on.Month() < dateOfBirth.Month() ||
		(on.Month() == dateOfBirth.Month() && on.Day() < dateOfBirth.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

type WeightRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IdealWeightRange is the weight band for the healthy BMI range 18.5 - 24.9.
func (c *Calculator) IdealWeightRange(heightCm float64) (WeightRange, bool) {
	if heightCm <= 0 {
		return WeightRange{}, false
	}
	heightM := heightCm / 100
	return WeightRange{
		Min: round2(18.5 * heightM * heightM),
		Max: round2(24.9 * heightM * heightM),
	}, true
}

type MacroSplit struct {
	ProteinGrams float64 `json:"proteinGrams"`
	CarbsGrams   float64 `json:"carbsGrams"`
	FatGrams     float64 `json:"fatGrams"`
	Calories     float64 `json:"calories"`
}

const (
	proteinCalPerGram = 4
	carbCalPerGram    = 4
	fatCalPerGram     = 9
)

// Macros splits the TDEE into protein/carbs/fat grams based on the goal:
// weight_loss 40/30/30, muscle_gain 30/50/20, maintain (and unknown) 30/40/30.
func (c *Calculator) Macros(tdee float64, goal Goal) (MacroSplit, bool) {
	if tdee <= 0 {
		return MacroSplit{}, false
	}

	var proteinRatio, carbRatio, fatRatio float64
	switch goal {
	case GoalWeightLoss:
		proteinRatio, carbRatio, fatRatio = 0.40, 0.30, 0.30
	case GoalMuscleGain:
		proteinRatio, carbRatio, fatRatio = 0.30, 0.50, 0.20
	default:
		proteinRatio, carbRatio, fatRatio = 0.30, 0.40, 0.30
	}

	return MacroSplit{
		ProteinGrams: round2(tdee * proteinRatio / proteinCalPerGram),
		CarbsGrams:   round2(tdee * carbRatio / carbCalPerGram),
		FatGrams:     round2(tdee * fatRatio / fatCalPerGram),
		Calories:     round2(tdee),
	}, true
}

// WaterTarget is the recommended daily water intake in milliliters:
// 35 ml per kg, 30% more for athletes and 15% more for active users.
func (c *Calculator) WaterTarget(weightKg float64, level ActivityLevel) (int, bool) {
	if weightKg <= 0 {
		return 0, false
	}

	target := weightKg * 35
	switch level {
	case ActivityLevelAthlete:
		target *= 1.3
	case ActivityLevelActive:
		target *= 1.15
	}

	return int(math.Round(target)), true
}

// WaterTargetOrDefault is WaterTarget with the configured fallback applied,
// for callers that must always end up with a usable target.
func (c *Calculator) WaterTargetOrDefault(weightKg float64, level ActivityLevel) int {
	if target, ok := c.WaterTarget(weightKg, level); ok {
		return target
	}
	return c.defaults.WaterTargetMl
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}
