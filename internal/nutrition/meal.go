package nutrition

import (
	"errors"
	"time"
)

// MealType is the slot of the day a meal belongs to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

func (mt MealType) String() string {
	return string(mt)
}

func (mt MealType) IsValid() bool {
	switch mt {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	default:
		return false
	}
}

// Meal is one logged food entry.
type Meal struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Type        MealType  `json:"type"`
	FoodName    string    `json:"foodName"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"proteinG"`
	CarbsG      float64   `json:"carbsG"`
	FatsG       float64   `json:"fatsG"`
	ServingSize string    `json:"servingSize,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	LoggedAt    time.Time `json:"loggedAt"`
}

func (m *Meal) Validate() error {
	if m.UserID <= 0 {
		return errors.New("user id must be positive")
	}
	if !m.Type.IsValid() {
		return errors.New("invalid meal type")
	}
	if m.FoodName == "" {
		return errors.New("food name empty")
	}
	if m.Calories < 0 || m.ProteinG < 0 || m.CarbsG < 0 || m.FatsG < 0 {
		return errors.New("nutrition values cannot be negative")
	}
	return nil
}

// DayTotals are the summed nutrition values of one calendar day.
type DayTotals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatsG    float64 `json:"fatsG"`
}
