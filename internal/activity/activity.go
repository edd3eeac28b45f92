package activity

import (
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/calc"
)

// Activity is a single logged exercise session.
type Activity struct {
	ID              int               `json:"id"`
	UserID          int               `json:"userId"`
	Type            calc.ActivityType `json:"type"`
	DurationMinutes int               `json:"durationMinutes"`
	DistanceKm      *float64          `json:"distanceKm,omitempty"`
	CaloriesBurned  int               `json:"caloriesBurned"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func (a *Activity) Validate() error {
	if a.UserID <= 0 {
		return errors.New("user id must be positive")
	}
	if !a.Type.IsValid() {
		return errors.New("invalid activity type")
	}
	if a.DurationMinutes <= 0 {
		return errors.New("duration must be positive")
	}
	if a.DistanceKm != nil && *a.DistanceKm < 0 {
		return errors.New("distance cannot be negative")
	}
	if a.CaloriesBurned < 0 {
		return errors.New("calories burned cannot be negative")
	}
	return nil
}
