package profile

import (
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/calc"
)

// Profile holds the body stats and preferences of a single user.
// Weight is kept in sync with the latest biometrics entry.
type Profile struct {
	ID            int                `json:"id"`
	UserID        int                `json:"userId"`
	Sex           calc.Sex           `json:"sex"`
	DateOfBirth   time.Time          `json:"dateOfBirth"`
	HeightCm      float64            `json:"heightCm"`
	WeightKg      float64            `json:"weightKg"`
	ActivityLevel calc.ActivityLevel `json:"activityLevel"`
	Goal          calc.Goal          `json:"goal"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func (p *Profile) Validate() error {
	if p.UserID <= 0 {
		return errors.New("user id must be positive")
	}
	if !p.Sex.IsValid() {
		return errors.New("invalid sex")
	}
	if !p.ActivityLevel.IsValid() {
		return errors.New("invalid activity level")
	}
	if !p.Goal.IsValid() {
		return errors.New("invalid goal")
	}
	if p.HeightCm < 0 || p.WeightKg < 0 {
		return errors.New("height and weight cannot be negative")
	}
	return nil
}
