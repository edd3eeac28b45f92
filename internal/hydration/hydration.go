package hydration

import (
	"errors"
	"time"
)

// Intake is a single logged water intake. Many per day, append-only.
type Intake struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Milliliters int       `json:"milliliters"`
	Notes       string    `json:"notes,omitempty"`
	RecordedAt  time.Time `json:"recordedAt"`
}

func (i *Intake) Validate() error {
	if i.UserID <= 0 {
		return errors.New("user id must be positive")
	}
	if i.Milliliters <= 0 {
		return errors.New("milliliters must be positive")
	}
	return nil
}
