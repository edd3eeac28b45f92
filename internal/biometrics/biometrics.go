package biometrics

import (
	"errors"
	"time"
)

// Biometric is one body measurements snapshot. Entries are append-only.
type Biometric struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	WeightKg     float64   `json:"weightKg"`
	BodyFatPct   *float64  `json:"bodyFatPct,omitempty"`
	MuscleMassKg *float64  `json:"muscleMassKg,omitempty"`
	WaistCm      *float64  `json:"waistCm,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	RecordedAt   time.Time `json:"recordedAt"`
}

func (b *Biometric) Validate() error {
	if b.UserID <= 0 {
		return errors.New("user id must be positive")
	}
	if b.WeightKg <= 0 {
		return errors.New("weight must be positive")
	}
	if b.BodyFatPct != nil && (*b.BodyFatPct < 0 || *b.BodyFatPct > 100) {
		return errors.New("body fat percentage out of range")
	}
	if b.MuscleMassKg != nil && *b.MuscleMassKg < 0 {
		return errors.New("muscle mass cannot be negative")
	}
	if b.WaistCm != nil && *b.WaistCm < 0 {
		return errors.New("waist size cannot be negative")
	}
	return nil
}
