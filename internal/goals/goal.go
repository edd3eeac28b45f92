package goals

import (
	"errors"
	"math"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusAbandoned:
		return true
	default:
		return false
	}
}

// Goal is a user-defined fitness target tracked over time.
type Goal struct {
	ID           int        `json:"id"`
	UserID       int        `json:"userId"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue"`
	Unit         string     `json:"unit,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	TargetDate   *time.Time `json:"targetDate,omitempty"`
	Status       Status     `json:"status"`
	Notes        string     `json:"notes,omitempty"`
}

func (g *Goal) Validate() error {
	if g.UserID <= 0 {
		return errors.New("user id must be positive")
	}
	if g.Title == "" {
		return errors.New("title empty")
	}
	if g.TargetValue <= 0 {
		return errors.New("target value must be positive")
	}
	if g.CurrentValue < 0 {
		return errors.New("current value cannot be negative")
	}
	if !g.Status.IsValid() {
		return errors.New("invalid status")
	}
	return nil
}

// ProgressPercentage is how far along the goal is, capped at 100.
func (g *Goal) ProgressPercentage() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	return math.Min(math.Round(g.CurrentValue/g.TargetValue*10000)/100, 100)
}

func (g *Goal) IsAchieved() bool {
	return g.CurrentValue >= g.TargetValue
}
