package goals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoal_ProgressPercentage(t *testing.T) {
	g := Goal{TargetValue: 10, CurrentValue: 2.5}
	assert.Equal(t, 25.0, g.ProgressPercentage())
	assert.False(t, g.IsAchieved())

	// capped at 100
	g.CurrentValue = 14
	assert.Equal(t, 100.0, g.ProgressPercentage())
	assert.True(t, g.IsAchieved())

	g.CurrentValue = 10
	assert.Equal(t, 100.0, g.ProgressPercentage())
	assert.True(t, g.IsAchieved())

	g = Goal{TargetValue: 0, CurrentValue: 5}
	assert.Equal(t, 0.0, g.ProgressPercentage())
}

func TestGoal_Validate(t *testing.T) {
	g := Goal{
		UserID:      1,
		Title:       "run 100 km",
		TargetValue: 100,
		Status:      StatusActive,
	}
	assert.NoError(t, g.Validate())

	invalid := g
	invalid.Title = ""
	assert.Error(t, invalid.Validate())

	invalid = g
	invalid.TargetValue = 0
	assert.Error(t, invalid.Validate())

	invalid = g
	invalid.Status = "paused"
	assert.Error(t, invalid.Validate())

	invalid = g
	invalid.CurrentValue = -1
	assert.Error(t, invalid.Validate())
}
