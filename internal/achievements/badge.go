package achievements

import "time"

// BadgeType is the kind of an achievement badge. A user can earn
// each kind at most once.
type BadgeType string

const (
	BadgeFirstWorkout      BadgeType = "first_workout"
	BadgeConsistency7      BadgeType = "consistency_7"
	BadgeConsistency30     BadgeType = "consistency_30"
	BadgeCalorieBurner1000 BadgeType = "calorie_burner_1000"
	BadgeCalorieBurner5000 BadgeType = "calorie_burner_5000"
	BadgeEarlyBird         BadgeType = "early_bird"
	BadgeHydrationMaster   BadgeType = "hydration_master"
)

// AllBadgeTypes is the evaluation order used by CheckAll.
var AllBadgeTypes = []BadgeType{
	BadgeFirstWorkout,
	BadgeConsistency7,
	BadgeConsistency30,
	BadgeCalorieBurner1000,
	BadgeCalorieBurner5000,
	BadgeEarlyBird,
	BadgeHydrationMaster,
}

var badgeDescriptions = map[BadgeType]string{
	BadgeFirstWorkout:      "Logged the first workout",
	BadgeConsistency7:      "Worked out 7 days in a row",
	BadgeConsistency30:     "Worked out 30 days in a row",
	BadgeCalorieBurner1000: "Burned 1000 calories in total",
	BadgeCalorieBurner5000: "Burned 5000 calories in total",
	BadgeEarlyBird:         "Logged a workout before 7 AM",
	BadgeHydrationMaster:   "Hit the water target 7 days in a row",
}

func (bt BadgeType) String() string {
	return string(bt)
}

func (bt BadgeType) IsValid() bool {
	_, ok := badgeDescriptions[bt]
	return ok
}

func (bt BadgeType) Description() string {
	return badgeDescriptions[bt]
}

// Badge is an earned achievement.
type Badge struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Type        BadgeType `json:"type"`
	Description string    `json:"description"`
	AwardedAt   time.Time `json:"awardedAt"`
}
