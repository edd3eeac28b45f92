package calc

// Sex determines which variant of the Mifflin-St Jeor formula is used.
// Anything other than "male" uses the female formula.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

func (s Sex) String() string {
	return string(s)
}

func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	default:
		return false
	}
}

// ActivityLevel scales BMR into TDEE and bumps the water intake target.
// An unknown level behaves like sedentary.
type ActivityLevel string

const (
	ActivityLevelSedentary ActivityLevel = "sedentary"
	ActivityLevelActive    ActivityLevel = "active"
	ActivityLevelAthlete   ActivityLevel = "athlete"
)

func (al ActivityLevel) String() string {
	return string(al)
}

func (al ActivityLevel) IsValid() bool {
	switch al {
	case ActivityLevelSedentary, ActivityLevelActive, ActivityLevelAthlete:
		return true
	default:
		return false
	}
}

// tdeeMultiplier returns the TDEE activity multiplier,
// falling back to the sedentary one for unknown levels.
func (al ActivityLevel) tdeeMultiplier() float64 {
	switch al {
	case ActivityLevelActive:
		return 1.55
	case ActivityLevelAthlete:
		return 1.9
	default:
		return 1.2
	}
}

// ActivityType is the kind of a logged exercise session.
type ActivityType string

const (
	ActivityRunning       ActivityType = "running"
	ActivityCycling       ActivityType = "cycling"
	ActivityWeightlifting ActivityType = "weightlifting"
	ActivitySwimming      ActivityType = "swimming"
	ActivityWalking       ActivityType = "walking"
	ActivityYoga          ActivityType = "yoga"
	ActivityHIIT          ActivityType = "hiit"
	ActivityOther         ActivityType = "other"
)

func (at ActivityType) String() string {
	return string(at)
}

func (at ActivityType) IsValid() bool {
	switch at {
	case ActivityRunning, ActivityCycling, ActivityWeightlifting,
		ActivitySwimming, ActivityWalking, ActivityYoga,
		ActivityHIIT, ActivityOther:
		return true
	default:
		return false
	}
}

// metValues holds the MET (Metabolic Equivalent of Task) constant per activity.
var metValues = map[ActivityType]float64{
	ActivityRunning:       9.8,
	ActivityCycling:       7.5,
	ActivityWeightlifting: 6.0,
	ActivitySwimming:      8.0,
	ActivityWalking:       3.8,
	ActivityYoga:          2.5,
	ActivityHIIT:          8.0,
	ActivityOther:         5.0,
}

const defaultMET = 5.0

// MET returns the MET constant for the activity,
// or the moderate default for unknown kinds.
func (at ActivityType) MET() float64 {
	if met, ok := metValues[at]; ok {
		return met
	}
	return defaultMET
}

// Goal drives the macro split ratios. Unknown goals behave like maintain.
type Goal string

const (
	GoalWeightLoss Goal = "weight_loss"
	GoalMuscleGain Goal = "muscle_gain"
	GoalMaintain   Goal = "maintain"
)

func (g Goal) String() string {
	return string(g)
}

func (g Goal) IsValid() bool {
	switch g {
	case GoalWeightLoss, GoalMuscleGain, GoalMaintain:
		return true
	default:
		return false
	}
}
