package profile

import "time"

// Activity is a workout type. Matching never crosses activity types.
type Activity string

const (
	ActivityRunning Activity = "running"
	ActivityCycling Activity = "cycling"
	ActivityWalking Activity = "walking"
)

// Known reports whether a is one of the supported activities.
func (a Activity) Known() bool {
	switch a {
	case ActivityRunning, ActivityCycling, ActivityWalking:
		return true
	}
	return false
}

// FitnessLevel is a coarse self-declared skill band.
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelPro          FitnessLevel = "pro"
)

// RadiusPreference is the user-chosen search-breadth band.
type RadiusPreference string

const (
	RadiusTight  RadiusPreference = "tight"
	RadiusNormal RadiusPreference = "normal"
	RadiusWide   RadiusPreference = "wide"
)

// Visibility describes which fitness levels may discover a user.
// The zero value is treated as open to everyone: a report with no
// visibility settings should never hide a legitimate match.
type Visibility struct {
	OpenToAll bool           `json:"open_to_all"`
	Levels    []FitnessLevel `json:"levels,omitempty"`
}

// Allows reports whether a user of the given level may see the owner
// of this visibility policy.
func (v Visibility) Allows(level FitnessLevel) bool {
	if v.OpenToAll || len(v.Levels) == 0 {
		return true
	}
	for _, l := range v.Levels {
		if l == level {
			return true
		}
	}
	return false
}

// LevelFilter is a user's self-declared search filter: either a single
// fitness level they want to find, or FilterAll. The empty string is
// treated as FilterAll.
type LevelFilter string

const FilterAll LevelFilter = "all"

// Matches reports whether the filter accepts the given level.
func (f LevelFilter) Matches(level FitnessLevel) bool {
	return f == "" || f == FilterAll || FitnessLevel(f) == level
}

// Profile holds a user's matching preferences. It is authoritative for
// everything a user configures up front, as opposed to the live state
// they report mid-workout.
type Profile struct {
	UserID       string           `json:"user_id"`
	Level        FitnessLevel     `json:"level"`
	Visibility   Visibility       `json:"visibility"`
	SearchFilter LevelFilter      `json:"search_filter"`
	RadiusPref   RadiusPreference `json:"radius_pref"`
	Discoverable bool             `json:"discoverable"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
