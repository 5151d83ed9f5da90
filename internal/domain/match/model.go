package match

import (
	"time"

	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/profile"
)

const (
	// LivenessThreshold is the maximum age a report may have and still
	// be considered a live, mid-workout participant.
	LivenessThreshold = 3 * time.Minute

	// MaxResults caps the ranked list returned from a matching run.
	MaxResults = 5
)

// Report is one user's most recent known state: where they are, what
// they are doing, and who they are willing to be found by. It is
// overwritten whole on every update; there is no identity beyond the
// user ID.
type Report struct {
	UserID   string           `json:"user_id"`
	Position geo.Location     `json:"position"`
	Activity profile.Activity `json:"activity"`

	Level profile.FitnessLevel `json:"level"`

	// Pace is time-per-distance for foot activities and speed for
	// cycling. Zero means unknown and is treated as "no preference".
	Pace float64 `json:"pace,omitempty"`

	Visibility   profile.Visibility  `json:"visibility"`
	SearchFilter profile.LevelFilter `json:"search_filter,omitempty"`
	Discoverable bool                `json:"discoverable"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Query is the input to a matching run: the querying user's own report
// plus their chosen search-breadth band.
type Query struct {
	Report           Report
	RadiusPreference profile.RadiusPreference
}

// Result pairs a candidate report with its computed score and distance
// from the querying user. Results are transient; they are recomputed
// from scratch on every run.
type Result struct {
	Report         Report  `json:"report"`
	Score          float64 `json:"score"`
	DistanceMeters float64 `json:"distance_meters"`
}
