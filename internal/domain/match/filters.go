package match

import (
	"math"

	"fitpair/internal/domain/profile"
)

// paceTolerance is the maximum relative pace difference, measured
// against the querying user's own pace, still considered compatible.
const paceTolerance = 0.30

// fitnessAllowed reports whether the querying user's level passes the
// candidate's visibility policy. Direction matters: the candidate's
// settings gate who may find them, not the other way around.
func fitnessAllowed(myLevel profile.FitnessLevel, candidateVisibility profile.Visibility) bool {
	return candidateVisibility.Allows(myLevel)
}

// paceCompatible reports whether two paces are close enough to train
// together. An unset, zero, or NaN pace on either side means "no
// preference" and is always compatible.
func paceCompatible(myPace, candidatePace float64) bool {
	if paceUnknown(myPace) || paceUnknown(candidatePace) {
		return true
	}
	return math.Abs(myPace-candidatePace)/myPace <= paceTolerance
}

func paceUnknown(pace float64) bool {
	return pace == 0 || math.IsNaN(pace)
}
