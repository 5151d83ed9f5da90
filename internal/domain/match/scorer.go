package match

import "math"

// Fixed weights of the linear blend. No learned weights, no
// normalization beyond the per-term clamps.
const (
	distanceWeight = 0.5
	paceWeight     = 0.3
	levelWeight    = 0.2
)

// score combines distance, pace similarity, and level match into one
// value in [0,1].
func score(user, candidate Report, distanceMeters, radiusMeters float64) float64 {
	distanceScore := math.Max(0, 1-distanceMeters/radiusMeters)

	paceScore := 1.0
	if !paceUnknown(user.Pace) && !paceUnknown(candidate.Pace) {
		paceScore = math.Max(0, 1-math.Abs(user.Pace-candidate.Pace)/user.Pace)
	}

	levelScore := 0.5
	if user.Level == candidate.Level {
		levelScore = 1.0
	}

	return distanceWeight*distanceScore + paceWeight*paceScore + levelWeight*levelScore
}
