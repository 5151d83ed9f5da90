package match

import (
	"sort"
	"time"

	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/profile"
)

// Find turns a point-in-time snapshot of reports into a ranked list of
// at most MaxResults compatible nearby candidates. It is pure and
// read-only over the pool: it never mutates the snapshot and may be
// called concurrently for different querying users.
//
// A user who has opted out of discovery never triggers a run and gets
// an empty result regardless of the pool.
func Find(q Query, pool map[string]Report, now time.Time) []Result {
	user := q.Report
	if !user.Discoverable {
		return nil
	}

	radius := profile.RadiusMeters(user.Activity, q.RadiusPreference)

	var results []Result
	for id, candidate := range pool {
		if id == user.UserID || candidate.UserID == user.UserID {
			continue
		}

		distance := geo.DistanceMeters(user.Position, candidate.Position)
		if distance > radius {
			continue
		}

		// Stale reports are never live participants, regardless of
		// everything else.
		if now.Sub(candidate.UpdatedAt) > LivenessThreshold {
			continue
		}

		if !compatible(user, candidate) {
			continue
		}

		results = append(results, Result{
			Report:         candidate,
			Score:          score(user, candidate, distance, radius),
			DistanceMeters: distance,
		})
	}

	// Descending score, ties broken by user ID so identical inputs
	// always yield identical ordered output.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Report.UserID < results[j].Report.UserID
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// compatible applies the hard pairwise filters in order, short-circuiting
// on the first failure.
func compatible(user, candidate Report) bool {
	if candidate.Activity != user.Activity {
		return false
	}
	// The querying user's search filter restricts who they find.
	if !user.SearchFilter.Matches(candidate.Level) {
		return false
	}
	if !candidate.Discoverable {
		return false
	}
	// Search filters are symmetric: the candidate's filter restricts
	// who may find them.
	if !candidate.SearchFilter.Matches(user.Level) {
		return false
	}
	if !fitnessAllowed(user.Level, candidate.Visibility) {
		return false
	}
	return paceCompatible(user.Pace, candidate.Pace)
}
