package profile

// defaultRadiusMeters backs any activity/preference combination the
// table does not know, matching the running/normal band.
const defaultRadiusMeters = 350

// radiusTable maps (activity, preference) to a fixed search radius in
// meters. Radius is a deliberate step function of two enums, not a
// continuous formula.
var radiusTable = map[Activity]map[RadiusPreference]float64{
	ActivityWalking: {
		RadiusTight:  100,
		RadiusNormal: 200,
		RadiusWide:   400,
	},
	ActivityRunning: {
		RadiusTight:  200,
		RadiusNormal: 350,
		RadiusWide:   800,
	},
	ActivityCycling: {
		RadiusTight:  400,
		RadiusNormal: 1000,
		RadiusWide:   2000,
	},
}

// RadiusMeters returns the search radius for an activity and radius
// preference. Unknown combinations fall back to the default rather
// than failing.
func RadiusMeters(activity Activity, pref RadiusPreference) float64 {
	prefs, ok := radiusTable[activity]
	if !ok {
		return defaultRadiusMeters
	}
	r, ok := prefs[pref]
	if !ok {
		return defaultRadiusMeters
	}
	return r
}
