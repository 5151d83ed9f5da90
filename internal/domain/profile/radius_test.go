package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRadiusMeters_FullTable(t *testing.T) {
	tests := []struct {
		activity Activity
		pref     RadiusPreference
		want     float64
	}{
		{ActivityWalking, RadiusTight, 100},
		{ActivityWalking, RadiusNormal, 200},
		{ActivityWalking, RadiusWide, 400},
		{ActivityRunning, RadiusTight, 200},
		{ActivityRunning, RadiusNormal, 350},
		{ActivityRunning, RadiusWide, 800},
		{ActivityCycling, RadiusTight, 400},
		{ActivityCycling, RadiusNormal, 1000},
		{ActivityCycling, RadiusWide, 2000},
	}

	for _, tt := range tests {
		t.Run(string(tt.activity)+"/"+string(tt.pref), func(t *testing.T) {
			assert.Equal(t, tt.want, RadiusMeters(tt.activity, tt.pref))
		})
	}
}

func TestRadiusMeters_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, float64(defaultRadiusMeters), RadiusMeters("swimming", RadiusNormal))
	assert.Equal(t, float64(defaultRadiusMeters), RadiusMeters(ActivityRunning, "huge"))
	assert.Equal(t, float64(defaultRadiusMeters), RadiusMeters("", ""))
}

func TestVisibility_Allows(t *testing.T) {
	open := Visibility{OpenToAll: true}
	assert.True(t, open.Allows(LevelBeginner))

	// Zero value behaves as open; an unset policy must not hide users.
	var unset Visibility
	assert.True(t, unset.Allows(LevelPro))

	restricted := Visibility{Levels: []FitnessLevel{LevelIntermediate, LevelPro}}
	assert.True(t, restricted.Allows(LevelPro))
	assert.False(t, restricted.Allows(LevelBeginner))
}

func TestLevelFilter_Matches(t *testing.T) {
	assert.True(t, FilterAll.Matches(LevelBeginner))
	assert.True(t, LevelFilter("").Matches(LevelPro))
	assert.True(t, LevelFilter(LevelPro).Matches(LevelPro))
	assert.False(t, LevelFilter(LevelPro).Matches(LevelBeginner))
}
