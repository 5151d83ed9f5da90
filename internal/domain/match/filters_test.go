package match

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"fitpair/internal/domain/profile"
)

func TestFitnessAllowed_Direction(t *testing.T) {
	// The candidate's visibility gates the querying user's level. A
	// beginner querying a pro-only candidate is rejected even though
	// the beginner's own settings would welcome the pro.
	proOnly := profile.Visibility{Levels: []profile.FitnessLevel{profile.LevelPro}}

	assert.False(t, fitnessAllowed(profile.LevelBeginner, proOnly))
	assert.True(t, fitnessAllowed(profile.LevelPro, proOnly))
}

func TestFitnessAllowed_OpenAndUnset(t *testing.T) {
	assert.True(t, fitnessAllowed(profile.LevelBeginner, profile.Visibility{OpenToAll: true}))
	assert.True(t, fitnessAllowed(profile.LevelBeginner, profile.Visibility{}))
}

func TestPaceCompatible(t *testing.T) {
	tests := []struct {
		name     string
		my, cand float64
		want     bool
	}{
		{"both unset", 0, 0, true},
		{"mine unset", 0, 300, true},
		{"candidate unset", 300, 0, true},
		{"candidate NaN", 300, math.NaN(), true},
		{"identical", 300, 300, true},
		{"within 30 percent", 300, 380, true},
		{"exactly 30 percent", 300, 390, true},
		{"beyond 30 percent", 300, 400, false},
		{"asymmetric tolerance", 400, 300, true}, // 100/400 = 25%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paceCompatible(tt.my, tt.cand))
		})
	}
}

func TestPaceCompatible_Asymmetry(t *testing.T) {
	// Tolerance is relative to the querying user's pace, so the
	// relation is not symmetric near the boundary.
	assert.False(t, paceCompatible(300, 400)) // 100/300 > 0.30
	assert.True(t, paceCompatible(400, 300))  // 100/400 <= 0.30
}
