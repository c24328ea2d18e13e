package gamify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	testCases := []struct {
		xp       int
		expected int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{11000, 10},
		{999999, 10},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, LevelForXP(tc.xp), "xp %d", tc.xp)
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := 0; xp <= 12000; xp += 50 {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev, "xp %d", xp)
		prev = level
	}
}

func TestProgressToNext(t *testing.T) {
	into, needed := ProgressToNext(0)
	assert.Equal(t, 0, into)
	assert.Equal(t, 100, needed)

	into, needed = ProgressToNext(150)
	assert.Equal(t, 50, into)
	assert.Equal(t, 150, needed)

	// Max level has nothing further to climb
	into, needed = ProgressToNext(20000)
	assert.Equal(t, 0, into)
	assert.Equal(t, 0, needed)
}
