package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVolatilityGuard(t *testing.T) {
	guard := NewVolatilityGuard(2.0, time.Minute)
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return clock }

	// warm-up: too little history to judge a spike
	for i := 0; i < 5; i++ {
		assert.False(t, guard.Push(1.0))
	}

	// triple the recent average trips the guard
	assert.True(t, guard.Push(3.0))

	// still inside the cool-off, even for a calm sample
	clock = clock.Add(30 * time.Second)
	assert.True(t, guard.Push(1.0))

	// cool-off expired, calm samples pass again
	clock = clock.Add(2 * time.Minute)
	assert.False(t, guard.Push(1.0))
}

func TestVolatilityGuardIgnoresModerateMoves(t *testing.T) {
	guard := NewVolatilityGuard(2.5, time.Minute)
	for i := 0; i < 10; i++ {
		assert.False(t, guard.Push(1.0))
	}
	assert.False(t, guard.Push(2.0), "below the 2.5x threshold")
}
