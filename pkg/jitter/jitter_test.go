package jitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_Bounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := Duration(time.Second, DefaultJitter)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestExponentialBackoff_Capped(t *testing.T) {
	d := ExponentialBackoff(100*time.Millisecond, time.Second, 10, 0)
	assert.Equal(t, time.Second, d)

	d = ExponentialBackoff(100*time.Millisecond, time.Second, 2, 0)
	assert.Equal(t, 400*time.Millisecond, d)
}

func TestBackoff(t *testing.T) {
	b := &Backoff{Base: 100 * time.Millisecond, Max: time.Second}

	first := b.Next()
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.Less(t, first, 200*time.Millisecond)

	b.Next()
	assert.Equal(t, 2, b.Attempt())

	b.Reset()
	assert.Zero(t, b.Attempt())
}
