package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	fake := NewFake(start)

	assert.Equal(t, time.UTC, fake.Now().Location())
	assert.Equal(t, 123456000, fake.Now().Nanosecond())

	fake.Advance(time.Second)
	assert.Equal(t, start.UTC().Add(time.Second).Truncate(time.Microsecond), fake.Now())

	fake.Set(start.Add(-time.Hour))
	assert.True(t, fake.Now().Before(start))
}

func TestRealIsNormalized(t *testing.T) {
	now := Real().Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%1000)
}
