// Package clock abstracts the time source so timestamps can be controlled in tests.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time. Persisted timestamps come from here, never from time.Now.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real returns the wall clock, in UTC, truncated to the microsecond precision
// the databases keep.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return Normalize(time.Now())
}

// Normalize converts t to the form stored by the repositories.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Fake is a manually driven clock.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: Normalize(start)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = Normalize(f.now.Add(d))
}

// Set moves the clock to t, backwards if needed.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = Normalize(t)
}
