// Package duration converts a structured lifetime into milliseconds and
// absolute expiry metadata.
package duration

import (
	"math"
	"time"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Spec is a relative lifetime broken into units. Every field is optional
// and zero by default. Negative or fractional values are not rejected; a
// negative Spec yields an expiry in the past.
type Spec struct {
	Milliseconds float64 `json:"milliseconds,omitempty" yaml:"milliseconds,omitempty"`
	Seconds      float64 `json:"seconds,omitempty" yaml:"seconds,omitempty"`
	Minutes      float64 `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	Hours        float64 `json:"hours,omitempty" yaml:"hours,omitempty"`
	Days         float64 `json:"days,omitempty" yaml:"days,omitempty"`
}

// Milliseconds returns the total length of spec in milliseconds.
func Milliseconds(spec Spec) float64 {
	return spec.Milliseconds +
		spec.Seconds*msPerSecond +
		spec.Minutes*msPerMinute +
		spec.Hours*msPerHour +
		spec.Days*msPerDay
}

// ExpirySeconds returns the total length of spec in seconds, the unit of
// the max-age attribute.
func ExpirySeconds(spec Spec) float64 {
	return Milliseconds(spec) / msPerSecond
}

// ExpiryDate returns the wall-clock instant spec from now. It reads the
// clock on every call.
func ExpiryDate(spec Spec) time.Time {
	return ExpiryDateAt(time.Now(), spec)
}

// ExpiryDateAt returns now shifted by spec.
func ExpiryDateAt(now time.Time, spec Spec) time.Time {
	return now.Add(ToDuration(spec))
}

// ToDuration converts spec to a time.Duration, rounding to the nearest
// nanosecond and saturating at the bounds of time.Duration.
func ToDuration(spec Spec) time.Duration {
	ns := Milliseconds(spec) * float64(time.Millisecond)
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(math.Round(ns))
}

// FromDuration expresses d as a Spec in milliseconds.
func FromDuration(d time.Duration) Spec {
	return Spec{Milliseconds: float64(d) / float64(time.Millisecond)}
}

// IsZero reports whether spec adds up to no time at all.
func (s Spec) IsZero() bool {
	return Milliseconds(s) == 0
}
