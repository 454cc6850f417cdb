// Package location resolves the user's geographic position once per
// session, with a bounded wait and explicit fallback outcomes.
package location

import (
	"context"
	"errors"
	"time"
)

// Capability errors a Source may return. Anything else maps to
// StatusUnavailable with a generic message.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
)

// Position is a resolved geographic coordinate. Immutable once set;
// it is never cleared except by a full session restart.
type Position struct {
	Latitude  float64
	Longitude float64
}

// StatusKind enumerates the resolution outcomes. Exactly one holds at
// a time. Denied, Unavailable and TimedOut all imply the fallback city
// applies; they are distinguished for user messaging only.
type StatusKind string

const (
	StatusResolving   StatusKind = "RESOLVING"
	StatusResolved    StatusKind = "RESOLVED"
	StatusDenied      StatusKind = "DENIED"
	StatusUnavailable StatusKind = "UNAVAILABLE"
	StatusTimedOut    StatusKind = "TIMED_OUT"
)

// Status is the outcome of a resolution attempt. Position is non-nil
// only for StatusResolved. Message carries the user-facing banner text
// for failure outcomes.
type Status struct {
	Kind     StatusKind
	Position *Position
	Message  string
}

// Settled reports whether resolution has finished, successfully or not.
// Data fetches must not be issued until Settled is true.
func (s Status) Settled() bool {
	return s.Kind != StatusResolving
}

// Fallback reports whether the configured fallback city applies.
func (s Status) Fallback() bool {
	switch s.Kind {
	case StatusDenied, StatusUnavailable, StatusTimedOut:
		return true
	default:
		return false
	}
}

// Fix is a position together with when it was obtained, so callers can
// judge staleness.
type Fix struct {
	Position   Position
	ObtainedAt time.Time
}

// Options control a position request.
type Options struct {
	// MaxAge is the acceptable staleness of a previously obtained
	// fix. Zero means only a fresh fix is acceptable.
	MaxAge time.Duration
}

// Source is the capability interface over a platform positioning
// provider. Implementations return ErrPermissionDenied or
// ErrPositionUnavailable for the corresponding conditions and honor
// context cancellation.
type Source interface {
	CurrentPosition(ctx context.Context, opts Options) (Fix, error)
}
