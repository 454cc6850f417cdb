package location_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/location"
)

// stubSource is a scripted positioning capability.
type stubSource struct {
	calls atomic.Int32
	fix   location.Fix
	err   error
	delay time.Duration
}

func (s *stubSource) CurrentPosition(ctx context.Context, _ location.Options) (location.Fix, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return location.Fix{}, ctx.Err()
		}
	}
	if s.err != nil {
		return location.Fix{}, s.err
	}
	return s.fix, nil
}

func newResolver(src location.Source, timeout time.Duration) *location.Resolver {
	return location.NewResolver(location.ResolverConfig{
		Source:  src,
		Timeout: timeout,
		Logger:  zerolog.Nop(),
	})
}

func TestResolver_Resolved(t *testing.T) {
	src := &stubSource{fix: location.Fix{
		Position:   location.Position{Latitude: 13.0827, Longitude: 80.2707},
		ObtainedAt: time.Now(),
	}}
	r := newResolver(src, time.Second)

	status := r.Resolve(context.Background())
	assert.Equal(t, location.StatusResolved, status.Kind)
	require.NotNil(t, status.Position)
	assert.Equal(t, 13.0827, status.Position.Latitude)
	assert.False(t, status.Fallback())
	assert.True(t, status.Settled())
}

func TestResolver_Denied(t *testing.T) {
	r := newResolver(&stubSource{err: location.ErrPermissionDenied}, time.Second)

	status := r.Resolve(context.Background())
	assert.Equal(t, location.StatusDenied, status.Kind)
	assert.Nil(t, status.Position)
	assert.True(t, status.Fallback())
	assert.Contains(t, status.Message, "permission denied")
}

func TestResolver_Unavailable(t *testing.T) {
	r := newResolver(&stubSource{err: location.ErrPositionUnavailable}, time.Second)

	status := r.Resolve(context.Background())
	assert.Equal(t, location.StatusUnavailable, status.Kind)
	assert.True(t, status.Fallback())
}

func TestResolver_TimedOut(t *testing.T) {
	r := newResolver(&stubSource{delay: 500 * time.Millisecond}, 20*time.Millisecond)

	status := r.Resolve(context.Background())
	assert.Equal(t, location.StatusTimedOut, status.Kind)
	assert.True(t, status.Fallback())
}

func TestResolver_UnknownErrorMapsToUnavailable(t *testing.T) {
	r := newResolver(&stubSource{err: errors.New("gps on fire")}, time.Second)

	status := r.Resolve(context.Background())
	assert.Equal(t, location.StatusUnavailable, status.Kind)
	assert.Contains(t, status.Message, "unknown error")
}

func TestResolver_ResolvesExactlyOnce(t *testing.T) {
	src := &stubSource{fix: location.Fix{
		Position:   location.Position{Latitude: 1, Longitude: 2},
		ObtainedAt: time.Now(),
	}}
	r := newResolver(src, time.Second)

	first := r.Resolve(context.Background())
	second := r.Resolve(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestResolver_StatusIsResolvingBeforeResolve(t *testing.T) {
	r := newResolver(&stubSource{delay: time.Hour}, time.Hour)

	status := r.Status()
	assert.Equal(t, location.StatusResolving, status.Kind)
	assert.False(t, status.Settled())
	assert.False(t, status.Fallback())
}

func TestResolver_StaleFixRejected(t *testing.T) {
	src := &stubSource{fix: location.Fix{
		Position:   location.Position{Latitude: 1, Longitude: 2},
		ObtainedAt: time.Now().Add(-time.Hour),
	}}
	r := newResolver(src, time.Second)

	status := r.Resolve(context.Background())
	assert.Equal(t, location.StatusUnavailable, status.Kind)
}

func TestResolver_DoneGatesConsumers(t *testing.T) {
	src := &stubSource{fix: location.Fix{
		Position:   location.Position{Latitude: 1, Longitude: 2},
		ObtainedAt: time.Now(),
	}}
	r := newResolver(src, time.Second)

	select {
	case <-r.Done():
		t.Fatal("done closed before resolution started")
	default:
	}

	r.Resolve(context.Background())

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed after resolution")
	}
}
