package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Banner messages for failure outcomes. The UI distinguishes denial
// from other failures.
const (
	msgDenied      = "Location permission denied. Using default location."
	msgUnavailable = "Location information unavailable. Using default location."
	msgTimedOut    = "Location request timed out. Using default location."
	msgUnknown     = "An unknown error occurred. Using default location."
)

// ResolverConfig holds configuration for the resolver.
type ResolverConfig struct {
	// Source is the positioning capability (required).
	Source Source

	// Timeout bounds the wait for a fix. Default: 10 seconds.
	Timeout time.Duration

	// MaxAge is the acceptable staleness of a cached fix.
	// Default: 5 minutes.
	MaxAge time.Duration

	// Logger for resolver operations.
	Logger zerolog.Logger
}

// Resolver performs a single-shot position resolution. The outcome is
// computed exactly once per resolver; there is no automatic retry. A
// dependent component may construct a new resolver for a manual retry.
type Resolver struct {
	source  Source
	timeout time.Duration
	maxAge  time.Duration
	logger  zerolog.Logger

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	outcome Status
}

// NewResolver creates a resolver. Its status is Resolving until
// Resolve completes.
func NewResolver(cfg ResolverConfig) *Resolver {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 5 * time.Minute
	}

	return &Resolver{
		source:  cfg.Source,
		timeout: timeout,
		maxAge:  maxAge,
		logger:  cfg.Logger,
		done:    make(chan struct{}),
		outcome: Status{Kind: StatusResolving},
	}
}

// Resolve requests the device position and returns the outcome.
// The request runs once; concurrent and subsequent calls wait for and
// return the first outcome.
func (r *Resolver) Resolve(ctx context.Context) Status {
	r.once.Do(func() {
		go r.resolve(context.WithoutCancel(ctx))
	})

	select {
	case <-r.done:
	case <-ctx.Done():
		// The caller gave up waiting; resolution continues in the
		// background and settles the shared outcome.
		return r.Status()
	}
	return r.Status()
}

func (r *Resolver) resolve(ctx context.Context) {
	defer close(r.done)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	fix, err := r.source.CurrentPosition(ctx, Options{MaxAge: r.maxAge})
	if err != nil {
		r.settle(failureStatus(err))
		return
	}

	if age := time.Since(fix.ObtainedAt); age > r.maxAge {
		r.logger.Warn().Dur("age", age).Msg("discarding stale position fix")
		r.settle(Status{Kind: StatusUnavailable, Message: msgUnavailable})
		return
	}

	pos := fix.Position
	r.logger.Info().
		Float64("lat", pos.Latitude).
		Float64("lon", pos.Longitude).
		Msg("position resolved")
	r.settle(Status{Kind: StatusResolved, Position: &pos})
}

func (r *Resolver) settle(s Status) {
	r.mu.Lock()
	r.outcome = s
	r.mu.Unlock()

	if s.Kind != StatusResolved {
		r.logger.Info().Str("status", string(s.Kind)).Msg(s.Message)
	}
}

// Status returns the current status without blocking. It is Resolving
// until the single resolution attempt settles.
func (r *Resolver) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.outcome
}

// Done is closed when resolution has settled. Fetch consumers gate on
// this to avoid racing an in-flight geolocation request.
func (r *Resolver) Done() <-chan struct{} {
	return r.done
}

func failureStatus(err error) Status {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return Status{Kind: StatusDenied, Message: msgDenied}
	case errors.Is(err, ErrPositionUnavailable):
		return Status{Kind: StatusUnavailable, Message: msgUnavailable}
	case errors.Is(err, context.DeadlineExceeded):
		return Status{Kind: StatusTimedOut, Message: msgTimedOut}
	default:
		return Status{Kind: StatusUnavailable, Message: msgUnknown}
	}
}
