package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/aqi"
	"github.com/airlens/airlens/internal/backend"
	"github.com/airlens/airlens/internal/location"
)

// InsightClient is the backend surface the coordinator consumes.
type InsightClient interface {
	GetLatestAQI(ctx context.Context, q backend.LocationQuery) (*backend.CurrentAQI, error)
	GetLatestWeather(ctx context.Context, q backend.LocationQuery) (*backend.Weather, error)
	GetPredictedAQI(ctx context.Context, start, end int64, pos *backend.LocationQuery) (*backend.Prediction, error)
}

// LocationGate exposes the resolver outcome to fetch consumers.
// Read-only: only the resolver writes position state.
type LocationGate interface {
	Status() location.Status
	Done() <-chan struct{}
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	// Backend is the insight backend client (required).
	Backend InsightClient

	// Location gates fetches on resolution (required).
	Location LocationGate

	// FallbackCity is used when no resolved position exists.
	// Default: "Chennai".
	FallbackCity string

	// Logger for coordinator operations.
	Logger zerolog.Logger
}

// resource holds one resource's state under the coordinator lock.
// generation increments on every fetch start; a completing fetch only
// applies its result if the generation still matches, so results from
// superseded or torn-down fetches are discarded rather than applied.
type resource[T any] struct {
	status     Status
	data       *T
	errMsg     string
	generation uint64
}

func (r *resource[T]) view() Resource[T] {
	return Resource[T]{Status: r.status, Data: r.data, Err: r.errMsg}
}

// Coordinator owns the per-resource fetch state machines. Each
// resource moves Idle → Loading → Loaded/Failed independently;
// failures never auto-retry; re-invoking the fetch is the retry.
type Coordinator struct {
	backend      InsightClient
	gate         LocationGate
	fallbackCity string
	logger       zerolog.Logger

	mu      sync.Mutex
	closed  bool
	aqiRes  resource[backend.CurrentAQI]
	weather resource[backend.Weather]
	history resource[History]
}

// NewCoordinator creates a coordinator with all resources Idle.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	fallback := cfg.FallbackCity
	if fallback == "" {
		fallback = "Chennai"
	}

	c := &Coordinator{
		backend:      cfg.Backend,
		gate:         cfg.Location,
		fallbackCity: fallback,
		logger:       cfg.Logger,
	}
	c.aqiRes.status = StatusIdle
	c.weather.status = StatusIdle
	c.history.status = StatusIdle
	return c
}

// locationQuery maps the settled location outcome to fetch parameters.
// Returns ErrLocationPending while the resolver has not settled.
func (c *Coordinator) locationQuery() (backend.LocationQuery, error) {
	status := c.gate.Status()
	if !status.Settled() {
		return backend.LocationQuery{}, ErrLocationPending
	}
	if status.Kind == location.StatusResolved {
		return backend.ByCoordinates(status.Position.Latitude, status.Position.Longitude), nil
	}
	// Denied, unavailable and timed out all fall back to the
	// configured city.
	return backend.ByCity(c.fallbackCity), nil
}

// FetchCurrentAQI fetches the latest AQI reading. Blocks until the
// fetch completes; the resource state is updated under the stale-result
// discard rule.
func (c *Coordinator) FetchCurrentAQI(ctx context.Context) error {
	q, err := c.locationQuery()
	if err != nil {
		return err
	}

	gen, err := begin(c, &c.aqiRes)
	if err != nil {
		return err
	}

	data, err := c.backend.GetLatestAQI(ctx, q)
	if err != nil {
		c.logger.Warn().Err(err).Msg("current AQI fetch failed")
		fail(c, &c.aqiRes, gen, err)
		return err
	}

	apply(c, &c.aqiRes, gen, data)
	return nil
}

// FetchCurrentWeather fetches the latest weather observation.
func (c *Coordinator) FetchCurrentWeather(ctx context.Context) error {
	q, err := c.locationQuery()
	if err != nil {
		return err
	}

	gen, err := begin(c, &c.weather)
	if err != nil {
		return err
	}

	data, err := c.backend.GetLatestWeather(ctx, q)
	if err != nil {
		c.logger.Warn().Err(err).Msg("weather fetch failed")
		fail(c, &c.weather, gen, err)
		return err
	}

	apply(c, &c.weather, gen, data)
	return nil
}

// FetchHistory fetches the historical/predicted AQI series for the
// inclusive [start, end] range. Absent bounds or an inverted range are
// rejected with a ValidationError before any network call.
func (c *Coordinator) FetchHistory(ctx context.Context, start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &ValidationError{Message: "both start and end dates are required"}
	}
	if start.After(end) {
		return &ValidationError{Message: "start date must not be after end date"}
	}

	q, err := c.locationQuery()
	if err != nil {
		return err
	}

	gen, err := begin(c, &c.history)
	if err != nil {
		return err
	}

	// The predict endpoint takes optional coordinates only; with a
	// fallback city the backend applies its own default location.
	var pos *backend.LocationQuery
	if q.Lat != nil && q.Lon != nil {
		pos = &q
	}

	prediction, err := c.backend.GetPredictedAQI(ctx, start.Unix(), end.Unix(), pos)
	if err != nil {
		c.logger.Warn().Err(err).Msg("history fetch failed")
		fail(c, &c.history, gen, err)
		return err
	}

	apply(c, &c.history, gen, buildHistory(prediction, start, end))
	return nil
}

// Refresh waits for location resolution to settle, then fetches the
// current AQI and weather in parallel. Individual failures are
// recorded in the resource states; Refresh itself fails only on
// cancellation or teardown.
func (c *Coordinator) Refresh(ctx context.Context) error {
	select {
	case <-c.gate.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = c.FetchCurrentAQI(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = c.FetchCurrentWeather(ctx)
	}()
	wg.Wait()

	if c.isClosed() {
		return ErrClosed
	}
	return nil
}

// Snapshot returns a consistent copy of all resource states.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Location: c.gate.Status(),
		AQI:      c.aqiRes.view(),
		Weather:  c.weather.view(),
		History:  c.history.view(),
	}
}

// Close tears the coordinator down. In-flight fetch results are
// discarded, never applied to the retained state.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// begin transitions a resource to Loading and returns the fetch
// generation token.
func begin[T any](c *Coordinator, r *resource[T]) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	r.generation++
	r.status = StatusLoading
	r.errMsg = ""
	return r.generation, nil
}

// apply commits a successful result unless the fetch was superseded or
// the coordinator closed in the meantime.
func apply[T any](c *Coordinator, r *resource[T], gen uint64, data *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || r.generation != gen {
		return
	}
	r.status = StatusLoaded
	r.data = data
	r.errMsg = ""
}

// fail commits a failure under the same discard rule. The message is
// the error text verbatim: for backend failures that is the
// server-supplied error.
func fail[T any](c *Coordinator, r *resource[T], gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || r.generation != gen {
		return
	}
	r.status = StatusFailed
	r.errMsg = err.Error()
}

// buildHistory attaches the chart presentation transforms to a fetched
// prediction series.
func buildHistory(p *backend.Prediction, start, end time.Time) *History {
	n := len(p.Series)
	h := &History{
		Series:         p.Series,
		AISummary:      p.AISummary,
		Start:          start,
		End:            end,
		LabeledIndices: aqi.SelectLabeledIndices(n),
		Granularity:    aqi.LabelGranularity(n),
		AverageIndex:   -1,
		AverageBand:    aqi.Classify(-1),
	}
	if avg, err := p.Series.AverageIndex(); err == nil {
		h.AverageIndex = avg
		h.AverageBand = aqi.Classify(avg)
	}
	return h
}
