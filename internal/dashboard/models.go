// Package dashboard orchestrates the dependent, cancelable data
// fetches behind the dashboard view: current AQI, current weather, and
// the historical/predicted series, gated on location resolution.
package dashboard

import (
	"errors"
	"time"

	"github.com/airlens/airlens/internal/aqi"
	"github.com/airlens/airlens/internal/backend"
	"github.com/airlens/airlens/internal/location"
)

// Coordinator errors.
var (
	// ErrLocationPending is returned when a fetch is requested while
	// geolocation is still resolving. Fetches never race an
	// in-flight location request: a fallback-city response would be
	// silently superseded by the real fix moments later.
	ErrLocationPending = errors.New("location resolution pending")

	// ErrClosed is returned after the coordinator has been torn down.
	ErrClosed = errors.New("coordinator closed")
)

// ValidationError is a request rejected before any network call. It is
// deliberately distinct from a network failure: the UI renders it
// inline at the input, not as a resource error panel.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Status is the lifecycle state of one fetched resource.
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusLoaded  Status = "LOADED"
	StatusFailed  Status = "FAILED"
)

// Resource is a snapshot of one resource's state. Data is non-nil only
// when Status is Loaded; Err carries the human-readable failure message
// when Status is Failed.
type Resource[T any] struct {
	Status Status
	Data   *T
	Err    string
}

// History is the historical/predicted series prepared for chart
// display: the raw series plus the label selection, the label print
// granularity, and the average-severity classification.
type History struct {
	Series         aqi.TimeSeries
	AISummary      []byte
	Start          time.Time
	End            time.Time
	LabeledIndices []int
	Granularity    aqi.Granularity
	AverageIndex   int
	AverageBand    aqi.Band
}

// Snapshot is a consistent copy of all resource states plus the
// location outcome, taken under one lock.
type Snapshot struct {
	Location location.Status
	AQI      Resource[backend.CurrentAQI]
	Weather  Resource[backend.Weather]
	History  Resource[History]
}
