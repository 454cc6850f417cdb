// Package aqi provides the air quality data model, severity
// classification, and chart label downsampling.
package aqi

import (
	"errors"
	"time"
)

// Data model errors.
var (
	ErrUnorderedSeries = errors.New("series timestamps not strictly increasing")
	ErrEmptySeries     = errors.New("series is empty")
)

// Measurement represents a single pollutant reading.
// Value is a pointer because providers report gaps as null; a
// measurement is usable only when Value is non-nil.
type Measurement struct {
	Pollutant string
	Value     *float64
	Units     string
}

// Usable reports whether the measurement carries a value.
func (m Measurement) Usable() bool {
	return m.Value != nil
}

// Reading is a point-in-time air quality observation.
type Reading struct {
	Index        int
	Measurements []Measurement
	Timestamp    time.Time
}

// UsableMeasurements returns only the measurements that carry a value,
// preserving order.
func (r Reading) UsableMeasurements() []Measurement {
	usable := make([]Measurement, 0, len(r.Measurements))
	for _, m := range r.Measurements {
		if m.Usable() {
			usable = append(usable, m)
		}
	}
	return usable
}

// TimeSeries is a sequence of readings ordered by timestamp.
// A valid series is strictly increasing; it may be empty.
type TimeSeries []Reading

// Validate checks the strict timestamp ordering invariant.
func (ts TimeSeries) Validate() error {
	for i := 1; i < len(ts); i++ {
		if !ts[i].Timestamp.After(ts[i-1].Timestamp) {
			return ErrUnorderedSeries
		}
	}
	return nil
}

// AverageIndex returns the mean AQI index over the series, rounded to
// the nearest integer. Used for historical-average classification.
func (ts TimeSeries) AverageIndex() (int, error) {
	if len(ts) == 0 {
		return 0, ErrEmptySeries
	}
	sum := 0
	for _, r := range ts {
		sum += r.Index
	}
	// Round half up; indices are non-negative in valid readings.
	return (sum + len(ts)/2) / len(ts), nil
}
