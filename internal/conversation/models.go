// Package conversation maintains the stateful summary-and-follow-up
// loop against the report generation backend. A session carries an
// opaque backend context between turns; the client only stores and
// forwards it.
package conversation

import (
	"errors"
	"time"

	"github.com/airlens/airlens/internal/backend"
)

// Conversation errors.
var (
	// ErrNoActiveSession is the precondition failure for asking a
	// follow-up before any summary has been generated.
	ErrNoActiveSession = errors.New("no active conversation session")

	// ErrEmptyQuestion rejects a blank follow-up before any network
	// call.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrDataNotLoaded is returned when a session is started before
	// the AQI and weather resources have loaded.
	ErrDataNotLoaded = errors.New("air quality and weather data not loaded yet")
)

// Role distinguishes the two turn kinds of the append-only log.
type Role string

const (
	RoleQuestion Role = "question"
	RoleAnswer   Role = "answer"
)

// Turn is one entry of a session's turn log.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// Snapshot is the frozen reading/weather state a session was started
// with. It is re-sent with every follow-up so the backend answers
// against the data the user was looking at.
type Snapshot struct {
	Category   string
	Parameters []string
	Values     map[string]float64
	AQI        int
	Location   string
	Weather    backend.WeatherInfo
}

// BuildSnapshot assembles a session snapshot from loaded resources:
// only usable measurements (non-null values) are included, and the
// location string is the weather document's "Name, Country".
func BuildSnapshot(category string, current *backend.CurrentAQI, weather *backend.Weather) (Snapshot, error) {
	if current == nil || weather == nil {
		return Snapshot{}, ErrDataNotLoaded
	}

	usable := current.Reading.UsableMeasurements()
	parameters := make([]string, 0, len(usable))
	values := make(map[string]float64, len(usable))
	for _, m := range usable {
		parameters = append(parameters, m.Pollutant)
		values[m.Pollutant] = *m.Value
	}

	return Snapshot{
		Category:   category,
		Parameters: parameters,
		Values:     values,
		AQI:        current.Reading.Index,
		Location:   weather.Location.DisplayName(),
		Weather: backend.WeatherInfo{
			Temperature: weather.Temperature.Value,
			Humidity:    weather.Atmosphere.HumidityPct,
			WindSpeed:   weather.Wind.Speed,
			Pressure:    weather.Atmosphere.PressureHPa,
			Description: weather.Conditions.Description,
		},
	}, nil
}

// request builds the report request for this snapshot, optionally with
// a follow-up question and the previous opaque context.
func (s Snapshot) request(question string, previous []byte) backend.ReportRequest {
	return backend.ReportRequest{
		Categories: []backend.ReportCategory{{
			Category:   s.Category,
			Parameters: s.Parameters,
			Values:     s.Values,
			AQI:        s.AQI,
			Location:   s.Location,
			Weather:    s.Weather,
		}},
		FollowUpQuestion: question,
		PreviousContext:  previous,
	}
}
