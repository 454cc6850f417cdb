package handler_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/aqi"
	"github.com/airlens/airlens/internal/backend"
	"github.com/airlens/airlens/internal/conversation"
	"github.com/airlens/airlens/internal/dashboard"
	"github.com/airlens/airlens/internal/location"
)

// stubGate is a settled location outcome.
type stubGate struct {
	status location.Status
	done   chan struct{}
}

func newStubGate(status location.Status) *stubGate {
	done := make(chan struct{})
	close(done)
	return &stubGate{status: status, done: done}
}

func (g *stubGate) Status() location.Status { return g.status }
func (g *stubGate) Done() <-chan struct{}   { return g.done }

func resolvedGate(lat, lon float64) *stubGate {
	return newStubGate(location.Status{
		Kind:     location.StatusResolved,
		Position: &location.Position{Latitude: lat, Longitude: lon},
	})
}

func deniedGate() *stubGate {
	return newStubGate(location.Status{
		Kind:    location.StatusDenied,
		Message: "Location permission denied. Using default location.",
	})
}

// stubBackend scripts the insight backend for both the coordinator and
// the conversation service.
type stubBackend struct {
	mu sync.Mutex

	aqiData     *backend.CurrentAQI
	aqiErr      error
	weatherData *backend.Weather
	weatherErr  error
	prediction  *backend.Prediction
	predictErr  error
	report      *backend.ReportResponse
	reportErr   error

	aqiCalls     int
	weatherCalls int
	predictCalls int
	reportCalls  int
	lastReport   backend.ReportRequest
}

func (b *stubBackend) GetLatestAQI(_ context.Context, _ backend.LocationQuery) (*backend.CurrentAQI, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.aqiCalls++
	if b.aqiErr != nil {
		return nil, b.aqiErr
	}
	return b.aqiData, nil
}

func (b *stubBackend) GetLatestWeather(_ context.Context, _ backend.LocationQuery) (*backend.Weather, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.weatherCalls++
	if b.weatherErr != nil {
		return nil, b.weatherErr
	}
	return b.weatherData, nil
}

func (b *stubBackend) GetPredictedAQI(_ context.Context, _, _ int64, _ *backend.LocationQuery) (*backend.Prediction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.predictCalls++
	if b.predictErr != nil {
		return nil, b.predictErr
	}
	return b.prediction, nil
}

func (b *stubBackend) GenerateReport(_ context.Context, req backend.ReportRequest) (*backend.ReportResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reportCalls++
	b.lastReport = req
	if b.reportErr != nil {
		return nil, b.reportErr
	}
	return b.report, nil
}

func (b *stubBackend) calls() (aqiCalls, weatherCalls, predictCalls int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.aqiCalls, b.weatherCalls, b.predictCalls
}

func sampleAQI(index int) *backend.CurrentAQI {
	pm25 := 74.2
	return &backend.CurrentAQI{
		Reading: aqi.Reading{
			Index: index,
			Measurements: []aqi.Measurement{
				{Pollutant: "pm2_5", Value: &pm25, Units: "µg/m³"},
			},
			Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		FetchedAt: time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC),
	}
}

func sampleWeather() *backend.Weather {
	return &backend.Weather{
		Location:    backend.WeatherLocation{Name: "Chennai", Country: "IN"},
		Temperature: backend.WeatherTemperature{Value: 31.4, Units: "°C", FeelsLike: 35.1},
		Atmosphere:  backend.WeatherAtmosphere{HumidityPct: 68, PressureHPa: 1007},
		Wind:        backend.WeatherWind{Speed: 3.2},
		Conditions:  backend.WeatherConditions{Description: "haze", Icon: "50d"},
		VisibilityM: 4000,
	}
}

func samplePrediction(n int) *backend.Prediction {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	series := make(aqi.TimeSeries, n)
	for i := range series {
		series[i] = aqi.Reading{
			Index:     60 + i%10,
			Timestamp: start.Add(time.Duration(i) * time.Hour),
		}
	}
	return &backend.Prediction{
		Series:    series,
		AISummary: json.RawMessage(`{"trend":"stable"}`),
	}
}

func newCoordinator(b *stubBackend, gate dashboard.LocationGate) *dashboard.Coordinator {
	return dashboard.NewCoordinator(dashboard.CoordinatorConfig{
		Backend:  b,
		Location: gate,
		Logger:   zerolog.Nop(),
	})
}

func newInsightService(b *stubBackend) *conversation.Service {
	return conversation.NewService(conversation.ServiceConfig{
		Reporter: b,
		Logger:   zerolog.Nop(),
	})
}
