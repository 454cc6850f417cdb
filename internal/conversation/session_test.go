package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/aqi"
	"github.com/airlens/airlens/internal/backend"
)

type stubReporter struct {
	mu       sync.Mutex
	requests []backend.ReportRequest
	respond  func(req backend.ReportRequest) (*backend.ReportResponse, error)
}

func (r *stubReporter) GenerateReport(_ context.Context, req backend.ReportRequest) (*backend.ReportResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.respond(req)
}

func (r *stubReporter) recorded() []backend.ReportRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]backend.ReportRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

func testSnapshot(t *testing.T, category string, index int) Snapshot {
	t.Helper()

	pm25 := 74.2
	current := &backend.CurrentAQI{
		Reading: aqi.Reading{
			Index: index,
			Measurements: []aqi.Measurement{
				{Pollutant: "pm2_5", Value: &pm25, Units: "µg/m³"},
				{Pollutant: "no2", Value: nil, Units: "µg/m³"},
			},
		},
	}
	weather := &backend.Weather{
		Location:    backend.WeatherLocation{Name: "Chennai", Country: "IN"},
		Temperature: backend.WeatherTemperature{Value: 31.4},
		Atmosphere:  backend.WeatherAtmosphere{HumidityPct: 68, PressureHPa: 1007},
		Wind:        backend.WeatherWind{Speed: 3.2},
		Conditions:  backend.WeatherConditions{Description: "haze"},
	}

	snapshot, err := BuildSnapshot(category, current, weather)
	require.NoError(t, err)
	return snapshot
}

func TestBuildSnapshot(t *testing.T) {
	snapshot := testSnapshot(t, "Health Advisory", 165)

	assert.Equal(t, "Health Advisory", snapshot.Category)
	assert.Equal(t, 165, snapshot.AQI)
	assert.Equal(t, "Chennai, IN", snapshot.Location)
	assert.Equal(t, []string{"pm2_5"}, snapshot.Parameters, "null measurements are dropped")
	assert.Equal(t, map[string]float64{"pm2_5": 74.2}, snapshot.Values)
	assert.Equal(t, 31.4, snapshot.Weather.Temperature)
	assert.Equal(t, "haze", snapshot.Weather.Description)
}

func TestBuildSnapshotRequiresLoadedData(t *testing.T) {
	_, err := BuildSnapshot("Health Advisory", nil, &backend.Weather{})
	assert.ErrorIs(t, err, ErrDataNotLoaded)

	_, err = BuildSnapshot("Health Advisory", &backend.CurrentAQI{}, nil)
	assert.ErrorIs(t, err, ErrDataNotLoaded)
}

func TestStartThenAsk(t *testing.T) {
	ctx1 := json.RawMessage(`{"turn":1}`)
	ctx2 := json.RawMessage(`{"turn":2}`)
	reporter := &stubReporter{respond: func(req backend.ReportRequest) (*backend.ReportResponse, error) {
		if req.FollowUpQuestion == "" {
			return &backend.ReportResponse{Success: true, Summary: "Air quality is unhealthy.", Context: ctx1}, nil
		}
		return &backend.ReportResponse{Success: true, Summary: "Wear a mask outdoors.", Context: ctx2}, nil
	}}
	svc := NewService(ServiceConfig{Reporter: reporter, Logger: zerolog.Nop()})

	sess, err := svc.Start(context.Background(), testSnapshot(t, "Health Advisory", 165))
	require.NoError(t, err)
	assert.Equal(t, "Air quality is unhealthy.", sess.Summary())
	assert.JSONEq(t, string(ctx1), string(sess.Context()))
	assert.Empty(t, sess.Turns())

	answer, err := sess.Ask(context.Background(), "any precautions?")
	require.NoError(t, err)
	assert.Equal(t, "Wear a mask outdoors.", answer)
	assert.JSONEq(t, string(ctx2), string(sess.Context()))

	turns := sess.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleQuestion, turns[0].Role)
	assert.Equal(t, "any precautions?", turns[0].Text)
	assert.Equal(t, RoleAnswer, turns[1].Role)
	assert.Equal(t, "Wear a mask outdoors.", turns[1].Text)

	requests := reporter.recorded()
	require.Len(t, requests, 2)
	assert.Nil(t, requests[0].PreviousContext, "initial request carries no context")
	assert.JSONEq(t, string(ctx1), string(requests[1].PreviousContext), "follow-up forwards the prior context verbatim")
	require.Len(t, requests[1].Categories, 1)
	assert.Equal(t, 165, requests[1].Categories[0].AQI, "snapshot is re-sent with every follow-up")
}

func TestAskWithoutStart(t *testing.T) {
	reporter := &stubReporter{respond: func(backend.ReportRequest) (*backend.ReportResponse, error) {
		t.Fatal("no request expected")
		return nil, nil
	}}
	svc := NewService(ServiceConfig{Reporter: reporter, Logger: zerolog.Nop()})

	_, err := svc.Ask(context.Background(), "any precautions?")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Empty(t, reporter.recorded())
	assert.Nil(t, svc.Current())
}

func TestAskFailureKeepsQuestionTurn(t *testing.T) {
	started := false
	reporter := &stubReporter{respond: func(req backend.ReportRequest) (*backend.ReportResponse, error) {
		if !started {
			started = true
			return &backend.ReportResponse{Success: true, Summary: "summary", Context: json.RawMessage(`{"c":1}`)}, nil
		}
		return nil, &backend.APIError{StatusCode: 503, Message: "upstream unavailable"}
	}}
	svc := NewService(ServiceConfig{Reporter: reporter, Logger: zerolog.Nop()})

	sess, err := svc.Start(context.Background(), testSnapshot(t, "Air Quality Report", 42))
	require.NoError(t, err)

	_, err = sess.Ask(context.Background(), "and tomorrow?")
	require.Error(t, err)
	assert.EqualError(t, err, "upstream unavailable")

	turns := sess.Turns()
	require.Len(t, turns, 1, "question turn survives the failure")
	assert.Equal(t, RoleQuestion, turns[0].Role)
	assert.JSONEq(t, `{"c":1}`, string(sess.Context()), "context unchanged on failure")
	assert.False(t, sess.Pending())
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	reporter := &stubReporter{respond: func(backend.ReportRequest) (*backend.ReportResponse, error) {
		return &backend.ReportResponse{Success: true, Summary: "summary", Context: json.RawMessage(`{}`)}, nil
	}}
	svc := NewService(ServiceConfig{Reporter: reporter, Logger: zerolog.Nop()})

	sess, err := svc.Start(context.Background(), testSnapshot(t, "Air Quality Report", 42))
	require.NoError(t, err)

	_, err = sess.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Empty(t, sess.Turns())
	assert.Len(t, reporter.recorded(), 1, "only the start request was sent")
}

func TestStartFailureKeepsPreviousSession(t *testing.T) {
	var fail bool
	reporter := &stubReporter{respond: func(req backend.ReportRequest) (*backend.ReportResponse, error) {
		if fail {
			return nil, errors.New("dial tcp: connection refused")
		}
		return &backend.ReportResponse{Success: true, Summary: "first summary", Context: json.RawMessage(`{"c":1}`)}, nil
	}}
	svc := NewService(ServiceConfig{Reporter: reporter, Logger: zerolog.Nop()})

	first, err := svc.Start(context.Background(), testSnapshot(t, "Health Advisory", 165))
	require.NoError(t, err)

	fail = true
	_, err = svc.Start(context.Background(), testSnapshot(t, "Agriculture Consultation", 165))
	require.Error(t, err)

	assert.Same(t, first, svc.Current(), "failed start leaves the previous session active")
	assert.Equal(t, "first summary", svc.Current().Summary())
}

func TestStartReplacesPreviousSession(t *testing.T) {
	reporter := &stubReporter{respond: func(req backend.ReportRequest) (*backend.ReportResponse, error) {
		return &backend.ReportResponse{
			Success: true,
			Summary: "summary for " + req.Categories[0].Category,
			Context: json.RawMessage(`{}`),
		}, nil
	}}
	svc := NewService(ServiceConfig{Reporter: reporter, Logger: zerolog.Nop()})

	first, err := svc.Start(context.Background(), testSnapshot(t, "Health Advisory", 165))
	require.NoError(t, err)
	second, err := svc.Start(context.Background(), testSnapshot(t, "Emergency Services", 165))
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, second, svc.Current())
	assert.Equal(t, "summary for Emergency Services", second.Summary())
	assert.Empty(t, second.Turns(), "new session starts with an empty turn log")
}
