package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/airlens/airlens/internal/aqi"
	"github.com/airlens/airlens/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the insight backend base URL.
	DefaultBaseURL = "http://localhost:8000"

	pathLatestAQI     = "/api/aqi/latest/"
	pathLatestWeather = "/api/weather/latest/"
	pathPredictAQI    = "/api/aqi/predict/"
	pathReport        = "/api/generate-report/"
	pathHealth        = "/api/health/"

	tracerName = "github.com/airlens/airlens/internal/backend"
)

// ErrBackendUnavailable is returned when the circuit breaker rejects a
// call without attempting it.
var ErrBackendUnavailable = errors.New("insight backend unavailable")

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL of the insight backend (defaults to DefaultBaseURL).
	BaseURL string

	// Timeout per request. Default: 30 seconds; report generation
	// waits on a language model.
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to the insight backend. Each call is exactly one HTTP
// attempt: resource retry is user-initiated, never automatic. A
// circuit breaker fails fast while the backend is down.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewClient creates a backend client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    resilience.NewCircuitBreaker[*http.Response](resilience.DefaultCircuitBreakerConfig("insight-backend")), //nolint:bodyclose // type param, not a response
		logger:     cfg.Logger,
		tracer:     otel.Tracer(tracerName),
	}
}

// GetLatestAQI fetches the current AQI reading for a location.
func (c *Client) GetLatestAQI(ctx context.Context, q LocationQuery) (*CurrentAQI, error) {
	var wire latestAQIResponse
	if err := c.getJSON(ctx, "backend.latest_aqi", pathLatestAQI, q.values(), &wire); err != nil {
		return nil, err
	}

	measurements := make([]aqi.Measurement, 0, len(wire.Results))
	for _, m := range wire.Results {
		measurements = append(measurements, aqi.Measurement{
			Pollutant: m.Pollutant,
			Value:     m.Value,
			Units:     m.Units,
		})
	}

	return &CurrentAQI{
		Reading: aqi.Reading{
			Index:        wire.AQI,
			Measurements: measurements,
			Timestamp:    time.Now(),
		},
		FetchedAt: time.Now(),
	}, nil
}

// GetLatestWeather fetches the current weather for a location.
func (c *Client) GetLatestWeather(ctx context.Context, q LocationQuery) (*Weather, error) {
	var wire latestWeatherResponse
	if err := c.getJSON(ctx, "backend.latest_weather", pathLatestWeather, q.values(), &wire); err != nil {
		return nil, err
	}
	result := wire.Result
	return &result, nil
}

// GetPredictedAQI fetches the historical/predicted AQI series between
// start and end (inclusive epoch seconds). Coordinates are optional;
// when absent the backend uses its default location.
func (c *Client) GetPredictedAQI(ctx context.Context, start, end int64, pos *LocationQuery) (*Prediction, error) {
	v := url.Values{}
	v.Set("start", strconv.FormatInt(start, 10))
	v.Set("end", strconv.FormatInt(end, 10))
	if pos != nil && pos.Lat != nil && pos.Lon != nil {
		v.Set("lat", strconv.FormatFloat(*pos.Lat, 'f', -1, 64))
		v.Set("lon", strconv.FormatFloat(*pos.Lon, 'f', -1, 64))
	}

	var wire predictionResponse
	if err := c.getJSON(ctx, "backend.predicted_aqi", pathPredictAQI, v, &wire); err != nil {
		return nil, err
	}

	series := make(aqi.TimeSeries, 0, len(wire.Results))
	for _, p := range wire.Results {
		if p.TimestampUTC == nil {
			continue
		}

		index := -1
		switch {
		case p.PredictedAQI != nil:
			index = int(math.Round(*p.PredictedAQI))
		case p.OpenWeatherAQI != nil:
			index = *p.OpenWeatherAQI
		}

		series = append(series, aqi.Reading{
			Index:        index,
			Timestamp:    time.Unix(*p.TimestampUTC, 0).UTC(),
			Measurements: componentMeasurements(p.Components),
		})
	}

	return &Prediction{
		Series:    series,
		AISummary: wire.AISummary,
		FetchedAt: time.Now(),
	}, nil
}

// GenerateReport requests a summary or a follow-up answer. A 2xx
// response with success:false is a failure carrying the server error.
func (c *Client) GenerateReport(ctx context.Context, req ReportRequest) (*ReportResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode report request: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, "backend.generate_report",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Bool("report.follow_up", req.FollowUpQuestion != "")),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathReport, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.do(httpReq)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		span.SetStatus(codes.Error, apiErr.Message)
		return nil, apiErr
	}

	var report ReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "malformed report response"}
	}

	if !report.Success {
		msg := report.Error
		if msg == "" {
			msg = "Failed to generate summary"
		}
		span.SetStatus(codes.Error, msg)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &report, nil
}

// BreakerState returns the backend circuit breaker state for health
// reporting.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) getJSON(ctx context.Context, spanName, path string, query url.Values, out any) error {
	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.path", path)),
	)
	defer span.End()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		span.SetStatus(codes.Error, apiErr.Message)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "malformed response from backend"}
	}
	return nil
}

// do executes one attempt through the circuit breaker. No retry.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
		r, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// 5xx counts as a breaker failure but is still handed back
		// so the server error body can be surfaced.
		if r.StatusCode >= http.StatusInternalServerError {
			return r, &resilience.ServerError{StatusCode: r.StatusCode}
		}
		return r, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &APIError{Message: ErrBackendUnavailable.Error()}
		}
		if resp != nil {
			// 5xx path: breaker recorded the failure, caller
			// decodes the body.
			return resp, nil
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// decodeAPIError extracts the server-supplied error message from a
// non-2xx response, falling back to a generic HTTP error message.
func decodeAPIError(resp *http.Response) *APIError {
	var body struct {
		Error string `json:"error"`
	}
	message := genericHTTPMessage(resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		message = body.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

func componentMeasurements(c predictionComponents) []aqi.Measurement {
	const units = "µg/m³"
	return []aqi.Measurement{
		{Pollutant: "PM2.5", Value: c.PM25, Units: units},
		{Pollutant: "PM10", Value: c.PM10, Units: units},
		{Pollutant: "NO2", Value: c.NO2, Units: units},
		{Pollutant: "O3", Value: c.O3, Units: units},
	}
}
