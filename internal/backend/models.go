// Package backend provides the client for the AirLens insight backend:
// current and predicted air quality, current weather, and report
// generation with conversational follow-up.
package backend

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/airlens/airlens/internal/aqi"
)

// LocationQuery selects the location parameters for a fetch: exact
// coordinates when a resolved position exists, otherwise the fallback
// city identifier.
type LocationQuery struct {
	Lat  *float64
	Lon  *float64
	City string
}

// ByCoordinates builds a coordinate query.
func ByCoordinates(lat, lon float64) LocationQuery {
	return LocationQuery{Lat: &lat, Lon: &lon}
}

// ByCity builds a fallback-city query.
func ByCity(city string) LocationQuery {
	return LocationQuery{City: city}
}

func (q LocationQuery) values() url.Values {
	v := url.Values{}
	if q.Lat != nil && q.Lon != nil {
		v.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		v.Set("lon", strconv.FormatFloat(*q.Lon, 'f', -1, 64))
	} else {
		v.Set("city", q.City)
	}
	return v
}

// APIError is a failure reported by the backend. Message is the
// server-supplied error when present, or a generic HTTP error message.
// It is surfaced verbatim to the user.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func genericHTTPMessage(status int) string {
	return fmt.Sprintf("HTTP error: status %d", status)
}

// Wire types for GET latest-AQI.

type latestAQIResponse struct {
	AQI     int                  `json:"aqi"`
	Results []measurementPayload `json:"results"`
}

type measurementPayload struct {
	Pollutant string   `json:"pollutant"`
	Value     *float64 `json:"value"`
	Units     string   `json:"units"`
}

// CurrentAQI is the latest air quality observation.
type CurrentAQI struct {
	Reading   aqi.Reading
	FetchedAt time.Time
}

// Wire and domain types for GET latest-weather. The nested document
// shape is preserved; the UI renders it field by field.

// Weather is the latest weather observation.
type Weather struct {
	Location    WeatherLocation    `json:"location"`
	Temperature WeatherTemperature `json:"temperature"`
	Atmosphere  WeatherAtmosphere  `json:"atmosphere"`
	Wind        WeatherWind        `json:"wind"`
	Conditions  WeatherConditions  `json:"conditions"`
	VisibilityM float64            `json:"visibility_m"`
}

type WeatherLocation struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type WeatherTemperature struct {
	Value     float64 `json:"value"`
	Units     string  `json:"units"`
	FeelsLike float64 `json:"feels_like"`
}

type WeatherAtmosphere struct {
	HumidityPct float64 `json:"humidity_pct"`
	PressureHPa float64 `json:"pressure_hpa"`
}

type WeatherWind struct {
	Speed float64 `json:"speed"`
}

type WeatherConditions struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// DisplayName returns "Name, Country" when both are present, matching
// what the report request sends as the location string.
func (l WeatherLocation) DisplayName() string {
	if l.Name != "" && l.Country != "" {
		return l.Name + ", " + l.Country
	}
	return "Unknown location"
}

type latestWeatherResponse struct {
	Result Weather `json:"result"`
}

// Wire types for GET predicted-AQI.

type predictionResponse struct {
	Results   []predictionPayload `json:"results"`
	AISummary json.RawMessage     `json:"ai_summary,omitempty"`
}

type predictionPayload struct {
	// TimestampUTC is epoch seconds; the backend emits null for rows
	// it could not place in time.
	TimestampUTC *int64 `json:"timestamp_utc"`
	// PredictedAQI is the model output (fractional); OpenWeatherAQI
	// stands in when no prediction exists for the hour.
	PredictedAQI   *float64             `json:"predicted_aqi"`
	OpenWeatherAQI *int                 `json:"openweather_aqi"`
	Components     predictionComponents `json:"components"`
}

type predictionComponents struct {
	PM25 *float64 `json:"pm2_5"`
	PM10 *float64 `json:"pm10"`
	NO2  *float64 `json:"no2"`
	O3   *float64 `json:"o3"`
}

// Prediction is a historical/predicted AQI series.
type Prediction struct {
	Series    aqi.TimeSeries
	AISummary json.RawMessage
	FetchedAt time.Time
}

// Report generation request and response (POST generate-report).

// ReportCategory is a category block of a report request: the snapshot
// of usable readings the summary is generated from.
type ReportCategory struct {
	Category   string             `json:"category"`
	Parameters []string           `json:"parameters"`
	Values     map[string]float64 `json:"values"`
	AQI        int                `json:"aqi"`
	Location   string             `json:"location"`
	Weather    WeatherInfo        `json:"weather"`
}

// WeatherInfo is the weather subset forwarded with report requests.
type WeatherInfo struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    float64 `json:"pressure"`
	Description string  `json:"description"`
}

// ReportRequest is the generate-report request body. PreviousContext
// is forwarded verbatim from the prior response; it is never built or
// inspected client-side.
type ReportRequest struct {
	Categories       []ReportCategory `json:"categories"`
	FollowUpQuestion string           `json:"follow_up_question,omitempty"`
	PreviousContext  json.RawMessage  `json:"previous_context,omitempty"`
}

// ReportResponse is the generate-report response body. Context is an
// opaque token replaced wholesale on every response.
type ReportResponse struct {
	Success  bool            `json:"success"`
	Summary  string          `json:"summary,omitempty"`
	Category string          `json:"category,omitempty"`
	Context  json.RawMessage `json:"context,omitempty"`
	Error    string          `json:"error,omitempty"`
}
