package models

import "encoding/json"

// DashboardResponse is the aggregate dashboard view: location outcome,
// the current AQI and weather resource states, and the static band and
// category metadata the client renders with.
type DashboardResponse struct {
	Location   LocationInfo    `json:"location"`
	AQI        AQIResource     `json:"aqi"`
	Weather    WeatherResource `json:"weather"`
	Bands      []BandInfo      `json:"bands"`
	Categories []CategoryInfo  `json:"categories"`
}

// LocationInfo is the resolved location outcome. Banner carries the
// user-facing message for fallback outcomes; FallbackCity is set when
// the fallback applies.
type LocationInfo struct {
	Status       string   `json:"status"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Banner       string   `json:"banner,omitempty"`
	FallbackCity string   `json:"fallbackCity,omitempty"`
}

// AQIResource is the current-AQI resource state envelope.
type AQIResource struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Data   *AQIPayload `json:"data,omitempty"`
}

// AQIPayload is the loaded current-AQI reading with its severity band.
type AQIPayload struct {
	Index        int                  `json:"index"`
	Band         BandInfo             `json:"band"`
	Measurements []MeasurementPayload `json:"measurements"`
	FetchedAt    Timestamp            `json:"fetchedAt"`
}

// MeasurementPayload is one pollutant measurement. Value is null when
// the station reported no usable reading.
type MeasurementPayload struct {
	Pollutant string   `json:"pollutant"`
	Value     *float64 `json:"value"`
	Units     string   `json:"units"`
}

// WeatherResource is the current-weather resource state envelope.
type WeatherResource struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   *WeatherPayload `json:"data,omitempty"`
}

// WeatherPayload is the loaded current weather document.
type WeatherPayload struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Units       string  `json:"units"`
	HumidityPct float64 `json:"humidityPct"`
	PressureHPa float64 `json:"pressureHPa"`
	WindSpeed   float64 `json:"windSpeed"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	VisibilityM float64 `json:"visibilityM"`
}

// HistoryResource is the historical/predicted resource state envelope.
type HistoryResource struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   *HistoryPayload `json:"data,omitempty"`
}

// HistoryPayload is the loaded series prepared for chart display.
type HistoryPayload struct {
	Start          Timestamp       `json:"start"`
	End            Timestamp       `json:"end"`
	Points         []HistoryPoint  `json:"points"`
	LabeledIndices []int           `json:"labeledIndices"`
	Granularity    string          `json:"granularity"`
	AverageIndex   int             `json:"averageIndex"`
	AverageBand    BandInfo        `json:"averageBand"`
	AISummary      json.RawMessage `json:"aiSummary,omitempty"`
}

// HistoryPoint is one series point.
type HistoryPoint struct {
	Timestamp  Timestamp            `json:"timestamp"`
	Index      int                  `json:"index"`
	Pollutants []MeasurementPayload `json:"pollutants,omitempty"`
}

// BandInfo is a severity band with its display metadata. UpperBound is
// null for the open-ended Hazardous band.
type BandInfo struct {
	Level       string `json:"level"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	UpperBound  *int   `json:"upperBound"`
	Color       string `json:"color,omitempty"`
	TextColor   string `json:"textColor,omitempty"`
	Gradient    string `json:"gradient,omitempty"`
}

// CategoryInfo is one insight category with its display metadata.
type CategoryInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// bandDisplay holds the presentation metadata keyed by band level.
// Presentation only: classification lives outside the API layer.
type bandDisplay struct {
	Color     string
	TextColor string
	Gradient  string
}

var bandDisplays = map[string]bandDisplay{
	"GOOD":                {Color: "#10b981", TextColor: "#fff", Gradient: "linear-gradient(135deg, #10b981 0%, #059669 100%)"},
	"MODERATE":            {Color: "#f59e0b", TextColor: "#000", Gradient: "linear-gradient(135deg, #f59e0b 0%, #d97706 100%)"},
	"UNHEALTHY_SENSITIVE": {Color: "#f97316", TextColor: "#fff", Gradient: "linear-gradient(135deg, #f97316 0%, #ea580c 100%)"},
	"UNHEALTHY":           {Color: "#ef4444", TextColor: "#fff", Gradient: "linear-gradient(135deg, #ef4444 0%, #dc2626 100%)"},
	"VERY_UNHEALTHY":      {Color: "#a855f7", TextColor: "#fff", Gradient: "linear-gradient(135deg, #a855f7 0%, #9333ea 100%)"},
	"HAZARDOUS":           {Color: "#7c2d12", TextColor: "#fff", Gradient: "linear-gradient(135deg, #7c2d12 0%, #431407 100%)"},
}

// BandDisplay returns the display metadata for a band level. Unknown
// levels get zero-value metadata.
func BandDisplay(level string) (color, textColor, gradient string) {
	d := bandDisplays[level]
	return d.Color, d.TextColor, d.Gradient
}

// Categories returns the insight categories in display order.
func Categories() []CategoryInfo {
	return []CategoryInfo{
		{
			Name:        "Agriculture Consultation",
			Description: "Expert advice on crop selection and farming practices",
			Icon:        "🌾",
			Color:       "#10b981",
		},
		{
			Name:        "Health Advisory",
			Description: "Personalized health recommendations based on air quality",
			Icon:        "🏥",
			Color:       "#3b82f6",
		},
		{
			Name:        "Air Quality Report",
			Description: "Download detailed air quality analysis report",
			Icon:        "📊",
			Color:       "#f59e0b",
		},
		{
			Name:        "Emergency Services",
			Description: "Quick access to emergency contacts and services",
			Icon:        "🚨",
			Color:       "#ef4444",
		},
	}
}

// ValidCategory reports whether name is one of the insight categories.
func ValidCategory(name string) bool {
	for _, c := range Categories() {
		if c.Name == name {
			return true
		}
	}
	return false
}
