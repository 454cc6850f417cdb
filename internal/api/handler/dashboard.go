// Package handler provides HTTP handlers for the AirLens API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
	"github.com/airlens/airlens/internal/aqi"
	"github.com/airlens/airlens/internal/backend"
	"github.com/airlens/airlens/internal/dashboard"
	"github.com/airlens/airlens/internal/location"
)

// dateLayout is the calendar-date format of history query parameters.
const dateLayout = "2006-01-02"

// DashboardHandler serves the dashboard view and its fetch operations.
type DashboardHandler struct {
	coordinator  *dashboard.Coordinator
	fallbackCity string
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(coordinator *dashboard.Coordinator, fallbackCity string) *DashboardHandler {
	return &DashboardHandler{
		coordinator:  coordinator,
		fallbackCity: fallbackCity,
	}
}

// GetDashboard handles GET /v1/dashboard - current resource states plus
// the static band and category metadata.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.coordinator.Snapshot()
	response.JSON(w, r, http.StatusOK, h.dashboardResponse(snap))
}

// Refresh handles POST /v1/dashboard/refresh - re-fetches the current
// AQI and weather and returns the updated view. Waits for location
// resolution to settle first; individual fetch failures land in the
// resource states, not in the response status.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.Refresh(r.Context()); err != nil {
		if errors.Is(err, dashboard.ErrClosed) {
			response.ServiceUnavailable(w, r, "dashboard is shutting down")
			return
		}
		// Context cancellation: the client is gone.
		response.ServiceUnavailable(w, r, err.Error())
		return
	}

	snap := h.coordinator.Snapshot()
	response.JSON(w, r, http.StatusOK, h.dashboardResponse(snap))
}

// GetHistory handles GET /v1/history?start=&end= - fetches the
// historical/predicted series for an inclusive calendar-date range and
// returns the prepared chart resource.
func (h *DashboardHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	var fieldErrors []models.FieldError

	start, err := parseDay(r.URL.Query().Get("start"))
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "start", Message: err.Error(), Code: "invalid_date"})
	}
	end, err := parseDay(r.URL.Query().Get("end"))
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "end", Message: err.Error(), Code: "invalid_date"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "malformed date range", fieldErrors)
		return
	}

	// Inclusive day bounds: start-of-day through end-of-day.
	end = end.Add(24*time.Hour - time.Second)

	if err := h.coordinator.FetchHistory(r.Context(), start, end); err != nil {
		var vErr *dashboard.ValidationError
		switch {
		case errors.As(err, &vErr):
			response.BadRequest(w, r, vErr.Message, nil)
			return
		case errors.Is(err, dashboard.ErrLocationPending):
			response.Conflict(w, r, "location resolution is still pending")
			return
		case errors.Is(err, dashboard.ErrClosed):
			response.ServiceUnavailable(w, r, "dashboard is shutting down")
			return
		}
		// Network failures are carried in the resource state below.
	}

	snap := h.coordinator.Snapshot()
	response.JSON(w, r, http.StatusOK, historyResource(snap.History))
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("required")
	}
	day, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("must be a YYYY-MM-DD date")
	}
	return day, nil
}

func (h *DashboardHandler) dashboardResponse(snap dashboard.Snapshot) models.DashboardResponse {
	return models.DashboardResponse{
		Location:   h.locationInfo(snap.Location),
		AQI:        aqiResource(snap.AQI),
		Weather:    weatherResource(snap.Weather),
		Bands:      bandInfos(),
		Categories: models.Categories(),
	}
}

func (h *DashboardHandler) locationInfo(status location.Status) models.LocationInfo {
	info := models.LocationInfo{
		Status: string(status.Kind),
		Banner: status.Message,
	}
	if status.Kind == location.StatusResolved && status.Position != nil {
		lat, lon := status.Position.Latitude, status.Position.Longitude
		info.Latitude = &lat
		info.Longitude = &lon
	}
	if status.Fallback() {
		info.FallbackCity = h.fallbackCity
	}
	return info
}

func aqiResource(res dashboard.Resource[backend.CurrentAQI]) models.AQIResource {
	out := models.AQIResource{
		Status: string(res.Status),
		Error:  res.Err,
	}
	if res.Data != nil {
		out.Data = &models.AQIPayload{
			Index:        res.Data.Reading.Index,
			Band:         bandInfo(aqi.Classify(res.Data.Reading.Index)),
			Measurements: measurementPayloads(res.Data.Reading.Measurements),
			FetchedAt:    models.Timestamp(res.Data.FetchedAt),
		}
	}
	return out
}

func weatherResource(res dashboard.Resource[backend.Weather]) models.WeatherResource {
	out := models.WeatherResource{
		Status: string(res.Status),
		Error:  res.Err,
	}
	if res.Data != nil {
		w := res.Data
		out.Data = &models.WeatherPayload{
			Location:    w.Location.DisplayName(),
			Temperature: w.Temperature.Value,
			FeelsLike:   w.Temperature.FeelsLike,
			Units:       w.Temperature.Units,
			HumidityPct: w.Atmosphere.HumidityPct,
			PressureHPa: w.Atmosphere.PressureHPa,
			WindSpeed:   w.Wind.Speed,
			Description: w.Conditions.Description,
			Icon:        w.Conditions.Icon,
			VisibilityM: w.VisibilityM,
		}
	}
	return out
}

func historyResource(res dashboard.Resource[dashboard.History]) models.HistoryResource {
	out := models.HistoryResource{
		Status: string(res.Status),
		Error:  res.Err,
	}
	if res.Data != nil {
		h := res.Data
		points := make([]models.HistoryPoint, len(h.Series))
		for i, reading := range h.Series {
			points[i] = models.HistoryPoint{
				Timestamp:  models.Timestamp(reading.Timestamp),
				Index:      reading.Index,
				Pollutants: measurementPayloads(reading.Measurements),
			}
		}
		labeled := h.LabeledIndices
		if labeled == nil {
			labeled = []int{}
		}
		out.Data = &models.HistoryPayload{
			Start:          models.Timestamp(h.Start),
			End:            models.Timestamp(h.End),
			Points:         points,
			LabeledIndices: labeled,
			Granularity:    string(h.Granularity),
			AverageIndex:   h.AverageIndex,
			AverageBand:    bandInfo(h.AverageBand),
			AISummary:      h.AISummary,
		}
	}
	return out
}

func measurementPayloads(in []aqi.Measurement) []models.MeasurementPayload {
	out := make([]models.MeasurementPayload, len(in))
	for i, m := range in {
		out[i] = models.MeasurementPayload{
			Pollutant: m.Pollutant,
			Value:     m.Value,
			Units:     m.Units,
		}
	}
	return out
}

func bandInfo(b aqi.Band) models.BandInfo {
	info := models.BandInfo{
		Level:       string(b.Level),
		Label:       b.Label,
		Description: b.Description,
	}
	if b.UpperBound >= 0 {
		bound := b.UpperBound
		info.UpperBound = &bound
	}
	info.Color, info.TextColor, info.Gradient = models.BandDisplay(string(b.Level))
	return info
}

func bandInfos() []models.BandInfo {
	bands := aqi.Bands()
	out := make([]models.BandInfo, len(bands))
	for i, b := range bands {
		out[i] = bandInfo(b)
	}
	return out
}
