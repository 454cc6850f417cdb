package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
	"github.com/airlens/airlens/internal/conversation"
	"github.com/airlens/airlens/internal/dashboard"
)

// InsightsHandler serves the category summary and follow-up endpoints.
type InsightsHandler struct {
	service     *conversation.Service
	coordinator *dashboard.Coordinator
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(service *conversation.Service, coordinator *dashboard.Coordinator) *InsightsHandler {
	return &InsightsHandler{
		service:     service,
		coordinator: coordinator,
	}
}

// Start handles POST /v1/insights - generates the initial summary for a
// category and makes it the active session.
func (h *InsightsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartInsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}
	req.Category = strings.TrimSpace(req.Category)
	if !models.ValidCategory(req.Category) {
		response.BadRequest(w, r, "unknown category", []models.FieldError{
			{Field: "category", Message: "must be one of the insight categories", Code: "invalid"},
		})
		return
	}

	snap := h.coordinator.Snapshot()
	snapshot, err := conversation.BuildSnapshot(req.Category, snap.AQI.Data, snap.Weather.Data)
	if err != nil {
		// Matching the banner shown when a category is picked too early.
		response.Conflict(w, r, "Please wait for air quality and weather data to load.")
		return
	}

	sess, err := h.service.Start(r.Context(), snapshot)
	if err != nil {
		response.ServiceUnavailable(w, r, err.Error())
		return
	}

	response.JSON(w, r, http.StatusOK, insightResponse(sess))
}

// Ask handles POST /v1/insights/questions - sends a follow-up question
// on the active session.
func (h *InsightsHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskInsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	answer, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrNoActiveSession):
			response.Conflict(w, r, "no active insight session; start a category first")
		case errors.Is(err, conversation.ErrEmptyQuestion):
			response.BadRequest(w, r, "question must not be empty", []models.FieldError{
				{Field: "question", Message: "required", Code: "required"},
			})
		default:
			// The failed question stays in the transcript; the error
			// message is surfaced verbatim.
			response.ServiceUnavailable(w, r, err.Error())
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.AnswerResponse{
		Answer: answer,
		Turns:  turnPayloads(h.service.Current().Turns()),
	})
}

// Get handles GET /v1/insights - the active session transcript.
func (h *InsightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := h.service.Current()
	if sess == nil {
		response.NotFound(w, r, "no active insight session")
		return
	}
	response.JSON(w, r, http.StatusOK, insightResponse(sess))
}

func insightResponse(sess *conversation.Session) models.InsightResponse {
	return models.InsightResponse{
		Category: sess.Category(),
		Summary:  sess.Summary(),
		Turns:    turnPayloads(sess.Turns()),
		Pending:  sess.Pending(),
	}
}

func turnPayloads(turns []conversation.Turn) []models.TurnPayload {
	out := make([]models.TurnPayload, len(turns))
	for i, turn := range turns {
		out[i] = models.TurnPayload{
			Role: string(turn.Role),
			Text: turn.Text,
			At:   models.Timestamp(turn.At),
		}
	}
	return out
}
