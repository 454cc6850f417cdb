package models

// StartInsightRequest starts a category insight session.
type StartInsightRequest struct {
	Category string `json:"category"`
}

// AskInsightRequest sends a follow-up question on the active session.
type AskInsightRequest struct {
	Question string `json:"question"`
}

// TurnPayload is one entry of the session transcript.
type TurnPayload struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   Timestamp `json:"at"`
}

// InsightResponse is the active session: its category, the generated
// summary, and the transcript so far. Pending reports an in-flight
// follow-up so the client can disable its input control.
type InsightResponse struct {
	Category string        `json:"category"`
	Summary  string        `json:"summary"`
	Turns    []TurnPayload `json:"turns"`
	Pending  bool          `json:"pending"`
}

// AnswerResponse is a successful follow-up answer.
type AnswerResponse struct {
	Answer string        `json:"answer"`
	Turns  []TurnPayload `json:"turns"`
}
