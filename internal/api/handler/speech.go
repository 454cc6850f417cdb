package handler

import (
	"net/http"

	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
	"github.com/airlens/airlens/internal/speech"
)

// Degraded-mode notices shown in place of the voice affordances.
const (
	synthesisUnavailable   = "Text-to-speech is not supported on this host"
	recognitionUnavailable = "Voice input is not supported on this host"
)

// SpeechHandler reports the host voice engine's capabilities.
type SpeechHandler struct {
	engine speech.Engine
}

// NewSpeechHandler creates a new SpeechHandler.
func NewSpeechHandler(engine speech.Engine) *SpeechHandler {
	return &SpeechHandler{engine: engine}
}

// GetCapabilities handles GET /v1/speech - the UI hides the read-aloud
// and dictation affordances for capabilities reported unsupported.
func (h *SpeechHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	speak := speech.DefaultSpeakOptions()
	listen := speech.DefaultListenOptions()

	resp := models.SpeechResponse{
		Synthesis:   models.SpeechCapability{Supported: h.engine.CanSpeak()},
		Recognition: models.SpeechCapability{Supported: h.engine.CanListen()},
		Speak: models.SynthesisOptions{
			Lang:   speak.Lang,
			Rate:   speak.Rate,
			Pitch:  speak.Pitch,
			Volume: speak.Volume,
		},
		Listen: models.RecognitionOptions{
			Lang:       listen.Lang,
			Continuous: listen.Continuous,
			Interim:    listen.Interim,
		},
	}
	if !resp.Synthesis.Supported {
		resp.Synthesis.Message = synthesisUnavailable
	}
	if !resp.Recognition.Supported {
		resp.Recognition.Message = recognitionUnavailable
	}

	response.JSON(w, r, http.StatusOK, resp)
}
