package models

// SpeechCapability reports one voice capability. Message carries the
// degraded-mode notice shown when the capability is missing.
type SpeechCapability struct {
	Supported bool   `json:"supported"`
	Message   string `json:"message,omitempty"`
}

// SynthesisOptions are the defaults used when reading a summary aloud.
type SynthesisOptions struct {
	Lang   string  `json:"lang"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// RecognitionOptions are the defaults used when dictating a question.
type RecognitionOptions struct {
	Lang       string `json:"lang"`
	Continuous bool   `json:"continuous"`
	Interim    bool   `json:"interimResults"`
}

// SpeechResponse describes the host's voice capabilities so the UI can
// hide the read-aloud and voice-input affordances when unavailable.
type SpeechResponse struct {
	Synthesis   SpeechCapability   `json:"synthesis"`
	Recognition SpeechCapability   `json:"recognition"`
	Speak       SynthesisOptions   `json:"speakDefaults"`
	Listen      RecognitionOptions `json:"listenDefaults"`
}
