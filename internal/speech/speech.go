// Package speech defines the voice capability boundary. Engines are
// optional: callers probe them and degrade to text when an engine
// reports ErrUnsupported.
package speech

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by engines that cannot provide the
// requested capability on this host. Callers treat it as degraded
// mode, not a failure.
var ErrUnsupported = errors.New("speech: not supported on this platform")

// SpeakOptions tunes synthesized speech. Zero values mean engine
// defaults.
type SpeakOptions struct {
	Lang   string
	Rate   float64
	Pitch  float64
	Volume float64
}

// DefaultSpeakOptions returns the synthesis defaults the dashboard
// reads summaries with.
func DefaultSpeakOptions() SpeakOptions {
	return SpeakOptions{Lang: "en-US", Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// Speaker synthesizes speech from text.
type Speaker interface {
	// Speak starts speaking and returns without waiting for playback
	// to finish. Canceling ctx stops playback.
	Speak(ctx context.Context, text string, opts SpeakOptions) error

	// Cancel stops any in-progress playback.
	Cancel()

	// CanSpeak reports whether synthesis is available on this host.
	CanSpeak() bool
}

// ListenOptions tunes speech recognition.
type ListenOptions struct {
	Lang       string
	Continuous bool
	Interim    bool
}

// DefaultListenOptions returns the recognition defaults for question
// dictation: single utterance with interim transcripts.
func DefaultListenOptions() ListenOptions {
	return ListenOptions{Lang: "en-US", Continuous: false, Interim: true}
}

// Transcript is one recognition result. Interim results have Final
// false and may be revised by later transcripts.
type Transcript struct {
	Text  string
	Final bool
}

// Listener recognizes speech from the host microphone.
type Listener interface {
	// Listen starts recognition and streams transcripts until ctx is
	// canceled or recognition ends. The channel is closed when
	// recognition stops.
	Listen(ctx context.Context, opts ListenOptions) (<-chan Transcript, error)

	// CanListen reports whether recognition is available on this host.
	CanListen() bool
}

// Engine is a full voice engine: synthesis plus recognition.
type Engine interface {
	Speaker
	Listener
}

// Noop is the engine used when no platform voice backend is wired. It
// reports ErrUnsupported for both capabilities.
type Noop struct{}

func (Noop) Speak(context.Context, string, SpeakOptions) error { return ErrUnsupported }

func (Noop) Cancel() {}

func (Noop) CanSpeak() bool { return false }

func (Noop) Listen(context.Context, ListenOptions) (<-chan Transcript, error) {
	return nil, ErrUnsupported
}

func (Noop) CanListen() bool { return false }
