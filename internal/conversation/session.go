package conversation

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/backend"
)

// Reporter is the backend surface the conversation service depends on.
type Reporter interface {
	GenerateReport(ctx context.Context, req backend.ReportRequest) (*backend.ReportResponse, error)
}

// ServiceConfig configures a conversation Service.
type ServiceConfig struct {
	Reporter Reporter
	Logger   zerolog.Logger
}

// Service owns at most one active session at a time. Starting a new
// category replaces the previous session; a failed start leaves the
// previous session in place.
type Service struct {
	reporter Reporter
	logger   zerolog.Logger

	mu      sync.Mutex
	current *Session
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{
		reporter: cfg.Reporter,
		logger:   cfg.Logger.With().Str("component", "conversation").Logger(),
	}
}

// Start generates the initial summary for the snapshot's category. On
// success the returned session holds the summary and the backend's
// context, with an empty turn log. On failure no session is created
// and any previous session survives untouched.
func (s *Service) Start(ctx context.Context, snapshot Snapshot) (*Session, error) {
	resp, err := s.reporter.GenerateReport(ctx, snapshot.request("", nil))
	if err != nil {
		s.logger.Warn().Err(err).Str("category", snapshot.Category).Msg("summary generation failed")
		return nil, err
	}

	sess := &Session{
		reporter: s.reporter,
		logger:   s.logger.With().Str("category", snapshot.Category).Logger(),
		snapshot: snapshot,
		summary:  resp.Summary,
		context:  cloneRaw(resp.Context),
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.logger.Info().Str("category", snapshot.Category).Msg("conversation started")
	return sess, nil
}

// Current returns the active session, or nil before the first
// successful Start.
func (s *Service) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Ask forwards a follow-up to the active session. Without a prior
// successful Start it fails with ErrNoActiveSession and records
// nothing.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	sess := s.Current()
	if sess == nil {
		return "", ErrNoActiveSession
	}
	return sess.Ask(ctx, question)
}

// Session is one category's conversation: the initial summary, the
// opaque backend context, and an append-only turn log.
type Session struct {
	reporter Reporter
	logger   zerolog.Logger
	snapshot Snapshot

	mu      sync.Mutex
	summary string
	context json.RawMessage
	turns   []Turn
	pending int
}

func (sess *Session) Category() string { return sess.snapshot.Category }

func (sess *Session) Summary() string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.summary
}

// Context returns a copy of the current opaque backend context.
func (sess *Session) Context() json.RawMessage {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return cloneRaw(sess.context)
}

// Turns returns a copy of the turn log in order.
func (sess *Session) Turns() []Turn {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// Pending reports whether a follow-up is currently in flight, so a
// caller can serialize asks instead of racing them.
func (sess *Session) Pending() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.pending > 0
}

// Ask appends the question turn, sends it with the session's snapshot
// and current context, and on success appends the answer turn and
// replaces the context wholesale with the response's. On failure the
// question turn remains in the log and the error is returned.
//
// Overlapping asks are last-write-wins on the context; answers append
// in completion order.
func (sess *Session) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	sess.mu.Lock()
	sess.turns = append(sess.turns, Turn{Role: RoleQuestion, Text: question, At: time.Now()})
	previous := cloneRaw(sess.context)
	sess.pending++
	sess.mu.Unlock()

	resp, err := sess.reporter.GenerateReport(ctx, sess.snapshot.request(question, previous))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.pending--
	if err != nil {
		sess.logger.Warn().Err(err).Msg("follow-up failed")
		return "", err
	}

	sess.turns = append(sess.turns, Turn{Role: RoleAnswer, Text: resp.Summary, At: time.Now()})
	sess.context = cloneRaw(resp.Context)
	return resp.Summary, nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
