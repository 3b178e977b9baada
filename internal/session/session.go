// Package session drives one submit-and-observe prediction cycle.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kamilpajak/humanorai/internal/aggregate"
	"github.com/kamilpajak/humanorai/internal/backend"
	"github.com/kamilpajak/humanorai/pkg/models"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	EmptyTextMessage      = "Metin boş olamaz"
	GenericFailureMessage = "Bir hata oluştu"
)

// Status is the phase a session is in.
type Status int

const (
	Idle Status = iota
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a point-in-time snapshot of a session.
//
// Result is set in Succeeded. While Submitting it still holds the result
// being displayed from the previous success, if any. It is always nil in
// Failed. Message is set only in Failed.
type State struct {
	Status  Status
	Result  *models.PredictionResult
	Message string
}

// ValidationError is returned by Submit for input rejected before any request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Predictor issues one classification request.
type Predictor interface {
	Predict(ctx context.Context, text string) (*backend.Prediction, error)
}

// Session is one prediction session. It is safe for concurrent use; when
// submissions overlap, only the most recently started one is reflected.
type Session struct {
	predictor Predictor
	logger    *zap.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	closed bool
	subs   map[chan State]struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for state transitions.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates an idle session.
func New(p Predictor, opts ...Option) *Session {
	s := &Session{
		predictor: p,
		logger:    zap.NewNop(),
		subs:      make(map[chan State]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit classifies text and blocks until the outcome is known.
//
// Whitespace-only text yields a *ValidationError and leaves the state
// untouched. Otherwise the returned error is the request's own outcome,
// even when a newer submission has since taken over the session state.
func (s *Session) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Message: EmptyTextMessage}
	}

	gen, ok := s.begin()
	if !ok {
		return ErrClosed
	}

	pred, err := s.predictor.Predict(ctx, text)
	if err != nil {
		s.finish(gen, State{Status: Failed, Message: failureMessage(err)})
		return err
	}

	s.finish(gen, State{Status: Succeeded, Result: newResult(pred)})
	return nil
}

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("session closed")

// Subscribe returns a channel receiving every state change and a function
// that stops delivery. A slow reader only misses intermediate states; the
// latest one is always delivered.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

// Close tears the session down. Responses arriving afterwards are dropped
// and subscriber channels are closed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subs {
		close(ch)
	}
	clear(s.subs)
}

func (s *Session) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}

	s.gen++
	prev := s.state.Result
	if s.state.Status == Failed {
		prev = nil
	}
	s.setLocked(State{Status: Submitting, Result: prev})
	return s.gen, true
}

func (s *Session) finish(gen uint64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		s.logger.Debug("dropping stale prediction outcome",
			zap.Uint64("generation", gen), zap.Uint64("current", s.gen), zap.Bool("closed", s.closed))
		return
	}
	s.setLocked(st)
}

func (s *Session) setLocked(st State) {
	s.state = st
	s.logger.Debug("session state", zap.Stringer("status", st.Status), zap.String("message", st.Message))
	for ch := range s.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

func newResult(p *backend.Prediction) *models.PredictionResult {
	scores := p.Scores
	if scores == nil {
		scores = []models.ModelScore{}
	}
	return &models.PredictionResult{
		TextLength: p.TextLength,
		Models:     scores,
		Verdict:    aggregate.Aggregate(scores, p.FinalLabel),
	}
}

func failureMessage(err error) string {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return GenericFailureMessage
}
