// Package assistant runs the chat widget: one live exchange with the chat
// endpoint whose reply is revealed a character at a time.
package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/civicsource/civicsource/internal/logger"
	"go.uber.org/zap"
)

const (
	// FallbackReply is shown when the chat endpoint fails or times out.
	FallbackReply = "Sorry, I couldn't fetch a reply."

	DefaultCadence        = 25 * time.Millisecond
	DefaultRequestTimeout = 15 * time.Second
)

// Chatter sends one message and returns the complete reply.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Options tune the session. Zero values select the defaults.
type Options struct {
	Cadence        time.Duration
	RequestTimeout time.Duration
}

// Session holds at most one live exchange. Starting a new one cancels the
// previous one, and a cancelled exchange never writes to the display again.
type Session struct {
	chatter Chatter
	cadence time.Duration
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	rendered   string
}

func New(chatter Chatter, opts Options, log *zap.Logger) *Session {
	cadence := opts.Cadence
	if cadence <= 0 {
		cadence = DefaultCadence
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Session{
		chatter: chatter,
		cadence: cadence,
		timeout: timeout,
		logger:  logger.Component(log, "assistant"),
	}
}

// Exchange is one prompt and the reveal of its reply.
type Exchange struct {
	Prompt string

	updates chan string
	done    chan struct{}

	mu       sync.Mutex
	reply    string
	revealed int
}

// Updates yields each revealed prefix of the formatted reply. The channel is
// closed when the reveal completes or the exchange is superseded.
func (e *Exchange) Updates() <-chan string {
	return e.updates
}

// Wait blocks until the exchange has finished revealing or was superseded.
func (e *Exchange) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reply returns the formatted reply, or "" while it is still pending.
func (e *Exchange) Reply() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reply
}

// Revealed returns how many runes of the reply have been shown.
func (e *Exchange) Revealed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revealed
}

// Ask starts a new exchange and supersedes any exchange still in flight.
func (s *Session) Ask(ctx context.Context, message string) *Exchange {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.rendered = ""
	s.mu.Unlock()

	ex := &Exchange{
		Prompt:  message,
		updates: make(chan string, 1),
		done:    make(chan struct{}),
	}

	go s.run(ctx, cancel, gen, ex)
	return ex
}

// Rendered returns what the chat widget currently displays.
func (s *Session) Rendered() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendered
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, ex *Exchange) {
	defer cancel()
	defer close(ex.done)
	defer close(ex.updates)

	reply := Format(s.fetch(ctx, ex.Prompt))
	if ctx.Err() != nil {
		return
	}

	ex.mu.Lock()
	ex.reply = reply
	ex.mu.Unlock()

	runes := []rune(reply)
	ticker := time.NewTicker(s.cadence)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		prefix := string(runes[:i])
		if !s.render(gen, prefix) {
			return
		}

		ex.mu.Lock()
		ex.revealed = i
		ex.mu.Unlock()

		publish(ex.updates, prefix)
	}
}

func (s *Session) fetch(ctx context.Context, message string) string {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.chatter.Chat(reqCtx, message)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("assistant reply failed", zap.Error(err))
		}
		return FallbackReply
	}
	return reply
}

// render writes prefix to the display if gen is still the live exchange.
func (s *Session) render(gen uint64, prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.rendered = prefix
	return true
}

// publish replaces any unread prefix with the newer one.
func publish(updates chan string, prefix string) {
	select {
	case <-updates:
	default:
	}
	updates <- prefix
}
