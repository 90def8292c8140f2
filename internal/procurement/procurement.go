// Package procurement tracks the posting that the portals are currently working on.
package procurement

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/civicsource/civicsource/internal/civic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FallbackID is the procurement id used when nothing has been posted yet.
const FallbackID = "1"

// Creator stores a posted need remotely.
type Creator interface {
	CreateProcurement(ctx context.Context, need civic.Need, posted time.Time) (*civic.Procurement, error)
}

// Session is a posted procurement threaded through the portals.
type Session struct {
	civic.Procurement
}

// Store records posted procurements and which one is current.
type Store struct {
	creator Creator
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.RWMutex
	current *Session
	byID    map[string]*Session
}

func New(creator Creator, logger *zap.Logger) *Store {
	return &Store{
		creator: creator,
		logger:  logger,
		now:     time.Now,
		byID:    make(map[string]*Session),
	}
}

// Post validates and posts the need. On success the returned session becomes
// current, replacing any earlier one. On failure the current session is left
// untouched.
func (s *Store) Post(ctx context.Context, need civic.Need) (*Session, error) {
	if err := need.Validate(); err != nil {
		return nil, fmt.Errorf("invalid need: %w", err)
	}

	posted := s.now().UTC()
	procurement, err := s.creator.CreateProcurement(ctx, need, posted)
	if err != nil {
		return nil, fmt.Errorf("create procurement: %w", err)
	}

	// The posted need is authoritative; the backend only contributes an id.
	session := &Session{Procurement: civic.Procurement{
		ID:         strings.TrimSpace(procurement.ID),
		Need:       need,
		PostedDate: posted,
	}}
	if !procurement.PostedDate.IsZero() {
		session.PostedDate = procurement.PostedDate
	}
	if session.ID == "" {
		session.ID = uuid.Must(uuid.NewV7()).String()
		s.logger.Debug("backend returned no procurement id, assigned locally", zap.String("procurement_id", session.ID))
	}

	s.mu.Lock()
	s.current = session
	s.byID[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("procurement posted",
		zap.String("procurement_id", session.ID),
		zap.String("title", need.Title),
		zap.String("budget", need.Budget.String()),
	)

	return session, nil
}

// Current returns the current session or nil when nothing was posted yet.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Get returns a previously posted session by id.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id]
}

// CurrentOrFallback returns the current session, or the fallback session.
func (s *Store) CurrentOrFallback() *Session {
	if current := s.Current(); current != nil {
		return current
	}
	return Fallback(s.now())
}

// Fallback is the demo posting used when a vendor is notified before anything
// was posted.
func Fallback(now time.Time) *Session {
	return &Session{Procurement: civic.Procurement{
		ID: FallbackID,
		Need: civic.Need{
			Title:       "Overton Park Landscaping",
			Department:  "Memphis Parks Department",
			Location:    "Memphis, TN",
			Budget:      decimal.NewFromInt(14500),
			Category:    "Services",
			Description: "Routine mowing, trimming, and beds refresh across 60 acres.",
			Deadline:    now.Format(civic.DateLayout),
		},
		PostedDate: now.UTC(),
	}}
}
