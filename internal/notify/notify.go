// Package notify turns "notify vendor" actions into notifications shown on the
// business portal.
package notify

import (
	"sync"
	"time"

	"github.com/civicsource/civicsource/internal/civic"
	"github.com/civicsource/civicsource/internal/procurement"
	"github.com/civicsource/civicsource/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Channel holds the notifications produced so far, newest first.
type Channel struct {
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	items []civic.Notification
}

func New(logger *zap.Logger) *Channel {
	return &Channel{logger: logger, now: time.Now}
}

// Notify snapshots the session into a new notification and puts it at the
// front of the list. It does nothing and returns false when session is nil.
// Every call produces a new notification, even for the same session.
func (c *Channel) Notify(session *procurement.Session) (civic.Notification, bool) {
	if session == nil {
		c.logger.Warn("notify skipped", zap.String("reason", "no procurement session"))
		return civic.Notification{}, false
	}

	now := c.now()
	fallback := procurement.Fallback(now)

	budget := session.Budget
	if budget.IsZero() {
		budget = fallback.Budget
	}

	n := civic.Notification{
		ID:            uuid.Must(uuid.NewV7()).String(),
		ProcurementID: utils.FirstNonEmpty(session.ID, fallback.ID),
		Title:         utils.FirstNonEmpty(session.Title, fallback.Title),
		Department:    utils.FirstNonEmpty(session.Department, fallback.Department),
		Location:      utils.FirstNonEmpty(session.Location, fallback.Location),
		Budget:        budget,
		Category:      utils.FirstNonEmpty(session.Category, fallback.Category),
		Description:   utils.FirstNonEmpty(session.Description, fallback.Description),
		Deadline:      utils.FirstNonEmpty(session.Deadline, fallback.Deadline),
		CreatedAt:     now.UTC(),
	}

	c.mu.Lock()
	c.items = append([]civic.Notification{n}, c.items...)
	count := len(c.items)
	c.mu.Unlock()

	c.logger.Info("vendor notified",
		zap.String("notification_id", n.ID),
		zap.String("procurement_id", n.ProcurementID),
		zap.Int("notifications", count),
	)

	return n, true
}

// List returns a copy of the notifications, most recent first.
func (c *Channel) List() []civic.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]civic.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the notification with the given id.
func (c *Channel) Find(id string) (civic.Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, n := range c.items {
		if n.ID == id {
			return n, true
		}
	}
	return civic.Notification{}, false
}
