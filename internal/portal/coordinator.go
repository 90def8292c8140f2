// Package portal coordinates the government, business, public and compare
// views around the current procurement.
package portal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/civicsource/civicsource/internal/backend"
	"github.com/civicsource/civicsource/internal/civic"
	"github.com/civicsource/civicsource/internal/filtering"
	"github.com/civicsource/civicsource/internal/logger"
	"github.com/civicsource/civicsource/internal/notify"
	"github.com/civicsource/civicsource/internal/procurement"
	"github.com/civicsource/civicsource/internal/scoring"
	"github.com/civicsource/civicsource/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultMinMatchLatency = 800 * time.Millisecond
	defaultQuery           = "services"
)

// Remote is the part of the collaborator API the portals call.
type Remote interface {
	procurement.Creator
	SearchBusinesses(ctx context.Context, params *backend.SearchParams) ([]civic.Candidate, error)
	CreateProposal(ctx context.Context, proposal civic.Proposal) error
	ListProposals(ctx context.Context, procurementID string) ([]civic.Proposal, error)
}

// Options tune the matching flow. Zero values select the defaults; a negative
// MinMatchLatency disables the pause.
type Options struct {
	MinMatchLatency time.Duration
	SourceLimit     int
	Keep            int
	Filters         *filtering.Filtering
}

// MatchResult is the outcome of posting a need and searching for vendors.
type MatchResult struct {
	// Session is nil when the post failed.
	Session *procurement.Session
	Matches []civic.ScoredCandidate
}

// Bid is what a business fills in when responding to a notification.
type Bid struct {
	BusinessName string
	Email        string
	Price        decimal.Decimal
	Timeline     string
	Description  string
	Experience   string
}

// Coordinator owns the active view and routes the shared procurement state
// to whichever view is active.
type Coordinator struct {
	remote        Remote
	procurements  *procurement.Store
	notifications *notify.Channel
	ranker        *scoring.Ranker
	filters       *filtering.Filtering
	minLatency    time.Duration
	logger        *zap.Logger
	now           func() time.Time

	mu     sync.RWMutex
	active View
}

func New(remote Remote, opts Options, log *zap.Logger) *Coordinator {
	log = logger.Component(log, "portal")

	ranker := scoring.NewRanker()
	if opts.SourceLimit > 0 {
		ranker.SourceLimit = opts.SourceLimit
	}
	if opts.Keep > 0 {
		ranker.Keep = opts.Keep
	}

	latency := opts.MinMatchLatency
	if latency == 0 {
		latency = DefaultMinMatchLatency
	}

	filters := opts.Filters
	if filters == nil {
		filters = filtering.New(nil, log)
	}

	return &Coordinator{
		remote:        remote,
		procurements:  procurement.New(remote, log),
		notifications: notify.New(log),
		ranker:        ranker,
		filters:       filters,
		minLatency:    latency,
		logger:        log,
		now:           time.Now,
		active:        Landing,
	}
}

// Active returns the view currently shown.
func (c *Coordinator) Active() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Navigate switches to view. Every transition is allowed.
func (c *Coordinator) Navigate(view View) {
	c.mu.Lock()
	from := c.active
	c.active = view
	c.mu.Unlock()

	c.logger.Debug("navigate", zap.Stringer("from", from), zap.Stringer(logger.FieldView, view))
}

// Session returns the current procurement, or nil before the first post.
func (c *Coordinator) Session() *procurement.Session {
	return c.procurements.Current()
}

// Notifications returns the notifications received so far, newest first.
func (c *Coordinator) Notifications() []civic.Notification {
	return c.notifications.List()
}

// Dashboard returns the public transparency figures.
func (c *Coordinator) Dashboard() Dashboard {
	return defaultDashboard()
}

// NotifyVendor tells a matched business about the current procurement and
// switches to the business portal. Before anything was posted the fallback
// procurement is used.
func (c *Coordinator) NotifyVendor(candidate civic.ScoredCandidate) civic.Notification {
	session := c.procurements.CurrentOrFallback()

	n, _ := c.notifications.Notify(session)
	c.logger.Info("vendor notified",
		zap.String("vendor", candidate.Name),
		zap.Int("match_score", candidate.MatchScore),
		zap.String(logger.FieldProcurement, n.ProcurementID),
	)

	c.Navigate(Business)
	return n
}

// PostAndFind posts the need and returns the best local matches for it.
// A failed post is logged and the search still runs. A failed search yields
// no matches. The result is never returned sooner than the configured
// minimum latency unless ctx is cancelled.
func (c *Coordinator) PostAndFind(ctx context.Context, need civic.Need) MatchResult {
	started := c.now()

	var result MatchResult

	session, err := c.procurements.Post(ctx, need)
	if err != nil {
		c.logger.Warn("posting procurement failed", zap.Error(err))
	} else {
		result.Session = session
	}

	result.Matches = c.findMatches(ctx, need)

	remaining := c.minLatency - c.now().Sub(started)
	if err := utils.WaitFor(ctx, remaining); err != nil {
		c.logger.Debug("match pause interrupted", zap.Error(err))
	}

	return result
}

func (c *Coordinator) findMatches(ctx context.Context, need civic.Need) []civic.ScoredCandidate {
	params := &backend.SearchParams{
		Query:    utils.FirstNonEmpty(strings.TrimSpace(need.Title), strings.TrimSpace(need.Category), defaultQuery),
		Location: need.Location,
		Radius:   backend.DefaultSearchRadius,
		Limit:    backend.DefaultSearchLimit,
	}

	found, err := c.remote.SearchBusinesses(ctx, params)
	if err != nil {
		c.logger.Warn("business search failed", zap.Error(err), zap.String("query", params.Query))
		return []civic.ScoredCandidate{}
	}

	filtered, err := c.filters.Run(ctx, filtering.NewCandidates(found))
	if err != nil {
		c.logger.Warn("filtering candidates failed, ranking unfiltered results", zap.Error(err))
		filtered = filtering.NewCandidates(found)
	}

	matches := c.ranker.Rank(filtered.Items, need)
	c.logger.Info("matches ranked",
		zap.String("query", params.Query),
		zap.Int("found", len(found)),
		zap.Int("after_filters", filtered.Len()),
		zap.Int("matches", len(matches)),
	)
	return matches
}

// SubmitBid sends a proposal for the notification's procurement. It reports
// whether the backend accepted it.
func (c *Coordinator) SubmitBid(ctx context.Context, notification civic.Notification, bid Bid) bool {
	proposal := civic.Proposal{
		ProcurementID: utils.FirstNonEmpty(notification.ProcurementID, procurement.FallbackID),
		BusinessInfo: civic.BusinessInfo{
			Name:  strings.TrimSpace(bid.BusinessName),
			Email: strings.TrimSpace(bid.Email),
		},
		Price:         bid.Price,
		Timeline:      bid.Timeline,
		Description:   bid.Description,
		Experience:    bid.Experience,
		SubmittedDate: c.now().UTC(),
	}

	if err := proposal.Validate(); err != nil {
		c.logger.Warn("bid rejected locally", zap.Error(err))
		return false
	}

	if err := c.remote.CreateProposal(ctx, proposal); err != nil {
		c.logger.Warn("submitting bid failed", zap.Error(err), zap.String(logger.FieldProcurement, proposal.ProcurementID))
		return false
	}

	c.logger.Info("bid submitted",
		zap.String(logger.FieldProcurement, proposal.ProcurementID),
		zap.String("business", proposal.BusinessInfo.Name),
		zap.String("price", proposal.Price.String()),
	)
	return true
}

// Proposals lists the bids received for the current procurement, or for the
// fallback procurement before anything was posted. Failures yield an empty list.
func (c *Coordinator) Proposals(ctx context.Context) []civic.Proposal {
	id := procurement.FallbackID
	if session := c.procurements.Current(); session != nil {
		id = session.ID
	}

	proposals, err := c.remote.ListProposals(ctx, id)
	if err != nil {
		c.logger.Warn("listing proposals failed", zap.Error(err), zap.String(logger.FieldProcurement, id))
		return []civic.Proposal{}
	}
	return proposals
}
