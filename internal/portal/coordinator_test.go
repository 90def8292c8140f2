package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/civicsource/civicsource/internal/backend"
	"github.com/civicsource/civicsource/internal/civic"
	"github.com/civicsource/civicsource/internal/filtering"
	"github.com/civicsource/civicsource/internal/procurement"
	"github.com/shopspring/decimal"
)

type fakeRemote struct {
	mu sync.Mutex

	createID  string
	createErr error

	found     []civic.Candidate
	searchErr error
	searched  []backend.SearchParams

	proposalErr error
	submitted   []civic.Proposal

	listErr  error
	listed   []string
	listResp []civic.Proposal
}

func (f *fakeRemote) CreateProcurement(_ context.Context, need civic.Need, posted time.Time) (*civic.Procurement, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &civic.Procurement{ID: f.createID, Need: need, PostedDate: posted}, nil
}

func (f *fakeRemote) SearchBusinesses(_ context.Context, params *backend.SearchParams) ([]civic.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, *params)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.found, nil
}

func (f *fakeRemote) CreateProposal(_ context.Context, proposal civic.Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.proposalErr != nil {
		return f.proposalErr
	}
	f.submitted = append(f.submitted, proposal)
	return nil
}

func (f *fakeRemote) ListProposals(_ context.Context, id string) ([]civic.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, id)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResp, nil
}

func rating(v float64) *float64 { return &v }

func overtonCandidates() []civic.Candidate {
	return []civic.Candidate{
		{Name: "LawnPro Franchise", Rating: rating(4.5), Categories: []string{"Landscaping"}, IsChain: true},
		{Name: "GreenScape Memphis", Rating: rating(4.8), Categories: []string{"Landscaping", "Services"}, GovernmentRegistered: true},
		{Name: "Bluff City Lawn", Rating: rating(4.1), Categories: []string{"Lawn Services"}},
		{Name: "Midtown Mowers", Rating: rating(3.9), Categories: []string{"Gardening"}},
		{Name: "Shade Tree Care", Categories: []string{"Tree Services"}, GovernmentRegistered: true},
		{Name: "River City Grounds", Rating: rating(4.9), Categories: []string{"Services"}},
		{Name: "Seventh Result", Rating: rating(5), Categories: []string{"Services"}, GovernmentRegistered: true},
	}
}

func overtonNeed() civic.Need {
	return civic.Need{
		Title:       "Overton Park Landscaping",
		Department:  "Memphis Parks Department",
		Category:    "Services",
		Location:    "Memphis, TN",
		Budget:      decimal.NewFromInt(14500),
		Description: "Routine mowing",
	}
}

func newTestCoordinator(remote *fakeRemote, opts Options) *Coordinator {
	if opts.MinMatchLatency == 0 {
		opts.MinMatchLatency = -1
	}
	return New(remote, opts, zap.NewNop())
}

func TestNavigate(t *testing.T) {
	c := newTestCoordinator(&fakeRemote{}, Options{})
	if c.Active() != Landing {
		t.Fatalf("expected initial view landing, got %s", c.Active())
	}

	for _, from := range Views() {
		for _, to := range Views() {
			c.Navigate(from)
			c.Navigate(to)
			if c.Active() != to {
				t.Fatalf("navigate %s -> %s ended on %s", from, to, c.Active())
			}
		}
	}
}

func TestParseView(t *testing.T) {
	for _, view := range Views() {
		got, err := ParseView(" " + view.String() + " ")
		if err != nil || got != view {
			t.Fatalf("ParseView(%q) = %s, %v", view.String(), got, err)
		}
	}
	if _, err := ParseView("admin"); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

func TestPostAndFind(t *testing.T) {
	remote := &fakeRemote{createID: "42", found: overtonCandidates()}
	c := newTestCoordinator(remote, Options{})

	result := c.PostAndFind(context.Background(), overtonNeed())

	if result.Session == nil || result.Session.ID != "42" {
		t.Fatalf("expected session 42, got %+v", result.Session)
	}
	if c.Session() != result.Session {
		t.Fatalf("expected posted session to become current")
	}

	if len(remote.searched) != 1 {
		t.Fatalf("expected one search, got %d", len(remote.searched))
	}
	params := remote.searched[0]
	if params.Query != "Overton Park Landscaping" || params.Location != "Memphis, TN" || params.Radius != 25 || params.Limit != 12 {
		t.Fatalf("unexpected search params: %+v", params)
	}

	want := []struct {
		name  string
		score int
	}{
		{"GreenScape Memphis", 99},
		{"Shade Tree Care", 99},
		{"River City Grounds", 99},
	}
	if len(result.Matches) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(result.Matches))
	}
	for i, w := range want {
		got := result.Matches[i]
		if got.Name != w.name || got.MatchScore != w.score {
			t.Fatalf("match %d: expected %s/%d, got %s/%d", i, w.name, w.score, got.Name, got.MatchScore)
		}
	}
}

func TestPostAndFindQueryFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		need  civic.Need
		query string
	}{
		{name: "title", need: civic.Need{Title: "Snow removal", Category: "Services"}, query: "Snow removal"},
		{name: "category", need: civic.Need{Title: "  ", Category: "Catering"}, query: "Catering"},
		{name: "default", need: civic.Need{}, query: "services"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{}
			c := newTestCoordinator(remote, Options{})
			c.PostAndFind(context.Background(), tt.need)

			if len(remote.searched) != 1 || remote.searched[0].Query != tt.query {
				t.Fatalf("expected query %q, got %+v", tt.query, remote.searched)
			}
		})
	}
}

func TestPostFailureStillSearches(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	remote := &fakeRemote{
		createErr: fmt.Errorf("%w: connection refused", backend.ErrRemoteUnavailable),
		found:     overtonCandidates(),
	}
	c := New(remote, Options{MinMatchLatency: -1}, zap.New(core))

	result := c.PostAndFind(context.Background(), overtonNeed())

	if result.Session != nil {
		t.Fatalf("expected no session after failed post")
	}
	if c.Session() != nil {
		t.Fatalf("expected current session to stay empty")
	}
	if len(result.Matches) != 3 {
		t.Fatalf("expected matches despite failed post, got %d", len(result.Matches))
	}
	if logs.FilterMessage("posting procurement failed").Len() != 1 {
		t.Fatalf("expected post failure to be logged")
	}
}

func TestSearchFailureYieldsNoMatches(t *testing.T) {
	remote := &fakeRemote{createID: "7", searchErr: backend.ErrMalformedResponse}
	c := newTestCoordinator(remote, Options{})

	result := c.PostAndFind(context.Background(), overtonNeed())

	if result.Session == nil {
		t.Fatalf("expected session despite failed search")
	}
	if result.Matches == nil || len(result.Matches) != 0 {
		t.Fatalf("expected empty non-nil matches, got %#v", result.Matches)
	}
}

func TestPostAndFindAppliesFilters(t *testing.T) {
	remote := &fakeRemote{createID: "1", found: overtonCandidates()}
	filters := filtering.New([]filtering.Filter{
		filtering.NewExcludedVendors([]string{"GreenScape Memphis"}),
	}, zap.NewNop())
	c := newTestCoordinator(remote, Options{Filters: filters, Keep: 1})

	result := c.PostAndFind(context.Background(), overtonNeed())

	if len(result.Matches) != 1 || result.Matches[0].Name != "Shade Tree Care" {
		t.Fatalf("unexpected matches: %+v", result.Matches)
	}
}

func TestPostAndFindWaitsMinimumLatency(t *testing.T) {
	remote := &fakeRemote{createID: "1"}
	c := New(remote, Options{MinMatchLatency: 40 * time.Millisecond}, zap.NewNop())

	started := time.Now()
	c.PostAndFind(context.Background(), overtonNeed())
	if elapsed := time.Since(started); elapsed < 40*time.Millisecond {
		t.Fatalf("expected at least 40ms, got %s", elapsed)
	}
}

func TestPostAndFindPauseIsCancellable(t *testing.T) {
	remote := &fakeRemote{createID: "1"}
	c := New(remote, Options{MinMatchLatency: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.PostAndFind(ctx, overtonNeed())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("PostAndFind did not return after cancellation")
	}
}

func TestNotifyVendorUsesCurrentSession(t *testing.T) {
	remote := &fakeRemote{createID: "42", found: overtonCandidates()}
	c := newTestCoordinator(remote, Options{})
	c.Navigate(Government)

	result := c.PostAndFind(context.Background(), overtonNeed())
	n := c.NotifyVendor(result.Matches[0])

	if c.Active() != Business {
		t.Fatalf("expected business view after notify, got %s", c.Active())
	}
	if n.ProcurementID != "42" || n.Title != "Overton Park Landscaping" {
		t.Fatalf("unexpected notification: %+v", n)
	}

	second := c.NotifyVendor(result.Matches[1])
	list := c.Notifications()
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != n.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if second.ID == n.ID {
		t.Fatalf("expected distinct notification ids")
	}
}

func TestNotifyVendorAfterPostingUncategorizedNeed(t *testing.T) {
	remote := &fakeRemote{createID: "43", found: overtonCandidates()}
	c := newTestCoordinator(remote, Options{})

	result := c.PostAndFind(context.Background(), civic.Need{Title: "Snow removal", Budget: decimal.NewFromInt(9000)})
	if result.Session == nil || c.Session() == nil {
		t.Fatalf("expected the posted need to become current, got %+v", result.Session)
	}
	if len(result.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(result.Matches))
	}

	n := c.NotifyVendor(result.Matches[0])
	if n.ProcurementID != "43" || n.Title != "Snow removal" {
		t.Fatalf("expected notification for the posted need, got %+v", n)
	}
	if !n.Budget.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("expected posted budget, got %s", n.Budget)
	}
}

func TestNotifyVendorWithoutSessionUsesFallback(t *testing.T) {
	c := newTestCoordinator(&fakeRemote{}, Options{})

	n := c.NotifyVendor(civic.ScoredCandidate{Candidate: civic.Candidate{Name: "GreenScape"}, MatchScore: 99})

	if n.ProcurementID != procurement.FallbackID || n.Title != "Overton Park Landscaping" {
		t.Fatalf("expected fallback notification, got %+v", n)
	}
	if !n.Budget.Equal(decimal.NewFromInt(14500)) {
		t.Fatalf("expected fallback budget, got %s", n.Budget)
	}
	if c.Active() != Business {
		t.Fatalf("expected business view, got %s", c.Active())
	}
}

func TestSubmitBid(t *testing.T) {
	remote := &fakeRemote{}
	c := newTestCoordinator(remote, Options{})

	ok := c.SubmitBid(context.Background(), civic.Notification{ProcurementID: "42"}, Bid{
		BusinessName: "GreenScape",
		Email:        "bids@greenscape.example",
		Price:        decimal.NewFromInt(13900),
		Timeline:     "3 weeks",
	})
	if !ok {
		t.Fatalf("expected bid to be accepted")
	}
	if len(remote.submitted) != 1 {
		t.Fatalf("expected one proposal, got %d", len(remote.submitted))
	}
	p := remote.submitted[0]
	if p.ProcurementID != "42" || p.BusinessInfo.Name != "GreenScape" || !p.Price.Equal(decimal.NewFromInt(13900)) {
		t.Fatalf("unexpected proposal: %+v", p)
	}
	if p.SubmittedDate.IsZero() {
		t.Fatalf("expected submitted date")
	}
}

func TestSubmitBidFailures(t *testing.T) {
	valid := Bid{BusinessName: "GreenScape", Email: "bids@greenscape.example", Price: decimal.NewFromInt(1)}

	tests := []struct {
		name   string
		remote *fakeRemote
		bid    Bid
	}{
		{name: "rejected", remote: &fakeRemote{proposalErr: backend.ErrRemoteRejected}, bid: valid},
		{name: "unavailable", remote: &fakeRemote{proposalErr: backend.ErrRemoteUnavailable}, bid: valid},
		{name: "negative price", remote: &fakeRemote{}, bid: Bid{BusinessName: "A", Email: "a@b.example", Price: decimal.NewFromInt(-5)}},
		{name: "missing email", remote: &fakeRemote{}, bid: Bid{BusinessName: "A", Price: decimal.NewFromInt(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCoordinator(tt.remote, Options{})
			if c.SubmitBid(context.Background(), civic.Notification{ProcurementID: "1"}, tt.bid) {
				t.Fatalf("expected bid to fail")
			}
		})
	}
}

func TestProposals(t *testing.T) {
	remote := &fakeRemote{createID: "42", listResp: []civic.Proposal{{ProcurementID: "42"}}}
	c := newTestCoordinator(remote, Options{})

	if got := c.Proposals(context.Background()); len(got) != 1 {
		t.Fatalf("expected one proposal, got %d", len(got))
	}
	if remote.listed[0] != procurement.FallbackID {
		t.Fatalf("expected fallback id before posting, got %q", remote.listed[0])
	}

	c.PostAndFind(context.Background(), overtonNeed())
	c.Proposals(context.Background())
	if remote.listed[1] != "42" {
		t.Fatalf("expected current id, got %q", remote.listed[1])
	}

	remote.listErr = errors.New("boom")
	if got := c.Proposals(context.Background()); got == nil || len(got) != 0 {
		t.Fatalf("expected empty list on failure, got %#v", got)
	}
}

func TestDashboard(t *testing.T) {
	d := newTestCoordinator(&fakeRemote{}, Options{}).Dashboard()

	if !d.AwardedTotal.Equal(decimal.NewFromInt(2400000)) || d.MBEShare != 47 || d.MBEGoal != 60 || d.JobsSupported != 150 {
		t.Fatalf("unexpected dashboard figures: %+v", d)
	}
	if len(d.Comparison) != 2 {
		t.Fatalf("expected two comparisons, got %d", len(d.Comparison))
	}
	if got := d.Comparison[0].Impact(); !got.Equal(decimal.NewFromInt(12600)) {
		t.Fatalf("expected out-of-state impact 12600, got %s", got)
	}
	if got := d.Comparison[1].Impact(); !got.Equal(decimal.NewFromInt(26100)) {
		t.Fatalf("expected local impact 26100, got %s", got)
	}
}
