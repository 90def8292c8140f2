package filtering

import (
	"context"

	"github.com/civicsource/civicsource/internal/civic"
)

type dedupeFilter struct {
	enabled bool
	reason  string
}

// NewDedupe creates a filter that drops repeated businesses. Search results
// are aggregated from several sources, so the same business can show up more
// than once. The first occurrence wins.
func NewDedupe() Filter {
	return &dedupeFilter{enabled: true}
}

func (f *dedupeFilter) Name() string { return "dedupe" }

func (f *dedupeFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *dedupeFilter) IsEnabled() bool { return f.enabled }

func (f *dedupeFilter) Validate() error { return nil }

func (f *dedupeFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	seen := make(map[string]struct{}, initial)

	dropped := c.Keep(func(candidate civic.Candidate) bool {
		key := normalize(candidate.Name) + "|" + normalize(candidate.Address)
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *dedupeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason}
}
