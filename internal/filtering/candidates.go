package filtering

import (
	"strings"

	"github.com/civicsource/civicsource/internal/civic"
)

// Candidates is an ordered list of search results.
type Candidates struct {
	Items []civic.Candidate
}

func NewCandidates(items []civic.Candidate) *Candidates {
	copied := make([]civic.Candidate, len(items))
	copy(copied, items)
	return &Candidates{Items: copied}
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

// Keep retains the candidates for which keep returns true and returns the
// names of the dropped ones. Order is preserved.
func (c *Candidates) Keep(keep func(civic.Candidate) bool) []string {
	var dropped []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if keep(candidate) {
			kept = append(kept, candidate)
			continue
		}
		dropped = append(dropped, candidate.Name)
	}
	c.Items = kept
	return dropped
}

// ExcludeNames drops candidates whose name matches one of names, ignoring case
// and surrounding whitespace.
func (c *Candidates) ExcludeNames(names []string) []string {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[normalize(name)] = struct{}{}
	}

	return c.Keep(func(candidate civic.Candidate) bool {
		_, excluded := set[normalize(candidate.Name)]
		return !excluded
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
