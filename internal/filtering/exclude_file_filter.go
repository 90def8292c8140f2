package filtering

import (
	"context"
	"fmt"
	"strings"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes businesses listed in an exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{
		path: strings.TrimSpace(path),
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded, err := LoadExcludedVendors(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded vendors from file: %w", err)
	}

	removed := c.ExcludeNames(excluded.Names())

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	reason := ""
	if f.path != "" {
		details["path"] = f.path
	} else {
		reason = "exclude file is not configured"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}
