package filtering

import (
	"context"
	"strconv"
	"strings"
)

type vendorsFilter struct {
	vendors []string
}

// NewExcludedVendors creates a filter that removes businesses listed in the config.
func NewExcludedVendors(vendors []string) Filter {
	return &vendorsFilter{
		vendors: vendors,
	}
}

func (f *vendorsFilter) Name() string { return "excluded_vendors" }

func (f *vendorsFilter) Disable(string) {}

func (f *vendorsFilter) IsEnabled() bool { return true }

func (f *vendorsFilter) Validate() error { return nil }

func (f *vendorsFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if len(f.vendors) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.ExcludeNames(f.vendors)

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *vendorsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{
			"count":   strconv.Itoa(len(f.vendors)),
			"vendors": strings.Join(f.vendors, ", "),
		},
	}
}
