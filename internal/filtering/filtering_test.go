package filtering

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/civicsource/civicsource/internal/civic"
)

func names(c *Candidates) []string {
	out := make([]string, 0, c.Len())
	for _, item := range c.Items {
		out = append(out, item.Name)
	}
	return out
}

func equalNames(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEmptyPipelineIsIdentity(t *testing.T) {
	input := []civic.Candidate{{Name: "A"}, {Name: "B"}, {Name: "A"}}
	out, err := New(nil, zap.NewNop()).Run(context.Background(), NewCandidates(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalNames(t, names(out), []string{"A", "B", "A"})
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	input := []civic.Candidate{
		{Name: "GreenScape", Address: "1 Main St", Source: "yelp"},
		{Name: "Bluff City", Address: "2 Oak Ave"},
		{Name: "greenscape ", Address: "1  main st", Source: "google"},
		{Name: "GreenScape", Address: "9 Elm St"},
	}

	out, info, err := NewDedupe().Apply(context.Background(), NewCandidates(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalNames(t, names(out), []string{"GreenScape", "Bluff City", "GreenScape"})
	if out.Items[0].Source != "yelp" {
		t.Fatalf("expected first occurrence to win, got %q", out.Items[0].Source)
	}
	if info.Initial != 4 || info.Dropped != 1 || info.Left != 3 {
		t.Fatalf("unexpected step info: %+v", info)
	}
}

func TestExcludedVendorsFilter(t *testing.T) {
	input := []civic.Candidate{{Name: "LawnPro Franchise"}, {Name: "GreenScape"}, {Name: "Shade Tree"}}

	out, info, err := NewExcludedVendors([]string{"lawnpro franchise"}).Apply(context.Background(), NewCandidates(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalNames(t, names(out), []string{"GreenScape", "Shade Tree"})
	if info.Dropped != 1 {
		t.Fatalf("expected one dropped vendor, got %d", info.Dropped)
	}
}

func TestExcludeFileRoundTripAndFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")

	list, err := LoadExcludedVendors(path)
	if err != nil {
		t.Fatalf("missing file should load as empty: %v", err)
	}
	if len(list.Items) != 0 {
		t.Fatalf("expected empty list, got %d", len(list.Items))
	}

	list.Exclude(civic.Candidate{Name: "Shade Tree", Address: "3 Pine"}, "declined last season")
	if err := list.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	input := []civic.Candidate{{Name: "GreenScape"}, {Name: "Shade Tree"}}
	out, info, err := NewExcludeFile(path).Apply(context.Background(), NewCandidates(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalNames(t, names(out), []string{"GreenScape"})
	if info.Dropped != 1 {
		t.Fatalf("expected one dropped, got %d", info.Dropped)
	}
}

func TestExcludeFileInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f := New([]Filter{NewExcludeFile(path)}, zap.NewNop())
	if _, err := f.Run(context.Background(), NewCandidates([]civic.Candidate{{Name: "A"}})); err == nil {
		t.Fatalf("expected error for malformed exclude file")
	}
}

func TestRunSkipsDisabledSteps(t *testing.T) {
	input := []civic.Candidate{{Name: "A", Address: "x"}, {Name: "A", Address: "x"}}

	f := New([]Filter{NewDedupe()}, zap.NewNop())
	f.DisableByName("dedupe", "testing")

	out, err := f.Run(context.Background(), NewCandidates(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected disabled dedupe to keep both, got %d", out.Len())
	}

	statuses := f.Describe()
	if len(statuses) != 1 || statuses[0].Enabled || statuses[0].Reason != "testing" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
}

func TestNewCandidatesCopiesInput(t *testing.T) {
	input := []civic.Candidate{{Name: "A", Address: "x"}, {Name: "A", Address: "x"}, {Name: "B"}}
	if _, _, err := NewDedupe().Apply(context.Background(), NewCandidates(input)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalNames(t, []string{input[0].Name, input[1].Name, input[2].Name}, []string{"A", "A", "B"})
}
