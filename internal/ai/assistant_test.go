package ai

import (
	"context"
	"testing"
)

func TestStaticReply(t *testing.T) {
	reply, err := Static{}.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != StaticGuidance {
		t.Fatalf("expected default guidance, got %q", reply)
	}

	reply, _ = Static{Text: "custom"}.Reply(context.Background(), "hello")
	if reply != "custom" {
		t.Fatalf("expected custom text, got %q", reply)
	}
}
