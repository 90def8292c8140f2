package ai

import (
	"context"
	"strings"
)

// Replier answers a single chat message with a complete reply.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// StaticGuidance is the reply served when no AI provider is configured.
const StaticGuidance = "I can help you **post a procurement**, find **local MBE/WBE vendors** and compare bids.\n" +
	"- Government: describe the need, budget and deadline, then pick from the ranked matches.\n" +
	"- Businesses: open a notification and submit a bid with your price and timeline.\n" +
	"- Public: see how spending with local vendors multiplies across Memphis.\n" +
	"Learn more about certification at https://www.memphistn.gov"

// Static replies with fixed text regardless of the message.
type Static struct {
	Text string
}

func (s Static) Reply(_ context.Context, message string) (string, error) {
	if strings.TrimSpace(s.Text) == "" {
		return StaticGuidance, nil
	}
	return s.Text, nil
}
