// Package store keeps the procurements and proposals received by the
// collaborator API.
package store

import (
	"context"
	"errors"

	"github.com/civicsource/civicsource/internal/civic"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store persists procurements and proposals. Implementations assign ids to
// records that arrive without one.
type Store interface {
	CreateProcurement(ctx context.Context, p civic.Procurement) (civic.Procurement, error)
	GetProcurement(ctx context.Context, id string) (civic.Procurement, error)
	CreateProposal(ctx context.Context, p civic.Proposal) (civic.Proposal, error)
	// ListProposals returns the proposals for a procurement, oldest first.
	ListProposals(ctx context.Context, procurementID string) ([]civic.Proposal, error)
	Close()
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
