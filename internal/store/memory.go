package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/civicsource/civicsource/internal/civic"
)

// Memory is a process-local Store.
type Memory struct {
	mu           sync.RWMutex
	procurements map[string]civic.Procurement
	proposals    map[string][]civic.Proposal
}

func NewMemory() *Memory {
	return &Memory{
		procurements: make(map[string]civic.Procurement),
		proposals:    make(map[string][]civic.Proposal),
	}
}

func (m *Memory) CreateProcurement(_ context.Context, p civic.Procurement) (civic.Procurement, error) {
	if p.ID == "" {
		p.ID = newID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.procurements[p.ID]; exists {
		return civic.Procurement{}, fmt.Errorf("procurement %s already exists", p.ID)
	}
	m.procurements[p.ID] = p
	return p, nil
}

func (m *Memory) GetProcurement(_ context.Context, id string) (civic.Procurement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.procurements[id]
	if !ok {
		return civic.Procurement{}, fmt.Errorf("procurement %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (m *Memory) CreateProposal(_ context.Context, p civic.Proposal) (civic.Proposal, error) {
	if p.ID == "" {
		p.ID = newID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[p.ProcurementID] = append(m.proposals[p.ProcurementID], p)
	return p, nil
}

func (m *Memory) ListProposals(_ context.Context, procurementID string) ([]civic.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.proposals[procurementID]
	out := make([]civic.Proposal, len(stored))
	copy(out, stored)
	return out, nil
}

func (m *Memory) Close() {}
