// Package store keeps the ledger in process memory for the lifetime of a session.
package store

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type Store struct {
	mu    sync.RWMutex
	state ledger.State
}

// New returns a store holding initial. Use ledger.Seed() for the demo dataset.
func New(initial ledger.State) *Store {
	return &Store{state: initial.Clone()}
}

func (s *Store) Load(ctx context.Context) (ledger.State, error) {
	if err := ctx.Err(); err != nil {
		return ledger.State{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone(), nil
}

func (s *Store) Save(ctx context.Context, st ledger.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st.Clone()

	return nil
}
