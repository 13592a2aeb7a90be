// Package session keeps per-visitor round state between requests.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/mind-engage/quizplay/internal/play"
)

var ErrNotFound = errors.New("session not found")

// State is the bag stored per browsing session.
type State struct {
	Normal   play.Round `json:"normal"`
	Multiple play.Round `json:"multiple"`
}

func (s State) Round(m play.Mode) play.Round {
	if m == play.ModeMultiple {
		return s.Multiple
	}
	return s.Normal
}

func (s State) WithRound(m play.Mode, r play.Round) State {
	if m == play.ModeMultiple {
		s.Multiple = r
	} else {
		s.Normal = r
	}
	return s
}

type Store interface {
	// Get returns ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (State, error)
	Put(ctx context.Context, id string, st State) error
	Delete(ctx context.Context, id string) error
}

// Load is Get with a miss mapped to an empty State.
func Load(ctx context.Context, s Store, id string) (State, error) {
	st, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return State{}, nil
	}
	return st, err
}

type memoryStore struct {
	mu sync.RWMutex
	m  map[string]State
}

// NewMemoryStore keeps sessions in process; they vanish on restart.
func NewMemoryStore() Store {
	return &memoryStore{m: map[string]State{}}
}

func (s *memoryStore) Get(_ context.Context, id string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.m[id]
	if !ok {
		return State{}, ErrNotFound
	}
	return copyState(st), nil
}

func (s *memoryStore) Put(_ context.Context, id string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = copyState(st)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// copyState detaches the played-id slices from the caller.
func copyState(st State) State {
	st.Normal.PlayedIDs = append([]int64(nil), st.Normal.PlayedIDs...)
	st.Multiple.PlayedIDs = append([]int64(nil), st.Multiple.PlayedIDs...)
	return st
}
