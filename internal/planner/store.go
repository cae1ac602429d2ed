package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"meal-planner/internal/recipe"
)

// Observer is notified with every new state after a transition.
type Observer func(State)

// Store owns the current plan state. Transitions are applied atomically,
// published to observers and then persisted on a best-effort basis: a failed
// write is logged and never undoes or blocks the in-memory change.
type Store struct {
	mu        sync.RWMutex
	state     State
	revision  uint64
	observers map[int]Observer
	nextObs   int

	persister Persister
	saveMu    sync.Mutex
	saved     uint64

	logger *slog.Logger
}

// NewStore restores the last persisted state, falling back to the default
// state when it cannot be read. A nil persister keeps state in memory only.
func NewStore(ctx context.Context, persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		state:     NewState(),
		observers: make(map[int]Observer),
		persister: persister,
		logger:    logger,
	}
	if persister == nil {
		return s
	}

	restored, err := persister.Load(ctx)
	if err != nil {
		logger.Warn("restoring meal plan state, starting from defaults", "error", err)
		return s
	}
	if restored.Completed == nil {
		restored.Completed = make(map[string]bool)
	}
	s.state = restored
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Assign plans r on day d.
func (s *Store) Assign(ctx context.Context, d Day, r recipe.Recipe) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	if strings.TrimSpace(r.ID) == "" {
		return ErrInvalidRecipe
	}
	s.apply(ctx, "assign", func(st State) State { return Assign(st, d, r) })
	return nil
}

// Unassign clears day d.
func (s *Store) Unassign(ctx context.Context, d Day) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	s.apply(ctx, "unassign", func(st State) State { return Unassign(st, d) })
	return nil
}

// ToggleCompletion flips the completion flag of an item and returns the new value.
func (s *Store) ToggleCompletion(ctx context.Context, key string) bool {
	next := s.apply(ctx, "toggle", func(st State) State { return ToggleCompletion(st, key) })
	return next.Completed[key]
}

// ClearCompleted removes every completed flag and returns how many were removed.
func (s *Store) ClearCompleted(ctx context.Context) int {
	var removed int
	s.apply(ctx, "clear_completed", func(st State) State {
		next := ClearCompleted(st)
		removed = len(st.Completed) - len(next.Completed)
		return next
	})
	return removed
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) apply(ctx context.Context, name string, transition func(State) State) State {
	s.mu.Lock()
	next := transition(s.state)
	s.state = next
	s.revision++
	rev := s.revision
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	s.logger.Debug("meal plan transition", "transition", name, "revision", rev)

	for _, fn := range observers {
		fn(next.Clone())
	}
	s.persist(ctx, rev, next)
	return next.Clone()
}

func (s *Store) persist(ctx context.Context, rev uint64, st State) {
	if s.persister == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	// A newer snapshot has already been written.
	if rev <= s.saved {
		return
	}
	if err := s.persister.Save(context.WithoutCancel(ctx), st); err != nil {
		s.logger.Warn("persisting meal plan state", "revision", rev, "error", err)
		return
	}
	s.saved = rev
}
