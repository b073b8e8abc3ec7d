// Package state holds the filter specs of a single table instance. It is the
// only place specs are mutated; predicates read snapshots of it.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/asaidimu/go-colfilter/core/filter"
	"github.com/asaidimu/go-colfilter/core/persistence"
	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidColumn is returned for a negative column index.
var ErrInvalidColumn = errors.New("state: invalid column index")

// FilterState is the per-table mapping from column to filter spec. A column
// is either unconstrained (no entry) or constrained by a non-empty spec.
type FilterState struct {
	id            string
	mu            sync.RWMutex
	specs         filter.Specs
	bus           *events.TypedEventBus[Event]
	logger        *zap.Logger
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// New creates the state of one table instance. An empty id is replaced by a
// random UUID.
func New(id string, logger *zap.Logger) (*FilterState, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if id == "" {
		id = uuid.New().String()
	}
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	return &FilterState{
		id:            id,
		specs:         make(filter.Specs),
		bus:           bus,
		logger:        logger.With(zap.String("table", id)),
		subscriptions: make(map[string]*SubscriptionInfo),
	}, nil
}

// ID returns the table instance id the state belongs to.
func (s *FilterState) ID() string {
	return s.id
}

func (s *FilterState) emit(event Event) {
	if s.bus != nil {
		s.bus.Emit(string(event.Type), event)
	}
}

// SetColumnFilter constrains col by spec. An empty spec makes the column
// unconstrained again.
func (s *FilterState) SetColumnFilter(col int, spec filter.Spec) error {
	if col < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}

	s.mu.Lock()
	if spec.IsEmpty() {
		delete(s.specs, col)
	} else {
		s.specs[col] = spec
	}
	s.mu.Unlock()

	s.logger.Debug("Column filter set", zap.Int("column", col), zap.Stringer("spec", spec))

	event := newEvent(FilterSet, s.id)
	event.Column = &col
	event.Spec = &spec
	s.emit(event)
	return nil
}

// ClearAllFilters makes every column unconstrained.
func (s *FilterState) ClearAllFilters() {
	s.mu.Lock()
	s.specs = make(filter.Specs)
	s.mu.Unlock()

	s.logger.Debug("Filters cleared")
	s.emit(newEvent(FiltersCleared, s.id))
}

// Spec returns the spec of col, Empty when unconstrained.
func (s *FilterState) Spec(col int) filter.Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.specs[col]
}

// Snapshot returns a copy of the constrained columns.
func (s *FilterState) Snapshot() filter.Specs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.specs.Clone()
}

// Restore replaces the state with what store holds for this table. It
// reports whether anything was restored; when nothing is stored the state is
// left untouched.
func (s *FilterState) Restore(ctx context.Context, store persistence.Store) (bool, error) {
	specs, ok, err := store.Load(ctx, s.id)
	if err != nil {
		return false, fmt.Errorf("restoring filters of table %s: %w", s.id, err)
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	s.specs = specs.Clone()
	snapshot := s.specs.Clone()
	s.mu.Unlock()

	s.logger.Info("Restored filters", zap.Int("columns", len(snapshot)))
	event := newEvent(FiltersRestored, s.id)
	event.Specs = snapshot
	s.emit(event)
	return true, nil
}

// Retain drops every constrained column for which keep reports false and
// returns the dropped columns in ascending order.
func (s *FilterState) Retain(keep func(col int) bool) []int {
	s.mu.Lock()
	var dropped []int
	for _, col := range s.specs.Constrained() {
		if !keep(col) {
			delete(s.specs, col)
			dropped = append(dropped, col)
		}
	}
	s.mu.Unlock()

	for _, col := range dropped {
		s.logger.Debug("Column filter dropped", zap.Int("column", col))
	}
	return dropped
}

// Save writes the current state to store.
func (s *FilterState) Save(ctx context.Context, store persistence.Store) error {
	if err := store.Save(ctx, s.id, s.Snapshot()); err != nil {
		return fmt.Errorf("saving filters of table %s: %w", s.id, err)
	}
	return nil
}

// RegisterSubscription registers a callback for a state event and returns an
// id for UnregisterSubscription.
func (s *FilterState) RegisterSubscription(options RegisterSubscriptionOptions) string {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	unsubscribe := s.bus.Subscribe(string(options.Event), options.Callback)
	id := uuid.New().String()

	s.subscriptions[id] = &SubscriptionInfo{
		Id:          &id,
		Event:       options.Event,
		Unsubscribe: unsubscribe,
		Label:       options.Label,
		Description: options.Description,
	}
	return id
}

// UnregisterSubscription removes a subscription by id.
func (s *FilterState) UnregisterSubscription(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if info, ok := s.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(s.subscriptions, id)
	}
}

// Subscriptions lists the active subscriptions.
func (s *FilterState) Subscriptions() []SubscriptionInfo {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
