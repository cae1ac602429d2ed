package planner

import (
	"context"
	"fmt"
)

// StateKey is the fixed record name the plan state is stored under.
const StateKey = "mealPlanState"

// Persister loads and saves the plan state.
type Persister interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// RecordStore is a named-record store. Get returns (nil, nil) when the
// record does not exist.
type RecordStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// RecordPersister stores the encoded state as a single record under StateKey.
type RecordPersister struct {
	records RecordStore
	key     string
}

// NewRecordPersister creates a Persister on top of a RecordStore.
func NewRecordPersister(records RecordStore) *RecordPersister {
	return &RecordPersister{records: records, key: StateKey}
}

// Load reads the stored state. A missing record yields the default state;
// a malformed one is decoded leniently. Only store failures are returned.
func (p *RecordPersister) Load(ctx context.Context) (State, error) {
	data, err := p.records.Get(ctx, p.key)
	if err != nil {
		return NewState(), fmt.Errorf("failed to read %s: %w", p.key, err)
	}
	if data == nil {
		return NewState(), nil
	}
	return DecodeState(data), nil
}

// Save writes the encoded state.
func (p *RecordPersister) Save(ctx context.Context, s State) error {
	data, err := EncodeState(s)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", p.key, err)
	}
	if err := p.records.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.key, err)
	}
	return nil
}
