package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"clipboard-registers/internal/validate"
	"clipboard-registers/pkg/types"
)

// StateKey is the single key holding the serialized register state.
const StateKey = "clipboard-registers-state"

// StateRepository persists the singleton ClipboardState through a
// KVStore. Every load runs the full structural validator; a blob that
// fails to parse or validate is discarded with a logged warning and
// replaced by the default state. Losing slot metadata is recoverable
// (the live clipboard is always re-read), refusing to start is not.
type StateRepository struct {
	kv     KVStore
	logger *zap.Logger
}

// NewStateRepository creates a repository over the given key-value store.
func NewStateRepository(kv KVStore, logger *zap.Logger) *StateRepository {
	return &StateRepository{kv: kv, logger: logger}
}

// Get returns the persisted state, or the default state when nothing
// has been stored yet. The default is not written back; first-use
// state is created lazily by the first Set.
func (r *StateRepository) Get(ctx context.Context) (*types.ClipboardState, error) {
	raw, ok, err := r.kv.GetItem(ctx, StateKey)
	if err != nil {
		return nil, fmt.Errorf("read state record: %w", err)
	}
	if !ok {
		return types.DefaultState(), nil
	}

	state, err := validate.ClipboardState([]byte(raw))
	if err != nil {
		r.logger.Warn("discarding corrupt clipboard state, falling back to defaults",
			zap.Error(err))
		return types.DefaultState(), nil
	}
	return state, nil
}

// Set serializes state and overwrites the single state record.
func (r *StateRepository) Set(ctx context.Context, state *types.ClipboardState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state record: %w", err)
	}
	if err := r.kv.SetItem(ctx, StateKey, string(raw)); err != nil {
		return fmt.Errorf("write state record: %w", err)
	}
	return nil
}
