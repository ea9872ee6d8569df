package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clipboard-registers/internal/clipboard"
	"clipboard-registers/internal/content"
	"clipboard-registers/internal/storage"
	"clipboard-registers/internal/validate"
	"clipboard-registers/pkg/types"
)

// Custom error type for better error handling
type RegisterError struct {
	Op       string // Operation that failed
	Register int    // Register involved (if applicable)
	Message  string // Error message
	Err      error  // Underlying error
}

func (e *RegisterError) Error() string {
	if e.Register > 0 {
		return fmt.Sprintf("%s failed for register %d: %s", e.Op, e.Register, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *RegisterError) Unwrap() error {
	return e.Err
}

// Result is the short status report every mutating operation returns;
// the presentation surfaces render it verbatim.
type Result struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// RegisterView is one register's slice of the display projection.
type RegisterView struct {
	ID       types.RegisterID        `json:"id"`
	Metadata *types.RegisterMetadata `json:"metadata"`
	IsActive bool                    `json:"isActive"`
}

// DisplayData is the read-only projection both presentation surfaces
// render. Building it performs no mutation and no clipboard I/O.
type DisplayData struct {
	ActiveRegister types.RegisterID `json:"activeRegister"`
	Registers      []RegisterView   `json:"registers"`
}

// RegisterService is the only component allowed to change which
// register is active, mutate live clipboard content, or write the
// persisted state. Exactly one instance exists per running process.
type RegisterService struct {
	clip    clipboard.Clipboard
	content *content.Store
	states  *storage.StateRepository
	logger  *zap.Logger
}

// New creates a new RegisterService
func New(clip clipboard.Clipboard, contentStore *content.Store, states *storage.StateRepository, logger *zap.Logger) *RegisterService {
	return &RegisterService{
		clip:    clip,
		content: contentStore,
		states:  states,
		logger:  logger,
	}
}

// InitializeIfNeeded performs the first-run capture: if the system has
// never been initialized, the current live clipboard (if non-empty)
// becomes register 1's content and register 1 becomes active.
// Subsequent calls are no-ops.
func (s *RegisterService) InitializeIfNeeded(ctx context.Context) (*Result, error) {
	state, err := s.states.Get(ctx)
	if err != nil {
		return nil, &RegisterError{Op: "InitializeIfNeeded", Message: "failed to load state", Err: err}
	}
	if state.Initialized {
		return nil, nil
	}

	current, err := s.clip.Read()
	if err != nil {
		// First-run capture is best-effort; an unreadable clipboard
		// initializes register 1 empty rather than blocking startup.
		s.logger.Warn("failed to read clipboard during initialization", zap.Error(err))
		current = nil
	}

	if !current.IsEmpty() {
		meta, saveErr := s.content.Save(current, 1)
		if saveErr != nil {
			return nil, &RegisterError{Op: "InitializeIfNeeded", Register: 1, Message: "failed to capture clipboard", Err: saveErr}
		}
		state.Registers[1] = meta
	}

	state.ActiveRegister = 1
	state.Initialized = true
	if err := s.states.Set(ctx, state); err != nil {
		return nil, &RegisterError{Op: "InitializeIfNeeded", Message: "failed to persist state", Err: err}
	}

	s.logger.Info("clipboard registers initialized")
	return &Result{
		Title:   "Clipboard Registers Initialized",
		Message: "Register 1 is now active with current clipboard content",
	}, nil
}

// Switch makes targetRegister the active register: the live clipboard
// is captured into the outgoing register, the target's stored content
// (if any) is loaded into the live clipboard, and the new active
// register is persisted. Switching to the active register is a no-op.
//
// Step ordering is load-bearing: the outgoing register's content must
// be durably saved before the live clipboard is overwritten and before
// the active register changes, or a crash in between loses it.
func (s *RegisterService) Switch(ctx context.Context, target int) (*Result, error) {
	targetRegister, err := validate.RegisterID(target)
	if err != nil {
		return nil, &RegisterError{Op: "Switch", Register: target, Message: "invalid target register", Err: err}
	}

	if _, err := s.InitializeIfNeeded(ctx); err != nil {
		return nil, err
	}

	state, err := s.states.Get(ctx)
	if err != nil {
		return nil, &RegisterError{Op: "Switch", Register: target, Message: "failed to load state", Err: err}
	}

	if state.ActiveRegister == targetRegister {
		return &Result{
			Title:   fmt.Sprintf("Register %d", targetRegister),
			Message: "Already active",
		}, nil
	}

	current, err := s.clip.Read()
	if err != nil {
		return nil, &RegisterError{Op: "Switch", Register: target, Message: "failed to read clipboard", Err: err}
	}

	// Save current clipboard content into the outgoing register before
	// anything overwrites the live clipboard.
	if !current.IsEmpty() {
		s.content.Remove(state.Registers[state.ActiveRegister])

		meta, saveErr := s.content.Save(current, state.ActiveRegister)
		if saveErr != nil {
			return nil, &RegisterError{Op: "Switch", Register: int(state.ActiveRegister), Message: "failed to save outgoing register", Err: saveErr}
		}
		state.Registers[state.ActiveRegister] = meta
	}

	// Load target register content into the live clipboard. A load
	// failure aborts the whole switch without touching persisted state,
	// so the user keeps the outgoing register's live content.
	var message string
	if targetMeta := state.Registers[targetRegister]; targetMeta != nil {
		loaded, loadErr := s.content.Load(targetMeta)
		if loadErr != nil {
			return nil, &RegisterError{Op: "Switch", Register: int(targetRegister), Message: "failed to load register content", Err: loadErr}
		}
		if writeErr := s.clip.Write(loaded); writeErr != nil {
			return nil, &RegisterError{Op: "Switch", Register: int(targetRegister), Message: "failed to write clipboard", Err: writeErr}
		}
		message = fmt.Sprintf("Loaded %s content from %s",
			targetMeta.ContentType,
			time.UnixMilli(targetMeta.Timestamp).Format("15:04:05"))
	} else {
		if clearErr := s.clip.Clear(); clearErr != nil {
			return nil, &RegisterError{Op: "Switch", Register: int(targetRegister), Message: "failed to clear clipboard", Err: clearErr}
		}
		message = "Register is empty - clipboard cleared"
	}

	state.ActiveRegister = targetRegister
	if err := s.states.Set(ctx, state); err != nil {
		return nil, &RegisterError{Op: "Switch", Register: int(targetRegister), Message: "failed to persist state", Err: err}
	}

	s.logger.Info("switched register",
		zap.Int("register", int(targetRegister)))

	return &Result{
		Title:   fmt.Sprintf("Switched to Register %d", targetRegister),
		Message: message,
	}, nil
}

// Copy loads the given register's stored content into the live
// clipboard without changing which register is active and without
// touching any other register.
func (s *RegisterService) Copy(ctx context.Context, id int) (*Result, error) {
	registerID, err := validate.RegisterID(id)
	if err != nil {
		return nil, &RegisterError{Op: "Copy", Register: id, Message: "invalid register", Err: err}
	}

	if _, err := s.InitializeIfNeeded(ctx); err != nil {
		return nil, err
	}

	state, err := s.states.Get(ctx)
	if err != nil {
		return nil, &RegisterError{Op: "Copy", Register: id, Message: "failed to load state", Err: err}
	}

	meta := state.Registers[registerID]
	if meta == nil {
		return nil, &RegisterError{
			Op:       "Copy",
			Register: id,
			Message:  "register is empty",
			Err:      fmt.Errorf("%w: register %d is empty", content.ErrContentLoadFailed, id),
		}
	}

	loaded, err := s.content.Load(meta)
	if err != nil {
		return nil, &RegisterError{Op: "Copy", Register: id, Message: "failed to load register content", Err: err}
	}
	if err := s.clip.Write(loaded); err != nil {
		return nil, &RegisterError{Op: "Copy", Register: id, Message: "failed to write clipboard", Err: err}
	}

	return &Result{
		Title:   fmt.Sprintf("Copied Register %d", registerID),
		Message: fmt.Sprintf("Clipboard now holds %s content", meta.ContentType),
	}, nil
}

// Clear empties the given register: its snapshot file is deleted
// best-effort and its metadata is removed from state. Clearing the
// active register also clears the live clipboard. The state update
// happens even when file deletion fails.
func (s *RegisterService) Clear(ctx context.Context, id int) (*Result, error) {
	registerID, err := validate.RegisterID(id)
	if err != nil {
		return nil, &RegisterError{Op: "Clear", Register: id, Message: "invalid register", Err: err}
	}

	if _, err := s.InitializeIfNeeded(ctx); err != nil {
		return nil, err
	}

	state, err := s.states.Get(ctx)
	if err != nil {
		return nil, &RegisterError{Op: "Clear", Register: id, Message: "failed to load state", Err: err}
	}

	s.content.Remove(state.Registers[registerID])
	state.Registers[registerID] = nil

	if state.ActiveRegister == registerID {
		if err := s.clip.Clear(); err != nil {
			s.logger.Warn("failed to clear live clipboard", zap.Int("register", id), zap.Error(err))
		}
	}

	if err := s.states.Set(ctx, state); err != nil {
		return nil, &RegisterError{Op: "Clear", Register: id, Message: "failed to persist state", Err: err}
	}

	return &Result{
		Title:   fmt.Sprintf("Cleared Register %d", registerID),
		Message: "Register is now empty",
	}, nil
}

// DisplayData returns the read-only projection of all four registers.
func (s *RegisterService) DisplayData(ctx context.Context) (*DisplayData, error) {
	state, err := s.states.Get(ctx)
	if err != nil {
		return nil, &RegisterError{Op: "DisplayData", Message: "failed to load state", Err: err}
	}

	data := &DisplayData{
		ActiveRegister: state.ActiveRegister,
		Registers:      make([]RegisterView, 0, types.RegisterCount),
	}
	for _, id := range types.RegisterIDs {
		data.Registers = append(data.Registers, RegisterView{
			ID:       id,
			Metadata: state.Registers[id],
			IsActive: id == state.ActiveRegister,
		})
	}
	return data, nil
}
