package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"clipboard-registers/internal/content"
	"clipboard-registers/internal/storage"
	"clipboard-registers/internal/validate"
	"clipboard-registers/pkg/types"
)

// fakeClipboard is an in-memory clipboard adapter.
type fakeClipboard struct {
	content   *types.ClipboardContent
	failRead  bool
	failWrite bool
}

func (f *fakeClipboard) Read() (*types.ClipboardContent, error) {
	if f.failRead {
		return nil, errors.New("pasteboard unavailable")
	}
	return f.content, nil
}

func (f *fakeClipboard) Write(c *types.ClipboardContent) error {
	if f.failWrite {
		return errors.New("pasteboard unavailable")
	}
	f.content = c
	return nil
}

func (f *fakeClipboard) Clear() error {
	f.content = nil
	return nil
}

// memKV is an in-memory key-value store.
type memKV struct {
	items  map[string]string
	writes int
}

func newMemKV() *memKV {
	return &memKV{items: make(map[string]string)}
}

func (m *memKV) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memKV) SetItem(ctx context.Context, key string, value string) error {
	m.items[key] = value
	m.writes++
	return nil
}

type fixture struct {
	svc    *RegisterService
	clip   *fakeClipboard
	kv     *memKV
	states *storage.StateRepository
	store  *content.Store
}

func setupService(t *testing.T) *fixture {
	t.Helper()

	clip := &fakeClipboard{}
	kv := newMemKV()
	states := storage.NewStateRepository(kv, zap.NewNop())
	store := content.New(filepath.Join(t.TempDir(), "content"), zap.NewNop())

	return &fixture{
		svc:    New(clip, store, states, zap.NewNop()),
		clip:   clip,
		kv:     kv,
		states: states,
		store:  store,
	}
}

func mustState(t *testing.T, f *fixture) *types.ClipboardState {
	t.Helper()
	state, err := f.states.Get(context.Background())
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	return state
}

func TestInitializeCapturesClipboard(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	result, err := f.svc.InitializeIfNeeded(ctx)
	if err != nil {
		t.Fatalf("initialization failed: %v", err)
	}
	if result == nil {
		t.Fatal("first initialization should report a result")
	}

	state := mustState(t, f)
	if !state.Initialized {
		t.Error("state should be initialized")
	}
	if state.ActiveRegister != 1 {
		t.Errorf("activeRegister = %d, want 1", state.ActiveRegister)
	}
	meta := state.Registers[1]
	if meta == nil || meta.TextPreview != "hello" {
		t.Errorf("register 1 should hold the captured clipboard, got %+v", meta)
	}

	// Second call is a no-op
	result, err = f.svc.InitializeIfNeeded(ctx)
	if err != nil {
		t.Fatalf("repeat initialization failed: %v", err)
	}
	if result != nil {
		t.Error("repeat initialization should be silent")
	}
}

func TestInitializeWithEmptyClipboard(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if _, err := f.svc.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("initialization failed: %v", err)
	}

	state := mustState(t, f)
	if !state.Initialized || state.Registers[1] != nil {
		t.Errorf("empty clipboard should initialize register 1 empty, got %+v", state.Registers[1])
	}
}

func TestSwitchToActiveRegisterIsNoOp(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	if _, err := f.svc.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("initialization failed: %v", err)
	}
	stateBefore := f.kv.items[storage.StateKey]
	writesBefore := f.kv.writes

	result, err := f.svc.Switch(ctx, 1)
	if err != nil {
		t.Fatalf("switch to active register failed: %v", err)
	}
	if result.Message != "Already active" {
		t.Errorf("message = %q, want \"Already active\"", result.Message)
	}
	if f.kv.writes != writesBefore {
		t.Error("no-op switch must not write state")
	}
	if f.kv.items[storage.StateKey] != stateBefore {
		t.Error("no-op switch must leave state byte-identical")
	}
	if f.clip.content == nil || f.clip.content.Text != "hello" {
		t.Errorf("no-op switch must leave the clipboard alone, got %+v", f.clip.content)
	}
}

func TestSwitchToEmptyRegisterAndBack(t *testing.T) {
	// Registers 2-4 empty, active=1 holds "hello".
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	result, err := f.svc.Switch(ctx, 2)
	if err != nil {
		t.Fatalf("switch to 2 failed: %v", err)
	}
	if result.Message != "Register is empty - clipboard cleared" {
		t.Errorf("message = %q", result.Message)
	}
	if f.clip.content != nil {
		t.Errorf("clipboard should be cleared, got %+v", f.clip.content)
	}

	state := mustState(t, f)
	if state.ActiveRegister != 2 {
		t.Errorf("activeRegister = %d, want 2", state.ActiveRegister)
	}
	if meta := state.Registers[1]; meta == nil || meta.TextPreview != "hello" {
		t.Errorf("register 1 should hold %q, got %+v", "hello", meta)
	}

	// Switching back restores the live clipboard.
	if _, err := f.svc.Switch(ctx, 1); err != nil {
		t.Fatalf("switch back failed: %v", err)
	}
	if f.clip.content == nil || f.clip.content.Text != "hello" {
		t.Errorf("clipboard = %+v, want restored %q", f.clip.content, "hello")
	}
	state = mustState(t, f)
	if state.ActiveRegister != 1 {
		t.Errorf("activeRegister = %d, want 1", state.ActiveRegister)
	}
	if state.Registers[2] != nil {
		t.Errorf("register 2 should still be empty, got %+v", state.Registers[2])
	}
}

func TestSwitchRoundTripPreservesContent(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	if _, err := f.svc.Switch(ctx, 2); err != nil {
		t.Fatalf("switch to 2 failed: %v", err)
	}

	// User copies something new while register 2 is active.
	f.clip.content = types.NewTextContent("world")

	if _, err := f.svc.Switch(ctx, 1); err != nil {
		t.Fatalf("switch back to 1 failed: %v", err)
	}
	if f.clip.content.Text != "hello" {
		t.Errorf("clipboard = %q, want %q", f.clip.content.Text, "hello")
	}

	state := mustState(t, f)
	if meta := state.Registers[2]; meta == nil || meta.TextPreview != "world" {
		t.Errorf("register 2 should hold %q, got %+v", "world", meta)
	}

	if _, err := f.svc.Switch(ctx, 2); err != nil {
		t.Fatalf("switch to 2 again failed: %v", err)
	}
	if f.clip.content.Text != "world" {
		t.Errorf("clipboard = %q, want %q", f.clip.content.Text, "world")
	}
}

func TestSwitchReplacesOutgoingSnapshot(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("first")
	ctx := context.Background()

	if _, err := f.svc.Switch(ctx, 2); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	firstFile := mustState(t, f).Registers[1].FileName

	f.clip.content = types.NewTextContent("replacement")
	if _, err := f.svc.Switch(ctx, 1); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	f.clip.content = types.NewTextContent("second")
	if _, err := f.svc.Switch(ctx, 2); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	state := mustState(t, f)
	secondFile := state.Registers[1].FileName
	if secondFile == firstFile {
		t.Error("replacing register content should write a fresh file")
	}
	if _, err := os.Stat(filepath.Join(f.store.BasePath(), firstFile)); !os.IsNotExist(err) {
		t.Error("replaced snapshot file should be deleted")
	}
}

func TestCopyDoesNotChangeActiveRegister(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	if _, err := f.svc.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("initialization failed: %v", err)
	}

	// Plant file content in register 3.
	state := mustState(t, f)
	meta, err := f.store.Save(types.NewFileContent([]string{"/Users/x/report.pdf"}), 3)
	if err != nil {
		t.Fatalf("failed to plant register 3: %v", err)
	}
	state.Registers[3] = meta
	if err := f.states.Set(ctx, state); err != nil {
		t.Fatalf("failed to store state: %v", err)
	}
	register1File := state.Registers[1].FileName
	register1Body, err := os.ReadFile(filepath.Join(f.store.BasePath(), register1File))
	if err != nil {
		t.Fatalf("failed to read register 1 snapshot: %v", err)
	}

	if _, err := f.svc.Copy(ctx, 3); err != nil {
		t.Fatalf("copy failed: %v", err)
	}

	if f.clip.content == nil || f.clip.content.Type != types.TypeFile || f.clip.content.FilePaths[0] != "/Users/x/report.pdf" {
		t.Errorf("clipboard should reference report.pdf, got %+v", f.clip.content)
	}
	state = mustState(t, f)
	if state.ActiveRegister != 1 {
		t.Errorf("activeRegister = %d, want unchanged 1", state.ActiveRegister)
	}
	body, err := os.ReadFile(filepath.Join(f.store.BasePath(), register1File))
	if err != nil {
		t.Fatalf("register 1 snapshot should still exist: %v", err)
	}
	if string(body) != string(register1Body) {
		t.Error("register 1 content on disk should be unchanged")
	}
}

func TestCopyEmptyRegisterFails(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.Copy(ctx, 2)
	if !errors.Is(err, content.ErrContentLoadFailed) {
		t.Errorf("copying an empty register should fail with ErrContentLoadFailed, got %v", err)
	}
}

func TestClearActiveRegister(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	if _, err := f.svc.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("initialization failed: %v", err)
	}
	fileName := mustState(t, f).Registers[1].FileName

	if _, err := f.svc.Clear(ctx, 1); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	state := mustState(t, f)
	if state.Registers[1] != nil {
		t.Errorf("register 1 should be empty, got %+v", state.Registers[1])
	}
	if f.clip.content != nil {
		t.Errorf("clearing the active register should clear the clipboard, got %+v", f.clip.content)
	}
	if _, err := os.Stat(filepath.Join(f.store.BasePath(), fileName)); !os.IsNotExist(err) {
		t.Error("snapshot file should be deleted")
	}
}

func TestClearInactiveRegisterKeepsClipboard(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	if _, err := f.svc.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("initialization failed: %v", err)
	}

	state := mustState(t, f)
	meta, err := f.store.Save(types.NewTextContent("other"), 2)
	if err != nil {
		t.Fatalf("failed to plant register 2: %v", err)
	}
	state.Registers[2] = meta
	if err := f.states.Set(ctx, state); err != nil {
		t.Fatalf("failed to store state: %v", err)
	}

	if _, err := f.svc.Clear(ctx, 2); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if f.clip.content == nil || f.clip.content.Text != "hello" {
		t.Errorf("clearing an inactive register must not touch the clipboard, got %+v", f.clip.content)
	}
	if mustState(t, f).Registers[2] != nil {
		t.Error("register 2 should be empty")
	}
}

func TestSwitchAbortsWhenTargetLoadFails(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	if _, err := f.svc.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("initialization failed: %v", err)
	}

	// Register 2 claims a snapshot that does not exist.
	state := mustState(t, f)
	state.Registers[2] = &types.RegisterMetadata{
		RegisterID:  2,
		ContentType: types.TypeText,
		FileName:    "vanished.txt",
		Timestamp:   1,
	}
	if err := f.states.Set(ctx, state); err != nil {
		t.Fatalf("failed to store state: %v", err)
	}

	_, err := f.svc.Switch(ctx, 2)
	if !errors.Is(err, content.ErrContentLoadFailed) {
		t.Fatalf("switch should fail with ErrContentLoadFailed, got %v", err)
	}

	// The switch aborted without moving the active register, and the
	// user keeps their live clipboard content.
	if mustState(t, f).ActiveRegister != 1 {
		t.Errorf("activeRegister = %d, want 1 after aborted switch", mustState(t, f).ActiveRegister)
	}
	if f.clip.content == nil || f.clip.content.Text != "hello" {
		t.Errorf("clipboard should be untouched, got %+v", f.clip.content)
	}
}

func TestOperationsRejectInvalidRegister(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if _, err := f.svc.Switch(ctx, 5); !errors.Is(err, validate.ErrInvalidRegisterID) {
		t.Errorf("Switch(5) should fail with ErrInvalidRegisterID, got %v", err)
	}
	if _, err := f.svc.Copy(ctx, 0); !errors.Is(err, validate.ErrInvalidRegisterID) {
		t.Errorf("Copy(0) should fail with ErrInvalidRegisterID, got %v", err)
	}
	if _, err := f.svc.Clear(ctx, -1); !errors.Is(err, validate.ErrInvalidRegisterID) {
		t.Errorf("Clear(-1) should fail with ErrInvalidRegisterID, got %v", err)
	}
}

func TestDisplayData(t *testing.T) {
	f := setupService(t)
	f.clip.content = types.NewTextContent("hello")
	ctx := context.Background()

	if _, err := f.svc.InitializeIfNeeded(ctx); err != nil {
		t.Fatalf("initialization failed: %v", err)
	}

	data, err := f.svc.DisplayData(ctx)
	if err != nil {
		t.Fatalf("failed to get display data: %v", err)
	}

	if len(data.Registers) != types.RegisterCount {
		t.Fatalf("expected %d registers, got %d", types.RegisterCount, len(data.Registers))
	}
	for i, view := range data.Registers {
		if int(view.ID) != i+1 {
			t.Errorf("register at position %d has id %d", i, view.ID)
		}
		if view.IsActive != (view.ID == 1) {
			t.Errorf("register %d IsActive = %t", view.ID, view.IsActive)
		}
	}
	if data.Registers[0].Metadata == nil {
		t.Error("register 1 should carry metadata")
	}
}
