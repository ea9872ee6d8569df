// Package validate is the trust boundary between untrusted data
// (persisted state, clipboard paths, stored blobs) and the in-memory
// model. Everything loaded from storage passes through here before any
// other component is allowed to use it.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"clipboard-registers/pkg/types"
)

const (
	// MaxContentSize caps the UTF-8 byte length of a stored snapshot.
	MaxContentSize = 1 * 1024 * 1024 // 1 MiB

	// TextPreviewLength is how many characters of text are kept as a
	// display preview in register metadata.
	TextPreviewLength = 100
)

// Validation errors
var (
	ErrInvalidRegisterID  = errors.New("invalid register id")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrPathTraversal      = errors.New("file path outside allowed directory")
	ErrContentTooLarge    = errors.New("content exceeds maximum size")
	ErrInvalidShape       = errors.New("invalid content shape")
	ErrInvalidState       = errors.New("invalid clipboard state")
)

// RegisterID checks that v names one of the four registers.
func RegisterID(v int) (types.RegisterID, error) {
	id := types.RegisterID(v)
	for _, valid := range types.RegisterIDs {
		if id == valid {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %d (must be one of: %s)", ErrInvalidRegisterID, v, registerIDList())
}

func registerIDList() string {
	parts := make([]string, 0, len(types.RegisterIDs))
	for _, id := range types.RegisterIDs {
		parts = append(parts, strconv.Itoa(int(id)))
	}
	return strings.Join(parts, ", ")
}

// ContentType checks that v is one of the supported payload types.
func ContentType(v string) (types.ContentType, error) {
	switch t := types.ContentType(v); t {
	case types.TypeText, types.TypeHTML, types.TypeFile:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q (must be one of: %s, %s, %s)",
		ErrInvalidContentType, v, types.TypeText, types.TypeHTML, types.TypeFile)
}

// SanitizeFilePath normalizes path, resolves it against basePath and
// fails unless the result is a descendant of basePath. Any path that
// originates from persisted metadata must pass through here before it
// is used for file I/O.
func SanitizeFilePath(path, basePath string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: file path must be a non-empty string", ErrInvalidShape)
	}

	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("resolve base path %s: %w", basePath, err)
	}
	absBase = filepath.Clean(absBase)

	resolved := filepath.Clean(path)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(absBase, resolved)
	}

	rel, err := filepath.Rel(absBase, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, path)
	}

	return resolved, nil
}

// TextContent checks a plain-text payload against MaxContentSize.
func TextContent(text string) error {
	if size := len(text); size > MaxContentSize {
		return fmt.Errorf("%w: text is %d bytes (max: %d)", ErrContentTooLarge, size, MaxContentSize)
	}
	return nil
}

// HTMLContent checks the combined size of an HTML payload and its
// optional plain-text rendering.
func HTMLContent(html, text string) error {
	if size := len(html) + len(text); size > MaxContentSize {
		return fmt.Errorf("%w: html content is %d bytes (max: %d)", ErrContentTooLarge, size, MaxContentSize)
	}
	return nil
}

// FilePaths checks that paths is a non-empty list of non-empty strings.
func FilePaths(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: file paths must be a non-empty list", ErrInvalidShape)
	}
	for i, p := range paths {
		if p == "" {
			return fmt.Errorf("%w: file path at index %d is empty", ErrInvalidShape, i)
		}
	}
	return nil
}

// TextPreview truncates text to TextPreviewLength characters for
// display metadata. Truncation happens on rune boundaries so a
// multibyte character is never torn; the preview is persisted and a
// torn byte sequence would not survive JSON encoding intact.
func TextPreview(text string) string {
	runes := []rune(text)
	if len(runes) <= TextPreviewLength {
		return text
	}
	return string(runes[:TextPreviewLength])
}

// statePayload mirrors the persisted state record with loose typing so
// each field can be checked individually.
type statePayload struct {
	ActiveRegister json.RawMessage            `json:"activeRegister"`
	Initialized    json.RawMessage            `json:"initialized"`
	Registers      map[string]json.RawMessage `json:"registers"`
}

// metadataPayload mirrors a persisted register record.
type metadataPayload struct {
	RegisterID       int      `json:"registerId"`
	ContentType      string   `json:"contentType"`
	FileName         string   `json:"fileName"`
	Timestamp        int64    `json:"timestamp"`
	OriginalFileName string   `json:"originalFileName"`
	FilePaths        []string `json:"filePaths"`
	TextPreview      string   `json:"textPreview"`
}

// ClipboardState structurally validates a persisted state blob and
// converts it into the in-memory model. Any violation names the
// offending field. This runs on every load from storage; nothing else
// in the system is allowed to cast stored bytes into ClipboardState.
func ClipboardState(raw []byte) (*types.ClipboardState, error) {
	var payload statePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: not a state object: %v", ErrInvalidState, err)
	}

	if len(payload.ActiveRegister) == 0 {
		return nil, fmt.Errorf("%w: missing activeRegister", ErrInvalidState)
	}
	var activeValue int
	if err := json.Unmarshal(payload.ActiveRegister, &activeValue); err != nil {
		return nil, fmt.Errorf("%w: activeRegister is not a number", ErrInvalidState)
	}
	active, err := RegisterID(activeValue)
	if err != nil {
		return nil, fmt.Errorf("%w: activeRegister: %v", ErrInvalidState, err)
	}

	if len(payload.Initialized) == 0 {
		return nil, fmt.Errorf("%w: missing initialized", ErrInvalidState)
	}
	var initialized bool
	if err := json.Unmarshal(payload.Initialized, &initialized); err != nil {
		return nil, fmt.Errorf("%w: initialized must be a boolean", ErrInvalidState)
	}

	if payload.Registers == nil {
		return nil, fmt.Errorf("%w: missing registers", ErrInvalidState)
	}

	state := &types.ClipboardState{
		ActiveRegister: active,
		Initialized:    initialized,
		Registers:      make(map[types.RegisterID]*types.RegisterMetadata, types.RegisterCount),
	}

	for _, id := range types.RegisterIDs {
		key := strconv.Itoa(int(id))
		rawMeta, ok := payload.Registers[key]
		if !ok {
			return nil, fmt.Errorf("%w: registers missing key %s", ErrInvalidState, key)
		}
		meta, err := registerMetadata(rawMeta, id)
		if err != nil {
			return nil, err
		}
		state.Registers[id] = meta
	}

	return state, nil
}

func registerMetadata(raw json.RawMessage, id types.RegisterID) (*types.RegisterMetadata, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var payload metadataPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: register %d metadata: %v", ErrInvalidState, id, err)
	}

	contentType, err := ContentType(payload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: register %d contentType: %v", ErrInvalidState, id, err)
	}
	if payload.FileName == "" {
		return nil, fmt.Errorf("%w: register %d fileName must be a non-empty string", ErrInvalidState, id)
	}
	if payload.Timestamp <= 0 {
		return nil, fmt.Errorf("%w: register %d timestamp must be a positive number", ErrInvalidState, id)
	}

	return &types.RegisterMetadata{
		RegisterID:       id,
		ContentType:      contentType,
		FileName:         payload.FileName,
		Timestamp:        payload.Timestamp,
		OriginalFileName: payload.OriginalFileName,
		FilePaths:        payload.FilePaths,
		TextPreview:      payload.TextPreview,
	}, nil
}
