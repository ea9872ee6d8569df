// Package clipboard provides access to the live system clipboard.
// Build constraints select the implementation: macOS talks to the
// general NSPasteboard, everything else uses a portable text backend.
package clipboard

import (
	"errors"

	"clipboard-registers/pkg/types"
)

// ErrAdapter wraps faults reported by the platform clipboard.
var ErrAdapter = errors.New("clipboard adapter error")

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	// Read returns the current clipboard content, or (nil, nil) when
	// the clipboard is empty. When the clipboard exposes several
	// representations at once, a file reference wins over HTML, which
	// wins over plain text.
	Read() (*types.ClipboardContent, error)

	// Write replaces the clipboard with the given content.
	Write(content *types.ClipboardContent) error

	// Clear empties the clipboard.
	Clear() error
}
