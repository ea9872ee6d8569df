//go:build !darwin
// +build !darwin

package clipboard

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"clipboard-registers/pkg/types"
)

// PortableClipboard is a text-only fallback for platforms without a
// native pasteboard binding. File references round-trip as file:// URI
// lines; HTML degrades to its plain-text rendering.
type PortableClipboard struct{}

// NewClipboard returns the platform clipboard implementation.
func NewClipboard() Clipboard {
	return &PortableClipboard{}
}

// Read returns the current clipboard content.
func (c *PortableClipboard) Read() (*types.ClipboardContent, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapter, err)
	}
	if text == "" {
		return nil, nil
	}

	if strings.HasPrefix(text, fileURIScheme) && !strings.ContainsAny(text, "\n") {
		return types.NewFileContent([]string{FileURIToPath(text)}), nil
	}

	return types.NewTextContent(text), nil
}

// Write replaces the clipboard content.
func (c *PortableClipboard) Write(content *types.ClipboardContent) error {
	var text string
	switch content.Type {
	case types.TypeText:
		text = content.Text
	case types.TypeHTML:
		text = content.Text
		if text == "" {
			text = content.HTML
		}
	case types.TypeFile:
		if len(content.FilePaths) == 0 {
			return fmt.Errorf("%w: file content has no paths", ErrAdapter)
		}
		text = PathToFileURI(content.FilePaths[0])
	default:
		return fmt.Errorf("%w: unknown content type %q", ErrAdapter, content.Type)
	}

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrAdapter, err)
	}
	return nil
}

// Clear empties the clipboard.
func (c *PortableClipboard) Clear() error {
	if err := clipboard.WriteAll(""); err != nil {
		return fmt.Errorf("%w: %v", ErrAdapter, err)
	}
	return nil
}

var _ Clipboard = (*PortableClipboard)(nil)
