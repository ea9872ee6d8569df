//go:build darwin
// +build darwin

package clipboard

import (
	"fmt"
	"runtime"

	"github.com/progrium/darwinkit/macos/appkit"

	"clipboard-registers/pkg/types"
)

const (
	typeFileURL   = "public.file-url"
	typeHTML      = "public.html"
	typePlainText = "public.utf8-plain-text"
)

// DarwinClipboard talks to the general NSPasteboard.
type DarwinClipboard struct {
	pasteboard appkit.Pasteboard
}

func init() {
	// Ensure we're on the main thread for AppKit operations
	runtime.LockOSThread()
}

// NewClipboard returns the platform clipboard implementation.
func NewClipboard() Clipboard {
	runtime.LockOSThread()

	return &DarwinClipboard{
		pasteboard: appkit.Pasteboard_GeneralPasteboard(),
	}
}

// Read returns the current pasteboard content, preferring file
// references over HTML over plain text.
func (c *DarwinClipboard) Read() (*types.ClipboardContent, error) {
	if fileURL := c.pasteboard.StringForType(appkit.PasteboardType(typeFileURL)); fileURL != "" {
		return types.NewFileContent([]string{FileURIToPath(fileURL)}), nil
	}

	if html := c.pasteboard.StringForType(appkit.PasteboardType(typeHTML)); html != "" {
		text := c.pasteboard.StringForType(appkit.PasteboardType(typePlainText))
		return types.NewHTMLContent(html, text), nil
	}

	if text := c.pasteboard.StringForType(appkit.PasteboardType(typePlainText)); text != "" {
		return types.NewTextContent(text), nil
	}

	return nil, nil
}

// Write replaces the pasteboard content.
func (c *DarwinClipboard) Write(content *types.ClipboardContent) error {
	c.pasteboard.ClearContents()

	switch content.Type {
	case types.TypeText:
		if !c.pasteboard.SetStringForType(content.Text, appkit.PasteboardType(typePlainText)) {
			return fmt.Errorf("%w: failed to write text to pasteboard", ErrAdapter)
		}

	case types.TypeHTML:
		if !c.pasteboard.SetStringForType(content.HTML, appkit.PasteboardType(typeHTML)) {
			return fmt.Errorf("%w: failed to write html to pasteboard", ErrAdapter)
		}
		if content.Text != "" {
			if !c.pasteboard.SetStringForType(content.Text, appkit.PasteboardType(typePlainText)) {
				return fmt.Errorf("%w: failed to write text fallback to pasteboard", ErrAdapter)
			}
		}

	case types.TypeFile:
		if len(content.FilePaths) == 0 {
			return fmt.Errorf("%w: file content has no paths", ErrAdapter)
		}
		uri := PathToFileURI(content.FilePaths[0])
		if !c.pasteboard.SetStringForType(uri, appkit.PasteboardType(typeFileURL)) {
			return fmt.Errorf("%w: failed to write file reference to pasteboard", ErrAdapter)
		}

	default:
		return fmt.Errorf("%w: unknown content type %q", ErrAdapter, content.Type)
	}

	return nil
}

// Clear empties the pasteboard.
func (c *DarwinClipboard) Clear() error {
	c.pasteboard.ClearContents()
	return nil
}

var _ Clipboard = (*DarwinClipboard)(nil)
