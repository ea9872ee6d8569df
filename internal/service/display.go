package service

import (
	"fmt"
	"path/filepath"
	"time"

	"clipboard-registers/pkg/types"
)

// RelativeTime renders a register timestamp (epoch millis) as a short
// age string for display.
func RelativeTime(timestampMillis int64, now time.Time) string {
	diff := now.Sub(time.UnixMilli(timestampMillis))

	minutes := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%d minute%s ago", minutes, plural(minutes))
	case hours < 24:
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case days < 7:
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return time.UnixMilli(timestampMillis).Format("2006-01-02")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// TruncateText shortens text to maxLength characters with an ellipsis,
// cutting on rune boundaries.
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

// ContentPreview returns the one-line preview a surface shows for a
// register. Works entirely from denormalized display fields.
func ContentPreview(meta *types.RegisterMetadata) string {
	if meta == nil {
		return "Empty register"
	}

	switch meta.ContentType {
	case types.TypeText, types.TypeHTML:
		if meta.TextPreview != "" {
			return TruncateText(meta.TextPreview, 50)
		}
		return "No preview available"
	case types.TypeFile:
		if meta.OriginalFileName != "" {
			return meta.OriginalFileName
		}
		if len(meta.FilePaths) > 0 {
			name := filepath.Base(meta.FilePaths[0])
			if len(meta.FilePaths) > 1 {
				return fmt.Sprintf("%s (+%d more)", name, len(meta.FilePaths)-1)
			}
			return name
		}
		return "File content"
	}
	return "Unknown content"
}
