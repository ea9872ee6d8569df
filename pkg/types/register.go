package types

// RegisterID identifies one of the four clipboard registers.
type RegisterID int

// RegisterIDs lists every valid register, in display order.
var RegisterIDs = []RegisterID{1, 2, 3, 4}

// RegisterCount is the fixed number of registers.
const RegisterCount = 4

// ContentType describes the shape of a clipboard payload.
type ContentType string

const (
	TypeText ContentType = "text"
	TypeHTML ContentType = "html"
	TypeFile ContentType = "file"
)

// ClipboardContent is a snapshot read from (or written to) the live
// clipboard. Exactly one variant is populated, selected by Type:
// text -> Text, html -> HTML (+ optional Text), file -> FilePaths.
type ClipboardContent struct {
	Type      ContentType
	Text      string
	HTML      string
	FilePaths []string
}

// NewTextContent builds a plain-text snapshot.
func NewTextContent(text string) *ClipboardContent {
	return &ClipboardContent{Type: TypeText, Text: text}
}

// NewHTMLContent builds an HTML snapshot with its optional plain-text rendering.
func NewHTMLContent(html, text string) *ClipboardContent {
	return &ClipboardContent{Type: TypeHTML, HTML: html, Text: text}
}

// NewFileContent builds a file-reference snapshot from plain filesystem paths.
func NewFileContent(paths []string) *ClipboardContent {
	return &ClipboardContent{Type: TypeFile, FilePaths: paths}
}

// IsEmpty reports whether the snapshot carries no payload for its type.
func (c *ClipboardContent) IsEmpty() bool {
	if c == nil {
		return true
	}
	switch c.Type {
	case TypeText:
		return c.Text == ""
	case TypeHTML:
		return c.HTML == ""
	case TypeFile:
		return len(c.FilePaths) == 0
	}
	return true
}

// RegisterMetadata is the persisted record for one non-empty register.
// FileName is the authoritative pointer to the snapshot on disk; the
// remaining optional fields are denormalized copies kept for display
// and must never drive switching logic.
type RegisterMetadata struct {
	RegisterID       RegisterID  `json:"registerId"`
	ContentType      ContentType `json:"contentType"`
	FileName         string      `json:"fileName"`
	Timestamp        int64       `json:"timestamp"` // epoch millis
	OriginalFileName string      `json:"originalFileName,omitempty"`
	FilePaths        []string    `json:"filePaths,omitempty"`
	TextPreview      string      `json:"textPreview,omitempty"`
}

// ClipboardState is the singleton durable record: which register is
// active, whether first-run initialization has happened, and each
// register's metadata (nil = empty).
type ClipboardState struct {
	ActiveRegister RegisterID                       `json:"activeRegister"`
	Initialized    bool                             `json:"initialized"`
	Registers      map[RegisterID]*RegisterMetadata `json:"registers"`
}

// DefaultState returns the lazily-created first-use state: all four
// registers empty, register 1 active, initialization pending.
func DefaultState() *ClipboardState {
	registers := make(map[RegisterID]*RegisterMetadata, RegisterCount)
	for _, id := range RegisterIDs {
		registers[id] = nil
	}
	return &ClipboardState{
		ActiveRegister: 1,
		Initialized:    false,
		Registers:      registers,
	}
}
