// Package content persists clipboard snapshots as content-addressed
// files and reconstructs live-clipboard values from register metadata.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipboard-registers/internal/validate"
	"clipboard-registers/pkg/types"
)

const (
	// FilePermissions for snapshot files
	FilePermissions = 0600

	// DirPermissions for the content directory
	DirPermissions = 0700

	textExtension   = ".txt"
	recordExtension = ".json"
)

// Storage errors
var (
	ErrContentLoadFailed = errors.New("failed to load register content")
	ErrFileSystem        = errors.New("filesystem operation failed")
)

// htmlRecord is the structured on-disk form of an HTML snapshot.
type htmlRecord struct {
	HTML string `json:"html"`
	Text string `json:"text,omitempty"`
}

// Store reads and writes snapshot files under a single content directory.
type Store struct {
	basePath string
	logger   *zap.Logger
}

// New creates a content store rooted at basePath.
func New(basePath string, logger *zap.Logger) *Store {
	return &Store{basePath: basePath, logger: logger}
}

// BasePath returns the content directory.
func (s *Store) BasePath() string {
	return s.basePath
}

// ensureDir creates the content directory if it doesn't exist.
func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.basePath, DirPermissions); err != nil {
		return fmt.Errorf("%w: create content directory: %v", ErrFileSystem, err)
	}
	return nil
}

// Save validates content, writes it to a fresh content-addressed file
// and returns the metadata describing it. Exactly one file is created;
// the caller deletes any file it is replacing.
func (s *Store) Save(content *types.ClipboardContent, registerID types.RegisterID) (*types.RegisterMetadata, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	meta := &types.RegisterMetadata{
		RegisterID:  registerID,
		ContentType: content.Type,
		Timestamp:   time.Now().UnixMilli(),
	}
	id := uuid.NewString()

	switch content.Type {
	case types.TypeText:
		if err := validate.TextContent(content.Text); err != nil {
			return nil, err
		}
		meta.FileName = id + textExtension
		if err := s.writeFile(meta.FileName, []byte(content.Text)); err != nil {
			return nil, err
		}
		meta.TextPreview = validate.TextPreview(content.Text)

	case types.TypeHTML:
		if err := validate.HTMLContent(content.HTML, content.Text); err != nil {
			return nil, err
		}
		meta.FileName = id + recordExtension
		record, err := json.Marshal(htmlRecord{HTML: content.HTML, Text: content.Text})
		if err != nil {
			return nil, fmt.Errorf("encode html record: %w", err)
		}
		if err := s.writeFile(meta.FileName, record); err != nil {
			return nil, err
		}
		meta.TextPreview = validate.TextPreview(content.Text)

	case types.TypeFile:
		if err := validate.FilePaths(content.FilePaths); err != nil {
			return nil, err
		}
		meta.FileName = id + recordExtension
		record, err := json.Marshal(content.FilePaths)
		if err != nil {
			return nil, fmt.Errorf("encode file paths: %w", err)
		}
		if err := s.writeFile(meta.FileName, record); err != nil {
			return nil, err
		}
		meta.FilePaths = content.FilePaths
		meta.OriginalFileName = filepath.Base(content.FilePaths[0])
		meta.TextPreview = fmt.Sprintf("%d file(s)", len(content.FilePaths))

	default:
		_, err := validate.ContentType(string(content.Type))
		return nil, err
	}

	return meta, nil
}

func (s *Store) writeFile(fileName string, data []byte) error {
	path := filepath.Join(s.basePath, fileName)
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrFileSystem, fileName, err)
	}
	return nil
}

// Load reconstructs a live-clipboard value from stored metadata. The
// file name is system-generated but the metadata was loaded from disk,
// so it still passes through path sanitization before any I/O.
func (s *Store) Load(meta *types.RegisterMetadata) (*types.ClipboardContent, error) {
	path, err := validate.SanitizeFilePath(meta.FileName, s.basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: register %d: %v", ErrContentLoadFailed, meta.RegisterID, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: register %d: %v", ErrContentLoadFailed, meta.RegisterID, err)
	}

	switch meta.ContentType {
	case types.TypeText:
		return types.NewTextContent(string(data)), nil

	case types.TypeHTML:
		var record htmlRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("%w: register %d: malformed html record: %v", ErrContentLoadFailed, meta.RegisterID, err)
		}
		return types.NewHTMLContent(record.HTML, record.Text), nil

	case types.TypeFile:
		var paths []string
		if err := json.Unmarshal(data, &paths); err != nil {
			return nil, fmt.Errorf("%w: register %d: malformed path record: %v", ErrContentLoadFailed, meta.RegisterID, err)
		}
		if err := validate.FilePaths(paths); err != nil {
			return nil, fmt.Errorf("%w: register %d: %v", ErrContentLoadFailed, meta.RegisterID, err)
		}
		return types.NewFileContent(paths), nil
	}

	return nil, fmt.Errorf("%w: register %d: unknown content type %q", ErrContentLoadFailed, meta.RegisterID, meta.ContentType)
}

// Remove deletes the register's snapshot file. Deletion is not on the
// critical path; failures are logged and swallowed since a dangling
// file is a leak, not a correctness violation.
func (s *Store) Remove(meta *types.RegisterMetadata) {
	if meta == nil {
		return
	}

	path, err := validate.SanitizeFilePath(meta.FileName, s.basePath)
	if err != nil {
		s.logger.Warn("refusing to delete content file",
			zap.Int("register", int(meta.RegisterID)),
			zap.String("file", meta.FileName),
			zap.Error(err))
		return
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to delete content file",
			zap.Int("register", int(meta.RegisterID)),
			zap.String("file", meta.FileName),
			zap.Error(err))
	}
}

// SweepOrphans deletes content files no register references. Runs once
// at startup; inline cleanup failures at runtime rely on this sweep
// instead of retries.
func (s *Store) SweepOrphans(state *types.ClipboardState) int {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("orphan sweep skipped", zap.Error(err))
		}
		return 0
	}

	referenced := make(map[string]struct{}, types.RegisterCount)
	for _, meta := range state.Registers {
		if meta != nil {
			referenced[meta.FileName] = struct{}{}
		}
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := referenced[entry.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.basePath, entry.Name())); err != nil {
			s.logger.Warn("failed to remove orphaned file",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed orphaned content files", zap.Int("count", removed))
	}
	return removed
}
