// Package source loads statistics datasets from CSV and XLSX sources.
package source

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/statboard/internal/domain/model"
)

// zipMagic prefixes every XLSX (zip) file.
var zipMagic = []byte("PK\x03\x04")

// Source is either a filesystem path or uploaded content. Content wins when
// both are set.
type Source struct {
	Name    string
	Path    string
	Content []byte
}

// FromPath returns a Source that reads path.
func FromPath(path string) Source {
	return Source{Name: filepath.Base(path), Path: path}
}

// FromContent returns a Source over uploaded bytes.
func FromContent(name string, content []byte) Source {
	return Source{Name: name, Content: content}
}

// Absent reports whether the source names nothing to read.
func (s Source) Absent() bool {
	return len(s.Content) == 0 && strings.TrimSpace(s.Path) == ""
}

// Kind guesses the encoding from the file name, then the content.
func (s Source) Kind() model.SourceKind {
	name := s.Name
	if name == "" {
		name = s.Path
	}
	if strings.EqualFold(filepath.Ext(name), ".xlsx") || bytes.HasPrefix(s.Content, zipMagic) {
		return model.SourceXLSX
	}
	return model.SourceCSV
}

// Identity names the source's current content. Uploaded content is identified
// by its SHA-256; files by path, size and modification time.
func (s Source) Identity() (string, error) {
	if len(s.Content) > 0 {
		sum := sha256.Sum256(s.Content)
		return "sha256:" + hex.EncodeToString(sum[:]), nil
	}
	if strings.TrimSpace(s.Path) == "" {
		return "", ErrNoSource
	}
	fi, err := os.Stat(s.Path)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	return fmt.Sprintf("file:%s|%d|%d", s.Path, fi.Size(), fi.ModTime().UnixNano()), nil
}

func (s Source) read() ([]byte, error) {
	if len(s.Content) > 0 {
		return s.Content, nil
	}
	if strings.TrimSpace(s.Path) == "" {
		return nil, ErrNoSource
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return b, nil
}
