package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/stocktracker/internal/contracts"
)

// Encode renders records as the artifact bytes: two-space indent, no HTML
// escaping, trailing newline. Equal input always yields equal bytes.
func Encode(records []contracts.StockRecord) ([]byte, error) {
	if records == nil {
		records = []contracts.StockRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}

// Store owns the artifact file
// ⭐ SSOT: 아티팩트 파일 쓰기는 이 Store에서만
type Store struct {
	path string
}

// NewStore creates a store for the artifact at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact location
func (s *Store) Path() string {
	return s.path
}

// Write replaces the artifact atomically: the bytes go to a temp file in the
// same directory which is then renamed over the target. Readers see either
// the old file or the new one, never a partial write.
func (s *Store) Write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

// Read loads and validates the current artifact
func (s *Store) Read() ([]contracts.StockRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return Parse(data)
}
