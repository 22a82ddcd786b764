// Package checkpoint persists resumable pipeline progress as named JSON
// documents on disk. Writes are atomic (temp file + rename) so a crash
// mid-write never corrupts the previous checkpoint; reads of malformed
// documents fail soft and report "no checkpoint".
package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// schemaVersion is the current envelope version. Version 0 documents
// (no schema_version field) are still readable.
const schemaVersion = 1

// envelope is the on-disk document wrapper.
type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Timestamp     time.Time       `json:"timestamp"`
	Data          json.RawMessage `json:"data"`
}

// Store reads and writes checkpoints under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a checkpoint store rooted at dir, creating the
// directory if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:    dir,
		logger: logger.With("component", "checkpoint"),
		now:    time.Now,
	}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes the checkpoint atomically: the document lands in a temp
// file first and is renamed into place, so readers only ever observe a
// complete previous or complete new document.
func (s *Store) Save(name string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal checkpoint %q: %w", name, err)
	}
	doc, err := json.MarshalIndent(envelope{
		SchemaVersion: schemaVersion,
		Timestamp:     s.now().UTC(),
		Data:          raw,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal envelope %q: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write checkpoint %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close checkpoint %q: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit checkpoint %q: %w", name, err)
	}

	s.logger.Debug("checkpoint saved", "name", name, "bytes", len(doc))
	return nil
}

// Load reads the named checkpoint into target. It returns (false, nil)
// when the checkpoint is absent or unreadable: a damaged checkpoint
// degrades to a fresh start, never a crash.
func (s *Store) Load(name string, target any) (bool, error) {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read checkpoint %q: %w", name, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.logger.Warn("discarding malformed checkpoint", "name", name, "error", err)
		return false, nil
	}
	if env.SchemaVersion > schemaVersion {
		s.logger.Warn("discarding checkpoint from newer schema", "name", name, "schema_version", env.SchemaVersion)
		return false, nil
	}
	if len(env.Data) == 0 {
		s.logger.Warn("discarding checkpoint with no data", "name", name)
		return false, nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		s.logger.Warn("discarding undecodable checkpoint", "name", name, "error", err)
		return false, nil
	}
	return true, nil
}

// Timestamp returns when the named checkpoint was written.
func (s *Store) Timestamp(name string) (time.Time, bool) {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		return time.Time{}, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return time.Time{}, false
	}
	return env.Timestamp, true
}

// List returns the names of all checkpoints in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named checkpoint. Deleting an absent checkpoint
// is not an error.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete checkpoint %q: %w", name, err)
	}
	return nil
}
