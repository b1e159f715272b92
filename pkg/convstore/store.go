// Package convstore persists conversation transcripts, one JSON file per
// call identifier.
package convstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged utterance in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store persists ordered turn lists keyed by call identifier. Writes are
// atomic (temp file + rename) and serialized by a mutex.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Call identifiers become file names; restrict them accordingly.
var validCallID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversations dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the full ordered transcript for callID, replacing any
// previous record.
func (s *Store) Save(callID string, turns []Turn) error {
	path, err := s.path(callID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if turns == nil {
		turns = []Turn{}
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write conversation: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit conversation: %w", err)
	}
	return nil
}

// Load returns the ordered transcript for callID.
func (s *Store) Load(callID string) ([]Turn, error) {
	path, err := s.path(callID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read conversation %s: %w", callID, err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parse conversation %s: %w", callID, err)
	}
	return turns, nil
}

// Exists reports whether a transcript has been saved for callID.
func (s *Store) Exists(callID string) bool {
	path, err := s.path(callID)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Delete removes the transcript for callID, if any.
func (s *Store) Delete(callID string) error {
	path, err := s.path(callID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete conversation %s: %w", callID, err)
	}
	return nil
}

func (s *Store) path(callID string) (string, error) {
	if !validCallID.MatchString(callID) {
		return "", fmt.Errorf("invalid call id %q", callID)
	}
	return filepath.Join(s.dir, callID+".json"), nil
}
