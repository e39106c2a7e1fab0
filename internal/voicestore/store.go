// Package voicestore resolves voice reference audio by content hash.
//
// The store directory is externally populated by the coordinator over SFTP
// and is read-only to the worker.
package voicestore

import (
	"os"
	"path/filepath"
)

// Store looks up voice reference files under a single directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory does not need to exist.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Resolve maps a content hash to its reference audio path. It reports false
// when the hash is empty or no file exists; a missing reference is graceful
// degradation for the caller, never an error.
func (s *Store) Resolve(hash string) (string, bool) {
	if hash == "" {
		return "", false
	}

	path := filepath.Join(s.dir, hash+".wav")
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}

	return path, true
}
