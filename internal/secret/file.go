package secret

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps each secret in its own file under a directory,
// mode 0600. Suitable for single-user server deployments.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is
// created on first Set, not here, so a read-only setup stays cheap.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Set writes the secret to <dir>/<key>, creating the directory if needed.
func (f *FileStore) Set(key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("secret dir: %w", err)
	}
	if err := os.WriteFile(f.path(key), value, 0o600); err != nil {
		return fmt.Errorf("secret set %s: %w", key, err)
	}
	return nil
}

// Get reads the secret file for key. Missing file means no secret.
func (f *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("secret get %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the secret file for key. Missing file is not an error.
func (f *FileStore) Delete(key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("secret delete %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key))
}

// sanitizeKey flattens a key into a safe file name. Keys are target ids
// in practice, so this rarely changes anything.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
