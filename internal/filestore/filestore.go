package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var (
	ErrInvalidKey = errors.New("invalid storage key")

	KEY_PATTERN = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// Store keeps one file per key under Root. Writes go to a temporary file in
// the same directory and are renamed into place, so a reader never sees a
// partially written value.
type Store struct {
	Root string
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, err
	}
	return &Store{Root: root}, nil
}

func (s *Store) GetItem(key string) ([]byte, bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	content, err := os.ReadFile(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return content, true, nil
}

func (s *Store) SetItem(key string, value []byte) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	tmp, err := newTempFile(s.Root, key)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(value)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Private

func (s *Store) pathFor(key string) (string, error) {
	if !KEY_PATTERN.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.Root, key+".json"), nil
}

func newTempFile(root, key string) (*os.File, error) {
	path := filepath.Join(root, tempName(key))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	for err != nil && errors.Is(err, os.ErrExist) {
		path = filepath.Join(root, tempName(key))
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	}
	return f, err
}

func tempName(key string) string {
	return fmt.Sprintf(".%s.%d.tmp", key, time.Now().UnixNano())
}
