package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) PutJSON(key string, v interface{}) error {
	if key == "" {
		return errors.New("empty key")
	}
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dst := filepath.Join(s.base, filepath.Clean(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	// write-then-rename so a crashed write never truncates the active doc
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

func (s *FSStore) GetJSON(key string, v interface{}) error {
	buf, err := os.ReadFile(filepath.Join(s.base, filepath.Clean(key)))
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, v)
}

func (s *FSStore) Exists(key string) bool {
	_, err := os.Stat(filepath.Join(s.base, filepath.Clean(key)))
	return err == nil
}
