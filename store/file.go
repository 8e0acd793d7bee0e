package store

import (
	"encoding/json"
	"os"
	"sync"
)

// FileKV persists keys as one JSON object in a single file. It is the
// backend for single-terminal kiosks, where the session must survive a
// process restart but no other process shares it.
//
// The whole map is rewritten on every Set/Delete; the record is a few
// hundred bytes, so there is no point in anything cleverer.
type FileKV struct {
	mu     sync.Mutex
	path   string
	loaded bool
	data   map[string]string
}

// NewFileKV returns a backend persisting to path. The file is created on
// first write; a missing file reads as empty.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) load() error {
	if f.loaded {
		return nil
	}
	f.data = make(map[string]string)
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.loaded = true
			return nil
		}
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.data); err != nil {
			// Unreadable state file: start over rather than fail every
			// subsequent read. The next Set rewrites it.
			f.data = make(map[string]string)
		}
	}
	f.loaded = true
	return nil
}

func (f *FileKV) flush() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}

// Get implements [KV].
func (f *FileKV) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return "", err
	}
	value, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set implements [KV].
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	f.data[key] = value
	return f.flush()
}

// Delete implements [KV].
func (f *FileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flush()
}
