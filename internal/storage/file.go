package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

// FileBackend keeps every key in one JSON document. Each operation takes a
// lock file so a CLI invocation and a running server can share the document.
type FileBackend struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// NewFileBackend uses the document at path, creating its directory.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("file backend requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	f := &FileBackend{path: path, lock: flock.New(path + ".lock")}

	// fail early on an unreadable document
	if err := f.withLock(false, func(doc map[string]string) (bool, error) { return false, nil }); err != nil {
		return nil, err
	}
	return f, nil
}

// withLock reads the document under the lock file and, if fn reports a
// change, writes it back before releasing.
func (f *FileBackend) withLock(write bool, fn func(doc map[string]string) (bool, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	lockFn := f.lock.RLock
	if write {
		lockFn = f.lock.Lock
	}
	if err := lockFn(); err != nil {
		return fmt.Errorf("failed to lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil || !changed || !write {
		return err
	}
	return f.write(doc)
}

func (f *FileBackend) read() (map[string]string, error) {
	doc := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *FileBackend) write(doc map[string]string) error {
	tmp := f.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to sync document: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

func (f *FileBackend) Get(key string) ([]byte, bool, error) {
	var (
		value string
		ok    bool
	)
	err := f.withLock(false, func(doc map[string]string) (bool, error) {
		value, ok = doc[key]
		return false, nil
	})
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (f *FileBackend) Set(key string, value []byte) error {
	return f.withLock(true, func(doc map[string]string) (bool, error) {
		doc[key] = string(value)
		return true, nil
	})
}

func (f *FileBackend) Delete(key string) error {
	return f.withLock(true, func(doc map[string]string) (bool, error) {
		if _, ok := doc[key]; !ok {
			return false, nil
		}
		delete(doc, key)
		return true, nil
	})
}

func (f *FileBackend) Keys() ([]string, error) {
	var keys []string
	err := f.withLock(false, func(doc map[string]string) (bool, error) {
		for k := range doc {
			keys = append(keys, k)
		}
		return false, nil
	})
	slices.Sort(keys)
	return keys, err
}

func (f *FileBackend) Close() error {
	return f.lock.Close()
}
