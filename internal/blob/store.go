// Package blob is an explicit handle table for revocable media resources:
// clip preview sources and export results. Every Acquire must be balanced by
// exactly one Release; releasing twice is an error, not a silent no-op.
package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrAlreadyReleased = errors.New("blob handle already released")
	ErrKeyInUse        = errors.New("blob key already has a live handle")
)

type Store struct {
	root string

	mu      sync.Mutex
	handles map[string]*Handle
}

// Handle is a single-owner reference to a stored blob. Release deletes the
// underlying file and invalidates the handle.
type Handle struct {
	key   string
	path  string
	store *Store
}

func NewStore(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("blob store root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{
		root:    root,
		handles: make(map[string]*Handle),
	}, nil
}

// Acquire stores the reader's bytes under key and returns the owning handle.
// A key with a live handle cannot be acquired again until released. The key
// is reserved before the file is written, so concurrent acquires for the
// same key admit exactly one winner.
func (s *Store) Acquire(key string, r io.Reader) (*Handle, error) {
	cleaned, err := s.cleanKey(key)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.root, filepath.FromSlash(cleaned))
	handle := &Handle{key: cleaned, path: path, store: s}

	s.mu.Lock()
	if _, exists := s.handles[cleaned]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrKeyInUse, cleaned)
	}
	s.handles[cleaned] = handle
	s.mu.Unlock()

	abort := func(err error) (*Handle, error) {
		s.mu.Lock()
		delete(s.handles, cleaned)
		s.mu.Unlock()
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return abort(fmt.Errorf("create blob dir: %w", err))
	}

	file, err := os.Create(path)
	if err != nil {
		return abort(fmt.Errorf("create blob file: %w", err))
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(path)
		return abort(fmt.Errorf("write blob: %w", err))
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return abort(fmt.Errorf("close blob: %w", err))
	}

	return handle, nil
}

// AcquireBytes is Acquire for an in-memory payload.
func (s *Store) AcquireBytes(key string, data []byte) (*Handle, error) {
	return s.Acquire(key, bytes.NewReader(data))
}

func (s *Store) Get(key string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[key]
	return h, ok
}

// Live returns the number of currently held handles.
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// ReleaseAll releases every live handle. Used at application teardown.
func (s *Store) ReleaseAll() error {
	s.mu.Lock()
	live := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		live = append(live, h)
	}
	s.mu.Unlock()

	var firstErr error
	for _, h := range live {
		if err := h.Release(); err != nil && !errors.Is(err, ErrAlreadyReleased) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *Handle) Key() string {
	return h.key
}

func (h *Handle) Path() string {
	return h.path
}

// Release deletes the blob and invalidates the handle. It must be called
// exactly once; a second call returns ErrAlreadyReleased.
func (h *Handle) Release() error {
	h.store.mu.Lock()
	current, ok := h.store.handles[h.key]
	if !ok || current != h {
		h.store.mu.Unlock()
		return ErrAlreadyReleased
	}
	delete(h.store.handles, h.key)
	h.store.mu.Unlock()

	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

func (s *Store) cleanKey(key string) (string, error) {
	cleaned := strings.TrimSpace(key)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		return "", errors.New("blob key is empty")
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." || part == "" {
			return "", fmt.Errorf("invalid blob key: %q", key)
		}
	}
	return cleaned, nil
}
