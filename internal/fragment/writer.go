package fragment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Writer persists a rendered document under path and returns its URL.
type Writer interface {
	WriteFragment(ctx context.Context, path string, content []byte) (string, error)
}

// MemoryWriter keeps written documents in memory, in write order.
type MemoryWriter struct {
	mu    sync.Mutex
	paths []string
	docs  map[string][]byte
	// Fail, when set, is returned for every write after the first FailAfter writes.
	Fail      error
	FailAfter int
}

// NewMemoryWriter returns an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{docs: map[string][]byte{}}
}

// WriteFragment implements Writer. The returned URL is the path itself.
func (w *MemoryWriter) WriteFragment(ctx context.Context, path string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Fail != nil && len(w.paths) >= w.FailAfter {
		return "", w.Fail
	}
	w.paths = append(w.paths, path)
	w.docs[path] = append([]byte(nil), content...)
	return path, nil
}

// Paths returns the written paths in order.
func (w *MemoryWriter) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

// Get returns the content written at path.
func (w *MemoryWriter) Get(path string) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.docs[path]
	return b, ok
}

// DirWriter writes documents below a root directory.
type DirWriter struct {
	Root string
	// BaseURL is prefixed to the path to form the returned URL; empty keeps the path.
	BaseURL string
}

// WriteFragment implements Writer.
func (w DirWriter) WriteFragment(ctx context.Context, path string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	full := filepath.Join(w.Root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create fragment dir: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", fmt.Errorf("write fragment %s: %w", path, err)
	}
	return strings.TrimSuffix(w.BaseURL, "/") + filepath.ToSlash(clean), nil
}
