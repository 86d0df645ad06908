// Package tree owns the document being administered: its in-memory value,
// backing file and format.
//
// A Document is shared by every chat. Reads take a shared lock; a write
// sequence (mutate, then persist) runs under the exclusive lock and, when a
// DistributedLocker is configured, under a cross-process file lock as well.
package tree

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/tgadmin/internal/codec"
	"github.com/aretw0/tgadmin/internal/logging"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/aretw0/tgadmin/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed writer can hold the file lock.
const DefaultLockTTL = 10 * time.Second

// Document is the TreeStore: one structured value backed by one file.
type Document struct {
	mu     sync.RWMutex
	root   domain.Value
	digest [sha256.Size]byte

	path   string
	format domain.Format
	codec  ports.Codec

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLocker guards write sequences with a distributed lock keyed by the file path.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(d *Document) {
		d.locker = locker
		if ttl > 0 {
			d.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Document.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// Load detects the format from the file extension and parses the file.
func Load(path string, opts ...Option) (*Document, error) {
	format, err := domain.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document path: %w", err)
	}

	d := &Document{
		path:    abs,
		format:  format,
		codec:   codec.New(),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	root, digest, err := d.read()
	if err != nil {
		return nil, err
	}
	d.root, d.digest = root, digest
	d.logger.Info("Document loaded", "path", d.path, "format", d.format)
	return d, nil
}

// Path returns the absolute path of the backing file.
func (d *Document) Path() string {
	return d.path
}

// Format returns the format detected at load time.
func (d *Document) Format() domain.Format {
	return d.format
}

// Get returns a copy of the value at p, or false when p does not resolve.
func (d *Document) Get(p domain.Path) (domain.Value, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := domain.Lookup(d.root, p)
	if !ok {
		return nil, false
	}
	return domain.Clone(v), true
}

// View runs fn with the live root under the shared lock. fn must not retain
// or modify root.
func (d *Document) View(fn func(root domain.Value) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn(d.root)
}

// Reload replaces the in-memory value with the file contents.
// On failure the current value is kept.
func (d *Document) Reload(ctx context.Context) error {
	_, err := d.reload(ctx, true)
	return err
}

// ReloadIfChanged reloads only when the file differs from what this Document
// last read or wrote. It reports whether a reload happened.
func (d *Document) ReloadIfChanged(ctx context.Context) (bool, error) {
	return d.reload(ctx, false)
}

func (d *Document) reload(ctx context.Context, force bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	root, digest, err := d.read()
	if err != nil {
		return false, err
	}
	if !force && digest == d.digest {
		return false, nil
	}
	d.root, d.digest = root, digest
	d.logger.Info("Document reloaded", "path", d.path)
	return true, nil
}

// Writer is the handle passed to WithWrite.
type Writer struct {
	d *Document
}

// Root returns the live root. Changes are visible to readers once WithWrite returns.
func (w *Writer) Root() domain.Value {
	return w.d.root
}

// Persist serializes the root and atomically replaces the backing file.
func (w *Writer) Persist() error {
	d := w.d
	data, err := d.codec.Serialize(d.root, d.format)
	if err != nil {
		return err
	}
	if err := writeAtomic(d.path, data); err != nil {
		return err
	}
	codec.Canonicalize(d.root, d.format)
	d.digest = sha256.Sum256(data)
	d.logger.Debug("Document persisted", "path", d.path, "bytes", len(data))
	return nil
}

// WithWrite runs fn with exclusive access to the document.
// If fn returns an error the in-memory value is restored to what it was
// before the call, so a failed mutation or persist leaves no trace.
func (d *Document) WithWrite(ctx context.Context, fn func(w *Writer) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.locker != nil {
		unlock, err := d.locker.Lock(ctx, "doc:"+d.path, d.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire document lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				d.logger.Warn("Failed to release document lock (will expire via TTL)", "path", d.path, "err", err)
			}
		}()

		// Another process may have written the file since we last looked.
		if root, digest, err := d.read(); err == nil && digest != d.digest {
			d.root, d.digest = root, digest
			d.logger.Info("Document changed on disk, reloaded before write", "path", d.path)
		}
	}

	snapshot := domain.Clone(d.root)
	w := &Writer{d: d}
	if err := fn(w); err != nil {
		d.root = snapshot
		return err
	}
	return nil
}

func (d *Document) read() (domain.Value, [sha256.Size]byte, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, [sha256.Size]byte{}, fmt.Errorf("failed to read document: %w", err)
	}
	digest := sha256.Sum256(data)
	root, err := d.codec.Parse(data, d.format)
	if err != nil {
		return nil, digest, err
	}
	return root, digest, nil
}

// writeAtomic writes to a temp file in the same directory, syncs it and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Chmod(mode); err != nil {
		return fmt.Errorf("failed to set temp file mode: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
