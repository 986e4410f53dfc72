// Package pagefile implements the external page-file adapter the
// buffer pool core depends on: a handle on a single file of
// fixed-size pages, with positional reads/writes and on-demand
// growth. It has no knowledge of pinning, dirty bits, or replacement
// policy — all of that lives in internal/bufferpool.
package pagefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// PageSize is the fixed size, in bytes, of every page. Pages are
// indexed from 0; a blank page is PageSize zero bytes.
const PageSize = 4096

const fileMode0644 = 0o644

// registry tracks currently open files by absolute path so Destroy can
// close a live handle before removing it from disk: register on open,
// unregister on close, look up on destroy.
var registry sync.Map // map[string]*File

// File is a handle on an open page file.
type File struct {
	f         *os.File
	path      string
	pageCount int
	mu        sync.RWMutex
}

// Create makes a brand new page file containing exactly one blank
// page and opens it. It fails if a file already exists at path.
func Create(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	f, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE|os.O_EXCL, fileMode0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	blank := make([]byte, PageSize)
	if _, err := f.WriteAt(blank, 0); err != nil {
		_ = f.Close()
		_ = os.Remove(abs)
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	pf := &File{f: f, path: abs, pageCount: 1}
	registry.Store(abs, pf)
	return pf, nil
}

// Open opens an existing page file. It returns ErrFileNotFound if no
// file exists at path.
func Open(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}

	f, err := os.OpenFile(abs, os.O_RDWR, fileMode0644)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, abs)
		}
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	pf := &File{
		f:         f,
		path:      abs,
		pageCount: int(info.Size() / PageSize),
	}
	registry.Store(abs, pf)
	return pf, nil
}

// OpenOrCreate opens path if it exists, or creates it (with one blank
// page) if it doesn't. This is the entry point bufferpool.Open uses
// so that pointing a pool at a fresh path "just works".
func OpenOrCreate(path string) (*File, error) {
	pf, err := Open(path)
	if err == nil {
		return pf, nil
	}
	if !errors.Is(err, ErrFileNotFound) {
		return nil, err
	}
	return Create(path)
}

// Close releases the OS file handle. Close is idempotent only in the
// sense that a second call returns ErrHandleNotInit, matching the
// adapter contract (callers are expected to call it exactly once).
func (pf *File) Close() error {
	if pf == nil || pf.f == nil {
		return ErrHandleNotInit
	}
	pf.mu.Lock()
	defer pf.mu.Unlock()

	registry.Delete(pf.path)
	err := pf.f.Close()
	pf.f = nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Destroy closes (if currently open, via the registry) and removes
// the page file at path from disk.
func Destroy(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	if v, ok := registry.Load(abs); ok {
		pf := v.(*File)
		_ = pf.Close()
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, abs)
		}
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// TotalPages returns the current page count.
func (pf *File) TotalPages() int {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.pageCount
}

// Read fills buf (which must be exactly PageSize bytes) with the
// contents of page pageNum. It returns ErrReadNonExisting if pageNum
// is beyond the current page count.
func (pf *File) Read(pageNum int, buf []byte) error {
	if pf == nil || pf.f == nil {
		return ErrHandleNotInit
	}
	if len(buf) != PageSize {
		return fmt.Errorf("%w: buffer must be %d bytes, got %d", ErrBadArgs, PageSize, len(buf))
	}
	if pageNum < 0 {
		return fmt.Errorf("%w: negative page number %d", ErrBadArgs, pageNum)
	}

	pf.mu.RLock()
	defer pf.mu.RUnlock()

	if pageNum >= pf.pageCount {
		return fmt.Errorf("%w: page %d, have %d pages", ErrReadNonExisting, pageNum, pf.pageCount)
	}

	off := int64(pageNum) * PageSize
	n, err := pf.f.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrReadNonExisting, err)
	}
	for i := n; i < PageSize; i++ {
		buf[i] = 0
	}
	return nil
}

// Write persists buf (exactly PageSize bytes) to page pageNum. The
// caller must have already called EnsureCapacity if pageNum may be
// beyond the current page count.
func (pf *File) Write(pageNum int, buf []byte) error {
	if pf == nil || pf.f == nil {
		return ErrHandleNotInit
	}
	if len(buf) != PageSize {
		return fmt.Errorf("%w: buffer must be %d bytes, got %d", ErrBadArgs, PageSize, len(buf))
	}
	if pageNum < 0 {
		return fmt.Errorf("%w: negative page number %d", ErrBadArgs, pageNum)
	}

	pf.mu.Lock()
	defer pf.mu.Unlock()

	if pageNum >= pf.pageCount {
		return fmt.Errorf("%w: page %d beyond capacity %d, call EnsureCapacity first", ErrWriteFailed, pageNum, pf.pageCount)
	}

	off := int64(pageNum) * PageSize
	n, err := pf.f.WriteAt(buf, off)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n != PageSize {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrWriteFailed, n, PageSize)
	}
	return nil
}

// EnsureCapacity grows the file with blank pages, if necessary, until
// it holds at least n pages.
func (pf *File) EnsureCapacity(n int) error {
	if pf == nil || pf.f == nil {
		return ErrHandleNotInit
	}
	if n < 0 {
		return fmt.Errorf("%w: negative page count %d", ErrBadArgs, n)
	}

	pf.mu.Lock()
	defer pf.mu.Unlock()

	if n <= pf.pageCount {
		return nil
	}

	blank := make([]byte, PageSize)
	for pf.pageCount < n {
		off := int64(pf.pageCount) * PageSize
		if _, err := pf.f.WriteAt(blank, off); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
		pf.pageCount++
	}
	return nil
}

// Path returns the absolute path backing this handle.
func (pf *File) Path() string {
	return pf.path
}
