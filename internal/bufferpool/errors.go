package bufferpool

import "errors"

// Sentinel errors for the buffer pool's public API. Callers classify
// them with errors.Is.
var (
	// ErrBadArgs signals programmer misuse (e.g. negative page number,
	// non-positive capacity).
	ErrBadArgs = errors.New("bufferpool: invalid arguments")

	// ErrHandleNotInit signals the pool was never initialized, or was
	// already shut down.
	ErrHandleNotInit = errors.New("bufferpool: pool not initialized")

	// ErrPageNotResident signals an operation (unpin/mark_dirty/
	// force_page) referenced a page that isn't currently in any frame.
	ErrPageNotResident = errors.New("bufferpool: page not resident")

	// ErrNoFreeFrame signals pin-miss found no replaceable frame:
	// every frame is pinned.
	ErrNoFreeFrame = errors.New("bufferpool: no free frame available (all pinned)")

	// ErrWriteFailed wraps a file-adapter write/flush failure.
	ErrWriteFailed = errors.New("bufferpool: write failed")
)
