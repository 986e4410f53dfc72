package pagefile

import "errors"

// Sentinel errors returned by the page-file adapter. Callers classify
// them with errors.Is rather than matching strings.
var (
	// ErrFileNotFound is returned by Open when the backing file does not exist.
	ErrFileNotFound = errors.New("pagefile: file not found")

	// ErrHandleNotInit is returned by any operation on a zero-value or closed File.
	ErrHandleNotInit = errors.New("pagefile: file handle not initialized")

	// ErrReadNonExisting is returned by Read when pageNum is beyond the
	// current total page count.
	ErrReadNonExisting = errors.New("pagefile: read of non-existing page")

	// ErrWriteFailed wraps any short write or I/O failure on Write/EnsureCapacity.
	ErrWriteFailed = errors.New("pagefile: write failed")

	// ErrBadArgs is returned for invalid page numbers or buffer sizes.
	ErrBadArgs = errors.New("pagefile: invalid arguments")
)
