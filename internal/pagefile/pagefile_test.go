package pagefile

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) (*File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.page")
	f, err := Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f, path
}

func TestCreate_StartsWithOneBlankPage(t *testing.T) {
	f, _ := newTestFile(t)
	require.Equal(t, 1, f.TotalPages())

	buf := make([]byte, PageSize)
	require.NoError(t, f.Read(0, buf))
	require.True(t, bytes.Equal(buf, make([]byte, PageSize)))
}

func TestOpen_MissingFileReturnsNotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.page"))
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestWriteThenRead_RoundTrips(t *testing.T) {
	f, _ := newTestFile(t)

	want := bytes.Repeat([]byte{0xAB}, PageSize)
	require.NoError(t, f.Write(0, want))

	got := make([]byte, PageSize)
	require.NoError(t, f.Read(0, got))
	require.Equal(t, want, got)
}

func TestRead_BeyondCapacityIsNonExisting(t *testing.T) {
	f, _ := newTestFile(t)
	buf := make([]byte, PageSize)
	err := f.Read(5, buf)
	require.ErrorIs(t, err, ErrReadNonExisting)
}

func TestWrite_BeyondCapacityFailsUntilEnsured(t *testing.T) {
	f, _ := newTestFile(t)
	buf := bytes.Repeat([]byte{1}, PageSize)

	err := f.Write(3, buf)
	require.ErrorIs(t, err, ErrWriteFailed)

	require.NoError(t, f.EnsureCapacity(4))
	require.Equal(t, 4, f.TotalPages())
	require.NoError(t, f.Write(3, buf))

	got := make([]byte, PageSize)
	require.NoError(t, f.Read(3, got))
	require.Equal(t, buf, got)

	// Pages created by EnsureCapacity but never written are blank.
	require.NoError(t, f.Read(1, got))
	require.True(t, bytes.Equal(got, make([]byte, PageSize)))
}

func TestEnsureCapacity_Idempotent(t *testing.T) {
	f, _ := newTestFile(t)
	require.NoError(t, f.EnsureCapacity(1))
	require.Equal(t, 1, f.TotalPages())
}

func TestReopenPreservesContent(t *testing.T) {
	f, path := newTestFile(t)
	buf := bytes.Repeat([]byte{0x7F}, PageSize)
	require.NoError(t, f.Write(0, buf))
	require.NoError(t, f.Close())

	f2, err := Open(path)
	require.NoError(t, err)
	defer f2.Close()

	got := make([]byte, PageSize)
	require.NoError(t, f2.Read(0, got))
	require.Equal(t, buf, got)
}

func TestDestroy_ClosesOpenHandleThenRemoves(t *testing.T) {
	f, path := newTestFile(t)
	require.NoError(t, Destroy(path))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrFileNotFound)

	// Destroy already closed the original handle through the registry,
	// so closing it again reports ErrHandleNotInit.
	require.ErrorIs(t, f.Close(), ErrHandleNotInit)
}

func TestOpenOrCreate_CreatesWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.page")
	f, err := OpenOrCreate(path)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, 1, f.TotalPages())
}

func TestCursor_SequentialScan(t *testing.T) {
	f, _ := newTestFile(t)
	require.NoError(t, f.EnsureCapacity(3))
	for i := 0; i < 3; i++ {
		buf := bytes.Repeat([]byte{byte(i + 1)}, PageSize)
		require.NoError(t, f.Write(i, buf))
	}

	c := NewCursor(f)
	buf := make([]byte, PageSize)

	require.NoError(t, c.First(buf))
	require.Equal(t, byte(1), buf[0])

	require.NoError(t, c.Next(buf))
	require.Equal(t, byte(2), buf[0])
	require.Equal(t, 1, c.Pos())

	require.NoError(t, c.Last(buf))
	require.Equal(t, byte(3), buf[0])

	require.NoError(t, c.Previous(buf))
	require.Equal(t, byte(2), buf[0])
}
