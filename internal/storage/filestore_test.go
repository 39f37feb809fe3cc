package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T, opts ...FileStoreOption) *FileStore {
	t.Helper()

	s, err := NewFileStore(t.TempDir(), "pages", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func pageFilledWith(b byte) []byte {
	buf := make([]byte, PageSize)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

func TestFileStore_WriteReadRoundTrip(t *testing.T) {
	s := newTestFileStore(t)

	id, err := s.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, PageID(0), id)

	require.NoError(t, s.WritePage(id, pageFilledWith(0xAB)))

	got := make([]byte, PageSize)
	require.NoError(t, s.ReadPage(id, got))
	require.Equal(t, pageFilledWith(0xAB), got)
}

func TestFileStore_ReadPage_ZeroFillsUnwritten(t *testing.T) {
	s := newTestFileStore(t)

	got := pageFilledWith(0xFF)
	require.NoError(t, s.ReadPage(7, got))
	require.Equal(t, make([]byte, PageSize), got)
}

func TestFileStore_RejectsBadArguments(t *testing.T) {
	s := newTestFileStore(t)

	require.Error(t, s.ReadPage(0, make([]byte, PageSize-1)))
	require.Error(t, s.WritePage(0, make([]byte, 2*PageSize)))
	require.ErrorIs(t, s.ReadPage(-1, make([]byte, PageSize)), ErrInvalidPageID)
	require.ErrorIs(t, s.DeallocatePage(-5), ErrInvalidPageID)
}

func TestFileStore_AllocatePage_ContinuesAfterReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStore(dir, "pages")
	require.NoError(t, err)

	for want := PageID(0); want < 3; want++ {
		id, err := s.AllocatePage()
		require.NoError(t, err)
		require.Equal(t, want, id)
		require.NoError(t, s.WritePage(id, pageFilledWith(byte(id))))
	}
	require.NoError(t, s.Close())

	s2, err := NewFileStore(dir, "pages")
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	id, err := s2.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, PageID(3), id)

	got := make([]byte, PageSize)
	require.NoError(t, s2.ReadPage(1, got))
	require.Equal(t, pageFilledWith(1), got)
}

func TestFileStore_DeallocatePage_ReusesID(t *testing.T) {
	s := newTestFileStore(t)

	id0, err := s.AllocatePage()
	require.NoError(t, err)
	id1, err := s.AllocatePage()
	require.NoError(t, err)
	require.NotEqual(t, id0, id1)

	require.NoError(t, s.DeallocatePage(id0))

	id2, err := s.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, id0, id2)
}

func TestFileStore_SpansSegments(t *testing.T) {
	dir := t.TempDir()

	// Two pages per segment keeps the test small.
	s, err := NewFileStore(dir, "pages", WithSegmentSize(2*PageSize))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	for id := PageID(0); id < 5; id++ {
		require.NoError(t, s.WritePage(id, pageFilledWith(byte(id+1))))
	}

	for _, name := range []string{"pages", "pages.1", "pages.2"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "segment %s should exist", name)
	}

	got := make([]byte, PageSize)
	require.NoError(t, s.ReadPage(4, got))
	require.Equal(t, pageFilledWith(5), got)
}

func TestFileStore_HandleCacheReopensEvictedSegments(t *testing.T) {
	s := newTestFileStore(t, WithSegmentSize(PageSize), WithMaxOpenSegments(1))

	for id := PageID(0); id < 4; id++ {
		require.NoError(t, s.WritePage(id, pageFilledWith(byte(id+10))))
	}

	// Every read below lands on a segment whose handle was already evicted.
	got := make([]byte, PageSize)
	for id := PageID(0); id < 4; id++ {
		require.NoError(t, s.ReadPage(id, got))
		require.Equal(t, byte(id+10), got[0])
	}
}

func TestFileStore_SegmentSizeMustAlign(t *testing.T) {
	_, err := NewFileStore(t.TempDir(), "pages", WithSegmentSize(PageSize+1))
	require.Error(t, err)
}

func TestFileStore_ClosedStoreRefusesIO(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.ReadPage(0, make([]byte, PageSize)), ErrStoreClosed)
	require.ErrorIs(t, s.WritePage(0, make([]byte, PageSize)), ErrStoreClosed)
	_, err := s.AllocatePage()
	require.ErrorIs(t, err, ErrStoreClosed)
}
