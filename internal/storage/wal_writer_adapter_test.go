package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novapool/internal/wal"
)

func TestWALWriter_AppliesRecoveredImages(t *testing.T) {
	m, err := wal.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	lsn, err := m.AppendPageImage(0, pageFilledWith(0xC0))
	require.NoError(t, err)
	_, err = m.AppendPageImage(2, pageFilledWith(0xC2))
	require.NoError(t, err)
	require.NoError(t, m.Flush(lsn+1))

	s := NewMemStore()
	require.NoError(t, m.Recover(NewWALWriter(s)))

	got := make([]byte, PageSize)
	require.NoError(t, s.ReadPage(0, got))
	require.Equal(t, pageFilledWith(0xC0), got)
	require.NoError(t, s.ReadPage(2, got))
	require.Equal(t, pageFilledWith(0xC2), got)

	// Replayed writes move the allocation cursor past the highest image.
	id, err := s.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, PageID(3), id)
}

func TestWALWriter_NilStoreIsNoop(t *testing.T) {
	var w *WALWriter
	require.NoError(t, w.WritePage(0, pageFilledWith(1)))
	require.NoError(t, NewWALWriter(nil).WritePage(0, pageFilledWith(1)))
}
