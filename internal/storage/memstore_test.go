package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStore_WriteReadRoundTrip(t *testing.T) {
	s := NewMemStore()

	id, err := s.AllocatePage()
	require.NoError(t, err)

	require.NoError(t, s.WritePage(id, pageFilledWith(0x5A)))

	got := make([]byte, PageSize)
	require.NoError(t, s.ReadPage(id, got))
	require.Equal(t, pageFilledWith(0x5A), got)
}

func TestMemStore_ReadPage_ZeroFillsUnwritten(t *testing.T) {
	s := NewMemStore()

	got := pageFilledWith(0xFF)
	require.NoError(t, s.ReadPage(3, got))
	require.Equal(t, make([]byte, PageSize), got)
}

func TestMemStore_CountsOperations(t *testing.T) {
	s := NewMemStore()

	require.NoError(t, s.WritePage(0, pageFilledWith(1)))
	require.NoError(t, s.WritePage(1, pageFilledWith(2)))
	require.NoError(t, s.ReadPage(0, make([]byte, PageSize)))
	require.NoError(t, s.DeallocatePage(1))

	require.Equal(t, 2, s.NumWrites())
	require.Equal(t, 1, s.NumReads())
	require.Equal(t, 1, s.NumDeallocs())
}

func TestMemStore_AllocateAfterDirectWrite(t *testing.T) {
	s := NewMemStore()

	// A direct write at id 4 moves the allocation cursor past it.
	require.NoError(t, s.WritePage(4, pageFilledWith(9)))

	id, err := s.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, PageID(5), id)
}

func TestMemStore_DeallocatePage_ReusesID(t *testing.T) {
	s := NewMemStore()

	id0, err := s.AllocatePage()
	require.NoError(t, err)
	_, err = s.AllocatePage()
	require.NoError(t, err)

	require.NoError(t, s.DeallocatePage(id0))

	id2, err := s.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, id0, id2)
}

func TestMemStore_ClosedStoreRefusesIO(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.WritePage(0, make([]byte, PageSize)), ErrStoreClosed)
	_, err := s.AllocatePage()
	require.ErrorIs(t, err, ErrStoreClosed)
}
