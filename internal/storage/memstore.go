package storage

import (
	"io"
	"sync"

	"github.com/dsnet/golib/memfile"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps the whole page space in memory. It mirrors FileStore
// semantics (zero-filled unwritten regions, id recycling) and counts every
// operation, which makes it the store of choice in tests that assert how
// often a pool touched its backing store.
type MemStore struct {
	mu      sync.Mutex
	file    *memfile.File
	nextID  PageID
	freeIDs []PageID
	closed  bool

	reads    int
	writes   int
	deallocs int
}

func NewMemStore() *MemStore {
	return &MemStore{file: memfile.New(make([]byte, 0))}
}

func (s *MemStore) ReadPage(id PageID, dst []byte) error {
	if err := checkPageBuf("dst", dst); err != nil {
		return err
	}
	if id < 0 {
		return ErrInvalidPageID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	n, err := s.file.ReadAt(dst, int64(id)*PageSize)
	if err != nil && err != io.EOF {
		return err
	}
	for i := n; i < PageSize; i++ {
		dst[i] = 0
	}
	s.reads++
	return nil
}

func (s *MemStore) WritePage(id PageID, src []byte) error {
	if err := checkPageBuf("src", src); err != nil {
		return err
	}
	if id < 0 {
		return ErrInvalidPageID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.file.WriteAt(src, int64(id)*PageSize); err != nil {
		return err
	}
	if id >= s.nextID {
		s.nextID = id + 1
	}
	s.writes++
	return nil
}

func (s *MemStore) AllocatePage() (PageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return InvalidPageID, ErrStoreClosed
	}

	if n := len(s.freeIDs); n > 0 {
		id := s.freeIDs[n-1]
		s.freeIDs = s.freeIDs[:n-1]
		return id, nil
	}
	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *MemStore) DeallocatePage(id PageID) error {
	if id < 0 {
		return ErrInvalidPageID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	s.freeIDs = append(s.freeIDs, id)
	s.deallocs++
	return nil
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemStore) NumReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *MemStore) NumWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *MemStore) NumDeallocs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deallocs
}
