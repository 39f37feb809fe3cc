package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMaxOpenSegments = 8

// SegFileName returns the segment file name:
//   - seg 0: base
//   - seg N>0: base.N
func SegFileName(base string, segNo int64) string {
	if segNo <= 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, segNo)
}

var _ Store = (*FileStore)(nil)

// FileStore keeps pages in segment files under a directory, named Base,
// Base.1, Base.2, ... A logical page id maps to (segment, in-segment offset).
// Open segment handles are kept in a small LRU cache whose eviction hook
// closes the file, so the store never holds more than maxOpen descriptors.
type FileStore struct {
	dir     string
	base    string
	segSize int64
	maxOpen int

	mu      sync.Mutex
	handles *lru.Cache[int64, *os.File]
	nextID  PageID
	freeIDs []PageID
	closed  bool
}

type FileStoreOption func(*FileStore)

// WithSegmentSize overrides the 1 GiB default. The size must be a positive
// multiple of PageSize.
func WithSegmentSize(n int64) FileStoreOption {
	return func(s *FileStore) { s.segSize = n }
}

// WithMaxOpenSegments bounds the number of cached segment descriptors.
func WithMaxOpenSegments(n int) FileStoreOption {
	return func(s *FileStore) { s.maxOpen = n }
}

func NewFileStore(dir, base string, opts ...FileStoreOption) (*FileStore, error) {
	s := &FileStore{
		dir:     dir,
		base:    base,
		segSize: SegmentSize,
		maxOpen: DefaultMaxOpenSegments,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.segSize <= 0 || s.segSize%PageSize != 0 {
		return nil, fmt.Errorf("storage: segment size %d is not a multiple of %d", s.segSize, PageSize)
	}
	if s.maxOpen <= 0 {
		s.maxOpen = 1
	}

	if err := os.MkdirAll(dir, FileMode0755); err != nil {
		return nil, err
	}

	handles, err := lru.NewWithEvict(s.maxOpen, func(segNo int64, f *os.File) {
		if err := f.Close(); err != nil {
			slog.Warn("storage: close segment", "seg", segNo, "err", err)
		}
	})
	if err != nil {
		return nil, err
	}
	s.handles = handles

	if err := s.initNextID(); err != nil {
		return nil, err
	}
	return s, nil
}

// initNextID scans existing segments so new allocations continue after the
// highest page ever written. A trailing partial page still counts as used.
func (s *FileStore) initNextID() error {
	for segNo := int64(0); ; segNo++ {
		info, err := os.Stat(s.segPath(segNo))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		pages := (info.Size() + PageSize - 1) / PageSize
		s.nextID = PageID(segNo*(s.segSize/PageSize) + pages)
	}
}

func (s *FileStore) segPath(segNo int64) string {
	return filepath.Join(s.dir, SegFileName(s.base, segNo))
}

// locate maps a logical page id to (segment, offset within the segment).
func (s *FileStore) locate(id PageID) (segNo int64, offset int64) {
	pps := s.segSize / PageSize
	segNo = int64(id) / pps
	offset = (int64(id) % pps) * PageSize
	return segNo, offset
}

// openSegment returns a cached handle, opening and caching it on miss.
// Caller holds s.mu.
func (s *FileStore) openSegment(segNo int64) (*os.File, error) {
	if f, ok := s.handles.Get(segNo); ok {
		return f, nil
	}
	// RDWR | CREATE (no truncate)
	f, err := os.OpenFile(s.segPath(segNo), os.O_RDWR|os.O_CREATE, FileMode0644)
	if err != nil {
		return nil, err
	}
	s.handles.Add(segNo, f)
	return f, nil
}

func (s *FileStore) ReadPage(id PageID, dst []byte) error {
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

	segNo, off := s.locate(id)
	f, err := s.openSegment(segNo)
	if err != nil {
		return err
	}

	n, err := f.ReadAt(dst, off)
	if err != nil && err != io.EOF {
		return err
	}
	// Zero-fill the rest of the page on EOF or a short read.
	for i := n; i < PageSize; i++ {
		dst[i] = 0
	}
	return nil
}

func (s *FileStore) WritePage(id PageID, src []byte) error {
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

	segNo, off := s.locate(id)
	f, err := s.openSegment(segNo)
	if err != nil {
		return err
	}

	n, err := f.WriteAt(src, off)
	if err != nil {
		return err
	}
	if n != PageSize {
		return io.ErrShortWrite
	}
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return nil
}

// AllocatePage hands out the lowest deallocated id if one exists, a fresh id
// otherwise.
func (s *FileStore) AllocatePage() (PageID, error) {
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

// DeallocatePage marks an id reusable. The on-disk bytes stay untouched; the
// id is simply recycled by a later AllocatePage.
func (s *FileStore) DeallocatePage(id PageID) error {
	if id < 0 {
		return ErrInvalidPageID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	s.freeIDs = append(s.freeIDs, id)
	return nil
}

// Close drops every cached segment handle. The eviction hook closes them.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.handles.Purge()
	return nil
}
