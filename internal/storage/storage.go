package storage

import (
	"errors"
	"fmt"
)

const (
	OneKB = 1 << 10 // 1,024
	OneMB = 1 << 20 // 1,048,576
	OneGB = 1 << 30 // 1,073,741,824

	SegmentSize     = 1 << 30                // 1,073,741,824 (1 GiB)
	PageSize        = 1 << 13                // 8,192 (8 KiB)
	PagesPerSegment = SegmentSize / PageSize // 131,072 pages/segment
)

const (
	FileMode0644 = 0o644
	FileMode0755 = 0o755
)

// PageID is the logical identifier of a page inside a Store.
type PageID int64

// InvalidPageID marks a frame or slot that holds no page.
const InvalidPageID PageID = -1

type Mode int

const (
	FileBacked Mode = iota + 1
	InMemory
)

func (m Mode) String() string {
	switch m {
	case FileBacked:
		return "file"
	case InMemory:
		return "memory"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "file":
		return FileBacked, nil
	case "memory":
		return InMemory, nil
	default:
		return 0, fmt.Errorf("invalid storage mode: %s", s)
	}
}

var (
	ErrInvalidPageID = errors.New("storage: invalid page id")
	ErrStoreClosed   = errors.New("storage: store is closed")
)

// Store is the backing page space under a buffer pool. Page ids are dense
// non-negative integers handed out by AllocatePage; DeallocatePage marks an
// id reusable by a later allocation.
type Store interface {
	// ReadPage reads exactly one page (PageSize bytes) into dst. Regions the
	// store never wrote are zero-filled, so reading a freshly allocated page
	// yields a zero page.
	ReadPage(id PageID, dst []byte) error

	// WritePage writes exactly one page (PageSize bytes) from src at the
	// location computed from id.
	WritePage(id PageID, src []byte) error

	AllocatePage() (PageID, error)
	DeallocatePage(id PageID) error

	Close() error
}

// OpenStore builds a Store for the given mode. Dir and base are only used by
// the file-backed store.
func OpenStore(mode Mode, dir, base string, opts ...FileStoreOption) (Store, error) {
	switch mode {
	case FileBacked:
		return NewFileStore(dir, base, opts...)
	case InMemory:
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage mode")
	}
}

func checkPageBuf(what string, buf []byte) error {
	if len(buf) != PageSize {
		return fmt.Errorf("storage: %s must be exactly %d bytes", what, PageSize)
	}
	return nil
}
