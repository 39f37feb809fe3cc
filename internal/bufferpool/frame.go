package bufferpool

import (
	"sync"
	"sync/atomic"

	"github.com/ncw/directio"

	"github.com/tuannm99/novapool/internal/storage"
)

// Frame is one page-sized slot of the pool. It is handed to callers by
// FetchPage/NewPage and stays pinned until every caller unpins it.
type Frame struct {
	// Latch serializes access to Data between callers sharing the frame.
	// It belongs to callers only; the pool itself never takes it.
	Latch sync.RWMutex

	data  []byte
	id    storage.PageID
	pins  atomic.Int32
	dirty bool
}

// newFrame allocates the page buffer aligned, so a direct-I/O store can use
// it without copying.
func newFrame() *Frame {
	return &Frame{
		data: directio.AlignedBlock(storage.PageSize),
		id:   storage.InvalidPageID,
	}
}

// PageID returns the id of the page the frame holds, InvalidPageID if free.
func (f *Frame) PageID() storage.PageID { return f.id }

// Data returns the page buffer. Callers may read and write it while they
// hold a pin; writes must be reported through UnpinPage(id, true).
func (f *Frame) Data() []byte { return f.data }

// PinCount is safe to read without the pool latch.
func (f *Frame) PinCount() int32 { return f.pins.Load() }

func (f *Frame) IsDirty() bool { return f.dirty }

// reset returns the frame to its free state: no page, no pins, zero buffer.
func (f *Frame) reset() {
	f.id = storage.InvalidPageID
	f.pins.Store(0)
	f.dirty = false
	clear(f.data)
}
