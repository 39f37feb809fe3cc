package bufferpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tuannm99/novapool/internal/storage"
	"github.com/tuannm99/novapool/internal/wal"
)

var (
	DefaultCapacity = 128

	ErrPageNotFound = errors.New("bufferpool: page not resident")
	ErrNoFreeFrame  = errors.New("bufferpool: no free or evictable frame (all pinned)")
	ErrNotPinned    = errors.New("bufferpool: page pin count is already zero")
	ErrPagePinned   = errors.New("bufferpool: page is pinned")
)

type Manager interface {
	FetchPage(id storage.PageID) (*Frame, error)
	UnpinPage(id storage.PageID, dirty bool) error
	FlushPage(id storage.PageID) error
	NewPage() (*Frame, error)
	DeletePage(id storage.PageID) error
	FlushAll() error
}

// Stats counts pool traffic since construction.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

var _ Manager = (*Pool)(nil)

// Pool caches a fixed number of store pages in memory. One latch guards all
// pool state and stays held across backing-store I/O, so a slow read stalls
// concurrent callers; that keeps eviction, the page table and the store in
// step with each other.
//
// A frame returned by FetchPage/NewPage stays pinned until the caller
// unpins it. A leaked pin permanently excludes that frame from eviction.
type Pool struct {
	store storage.Store
	log   *wal.Manager // opaque collaborator for the owner; the pool never writes to it

	mu        sync.Mutex
	frames    []*Frame
	freeList  []int
	pageTable map[storage.PageID]int
	replacer  Replacer
	stats     Stats
}

type Option func(*Pool)

// WithReplacer swaps the default LRU policy.
func WithReplacer(r Replacer) Option {
	return func(p *Pool) { p.replacer = r }
}

func NewPool(store storage.Store, log *wal.Manager, capacity int, opts ...Option) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	p := &Pool{
		store:     store,
		log:       log,
		frames:    make([]*Frame, capacity),
		freeList:  make([]int, 0, capacity),
		pageTable: make(map[storage.PageID]int),
		replacer:  NewLRUReplacer(),
	}
	for i := range p.frames {
		p.frames[i] = newFrame()
		p.freeList = append(p.freeList, i)
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchPage pins the page and returns its frame, reading it from the store
// on a miss. A hit touches no disk.
func (p *Pool) FetchPage(id storage.PageID) (*Frame, error) {
	if id < 0 {
		return nil, storage.ErrInvalidPageID
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// 1) HIT
	if idx, ok := p.pageTable[id]; ok {
		f := p.frames[idx]
		f.pins.Add(1)
		p.replacer.Pin(idx)
		p.stats.Hits++
		return f, nil
	}

	// 2) MISS: free frame first, else evict
	idx, err := p.acquireFrame()
	if err != nil {
		return nil, err
	}
	p.stats.Misses++

	f := p.frames[idx]
	if err := p.store.ReadPage(id, f.data); err != nil {
		// A failed read may have left partial bytes behind; free frames
		// must stay zeroed.
		f.reset()
		p.freeList = append(p.freeList, idx)
		return nil, fmt.Errorf("bufferpool: read page %d: %w", id, err)
	}

	f.id = id
	f.pins.Store(1)
	f.dirty = false
	p.pageTable[id] = idx
	p.replacer.Pin(idx)
	return f, nil
}

// UnpinPage releases one pin. The dirty argument overwrites the frame's
// dirty flag: the most recent unpin decides, it does not accumulate.
func (p *Pool) UnpinPage(id storage.PageID, dirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[id]
	if !ok {
		return ErrPageNotFound
	}

	f := p.frames[idx]
	if f.pins.Load() == 0 {
		return ErrNotPinned
	}

	f.dirty = dirty
	if f.pins.Add(-1) == 0 {
		p.replacer.Unpin(idx)
	}
	return nil
}

// FlushPage writes the page back if dirty. Flushing a clean resident page
// succeeds without touching the store; pin counts play no part.
func (p *Pool) FlushPage(id storage.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[id]
	if !ok {
		return ErrPageNotFound
	}
	return p.flushFrame(p.frames[idx])
}

// NewPage allocates a fresh store page and pins it in a frame. The page
// starts zero-filled and clean.
func (p *Pool) NewPage() (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, err := p.acquireFrame()
	if err != nil {
		return nil, err
	}

	id, err := p.store.AllocatePage()
	if err != nil {
		p.freeList = append(p.freeList, idx)
		return nil, fmt.Errorf("bufferpool: allocate page: %w", err)
	}

	f := p.frames[idx]
	f.id = id
	f.pins.Store(1)
	p.pageTable[id] = idx
	p.replacer.Pin(idx)
	return f, nil
}

// DeletePage drops the page from the pool and releases its id. Dirty
// contents are discarded, not written back. Deleting a page that is not
// resident still releases the id and succeeds.
func (p *Pool) DeletePage(id storage.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[id]
	if !ok {
		return p.store.DeallocatePage(id)
	}

	f := p.frames[idx]
	if f.pins.Load() > 0 {
		return ErrPagePinned
	}

	delete(p.pageTable, id)
	p.replacer.Pin(idx)
	f.reset()
	p.freeList = append(p.freeList, idx)
	return p.store.DeallocatePage(id)
}

// FlushAll flushes every resident page, skipping free frames.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.frames {
		if f.id == storage.InvalidPageID {
			continue
		}
		if err := p.flushFrame(f); err != nil {
			return err
		}
	}
	return nil
}

// Size reports how many pages are resident.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pageTable)
}

func (p *Pool) Capacity() int { return len(p.frames) }

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// acquireFrame returns the index of a clean, unmapped frame: the free list
// first, the least recent eviction candidate otherwise. A dirty victim is
// written back before its frame is handed out. Caller holds p.mu.
func (p *Pool) acquireFrame() (int, error) {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return idx, nil
	}

	idx, ok := p.replacer.Evict()
	if !ok {
		return -1, ErrNoFreeFrame
	}

	victim := p.frames[idx]
	if victim.dirty {
		if err := p.store.WritePage(victim.id, victim.data); err != nil {
			// Put the victim back as a candidate.
			p.replacer.Unpin(idx)
			return -1, fmt.Errorf("bufferpool: write back page %d: %w", victim.id, err)
		}
		victim.dirty = false
		p.stats.Writebacks++
	}

	delete(p.pageTable, victim.id)
	victim.reset()
	p.stats.Evictions++
	return idx, nil
}

// flushFrame writes the frame back if dirty. Caller holds p.mu.
func (p *Pool) flushFrame(f *Frame) error {
	if !f.dirty {
		return nil
	}
	if err := p.store.WritePage(f.id, f.data); err != nil {
		return fmt.Errorf("bufferpool: flush page %d: %w", f.id, err)
	}
	f.dirty = false
	p.stats.Writebacks++
	return nil
}
