package bufferpool

import (
	"container/list"
	"sync"
)

var _ Replacer = (*LRUReplacer)(nil)

// LRUReplacer orders candidates by the time they were last unpinned.
// Front of the list is the most recent candidate, back is the next victim.
type LRUReplacer struct {
	mu     sync.Mutex
	order  *list.List
	frames map[int]*list.Element
}

func NewLRUReplacer() *LRUReplacer {
	return &LRUReplacer{
		order:  list.New(),
		frames: make(map[int]*list.Element),
	}
}

func (r *LRUReplacer) Unpin(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.frames[frameID]; ok {
		// Already a candidate; its place in line stands.
		return
	}
	r.frames[frameID] = r.order.PushFront(frameID)
}

func (r *LRUReplacer) Pin(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.frames[frameID]; ok {
		r.order.Remove(e)
		delete(r.frames, frameID)
	}
}

func (r *LRUReplacer) Evict() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.order.Back()
	if e == nil {
		return -1, false
	}
	frameID := e.Value.(int)
	r.order.Remove(e)
	delete(r.frames, frameID)
	return frameID, true
}

func (r *LRUReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}
