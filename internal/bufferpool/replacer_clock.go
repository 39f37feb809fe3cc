package bufferpool

import (
	"sync"

	"github.com/tuannm99/novapool/pkg/clockx"
)

var _ Replacer = (*ClockReplacer)(nil)

// ClockReplacer trades exact recency order for O(1) bookkeeping. It keeps
// the same candidate-set contract as LRUReplacer; only the victim order is
// approximate.
type ClockReplacer struct {
	mu sync.Mutex
	c  *clockx.Clock
}

func NewClockReplacer(capacity int) *ClockReplacer {
	return &ClockReplacer{c: clockx.New(capacity)}
}

func (r *ClockReplacer) Pin(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c.Remove(frameID)
}

func (r *ClockReplacer) Unpin(frameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c.Add(frameID)
}

func (r *ClockReplacer) Evict() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.c.Evict()
}

func (r *ClockReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.c.Size()
}
