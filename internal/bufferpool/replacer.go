package bufferpool

// Replacer tracks which frames are eviction candidates. A frame becomes a
// candidate when its last pin is released and stops being one the moment it
// is pinned again. Implementations guard their state with their own lock;
// the pool calls them while holding its latch and they never call back.
type Replacer interface {
	// Pin removes the frame from the candidate set. No-op if absent.
	Pin(frameID int)

	// Unpin adds the frame as the most recent candidate. A frame that is
	// already a candidate keeps its place: recency is not refreshed.
	Unpin(frameID int)

	// Evict removes and returns the least recent candidate. ok is false
	// when no candidates exist, which is a normal condition.
	Evict() (frameID int, ok bool)

	// Size reports the current candidate count.
	Size() int
}
