package clockx

// Clock approximates least-recently-added eviction for a fixed number of
// slots with a single rotating hand. A tracked slot starts with its
// reference bit set; the hand clears bits as it sweeps and takes the first
// slot it finds already clear.
type Clock struct {
	ref     []bool
	present []bool
	hand    int
	size    int // number of tracked slots
}

func New(capacity int) *Clock {
	if capacity <= 0 {
		capacity = 1
	}
	return &Clock{
		ref:     make([]bool, capacity),
		present: make([]bool, capacity),
		hand:    0,
		size:    0,
	}
}

func (c *Clock) Capacity() int { return len(c.ref) }

// Add starts tracking a slot with a second chance. Adding a tracked slot
// again changes nothing, its reference bit included.
func (c *Clock) Add(id int) {
	if id < 0 || id >= len(c.ref) {
		return
	}
	if c.present[id] {
		return
	}
	c.present[id] = true
	c.ref[id] = true
	c.size++
}

// Remove stops tracking a slot.
func (c *Clock) Remove(id int) {
	if id < 0 || id >= len(c.ref) {
		return
	}
	if !c.present[id] {
		return
	}
	c.present[id] = false
	c.ref[id] = false
	c.size--
}

// Evict returns a victim slot id and ok flag, removing the victim from
// tracking.
func (c *Clock) Evict() (id int, ok bool) {
	n := len(c.ref)
	if n == 0 || c.size == 0 {
		return -1, false
	}

	// Up to 2 sweeps: the first clears reference bits, the second must find
	// a victim.
	for i := 0; i < 2*n; i++ {
		idx := c.hand

		if c.present[idx] {
			if !c.ref[idx] {
				c.present[idx] = false
				c.size--

				c.hand = (c.hand + 1) % n
				return idx, true
			}
			// Second chance.
			c.ref[idx] = false
		}

		c.hand = (c.hand + 1) % n
	}

	return -1, false
}

func (c *Clock) Size() int { return c.size }
