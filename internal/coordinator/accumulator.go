package coordinator

// Accumulator is an insertion-ordered, capacity-bounded set of accepted
// items. It owns the "already seen" membership test that guides subsequent
// generation rounds. One Accumulator belongs to exactly one run.
//
// It cannot fail, only decline.
type Accumulator struct {
	norm     *Normalizer
	capacity int
	items    []string
	seen     map[string]bool
}

// NewAccumulator creates an Accumulator bounded to capacity items.
func NewAccumulator(norm *Normalizer, capacity int) *Accumulator {
	return &Accumulator{
		norm:     norm,
		capacity: capacity,
		items:    make([]string, 0, capacity),
		seen:     make(map[string]bool, capacity),
	}
}

// TryAdd accepts the candidate iff its normalized key has not been seen
// and capacity has not been reached. State mutates only on acceptance.
func (a *Accumulator) TryAdd(text string) bool {
	if len(a.items) >= a.capacity {
		return false
	}
	key := a.norm.Normalize(text)
	if key == "" || a.seen[key] {
		return false
	}
	a.seen[key] = true
	a.items = append(a.items, text)
	return true
}

// Seen reports whether the candidate's normalized key is already present.
func (a *Accumulator) Seen(text string) bool {
	return a.seen[a.norm.Normalize(text)]
}

// Len returns the number of accepted items.
func (a *Accumulator) Len() int {
	return len(a.items)
}

// Full reports whether capacity has been reached.
func (a *Accumulator) Full() bool {
	return len(a.items) >= a.capacity
}

// Items returns the accepted items in insertion order, truncated to
// capacity. The returned slice is a copy.
func (a *Accumulator) Items() []string {
	n := len(a.items)
	if n > a.capacity {
		n = a.capacity
	}
	out := make([]string, n)
	copy(out, a.items[:n])
	return out
}
