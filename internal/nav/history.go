package nav

import "sync"

// History is a stack of visited routes.
type History struct {
	mu      sync.Mutex
	entries []Route
}

// NewHistory creates a history positioned at start.
func NewHistory(start Route) *History {
	return &History{entries: []Route{start}}
}

// Current returns the top entry.
func (h *History) Current() Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

// Push adds r on top of the stack.
func (h *History) Push(r Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, r)
}

// Redirect replaces the top entry with r, so Back never returns to it.
// When the entry below is already r the top is popped instead.
func (h *History) Redirect(r Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.entries)
	if n > 1 && h.entries[n-2] == r {
		h.entries = h.entries[:n-1]
		return
	}
	h.entries[n-1] = r
}

// Back pops the top entry and returns the new one. The first entry is never
// popped.
func (h *History) Back() (Route, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 1 {
		return h.entries[0], false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Entries returns a copy of the stack, oldest first.
func (h *History) Entries() []Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Route, len(h.entries))
	copy(out, h.entries)
	return out
}
