package collection

import "sync"

// list is the in-memory rendering source of one collection. It is replaced
// wholesale by loads and patched by acknowledged writes, nothing else.
type list[T any] struct {
	mu      sync.Mutex
	items   []T
	idOf    func(T) int64
	pending map[int64]struct{}
}

func newList[T any](idOf func(T) int64) *list[T] {
	return &list[T]{idOf: idOf, pending: make(map[int64]struct{})}
}

func (l *list[T]) snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *list[T]) get(id int64) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

func (l *list[T]) replace(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
}

func (l *list[T]) add(item T, front bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if front {
		l.items = append([]T{item}, l.items...)
		return
	}
	l.items = append(l.items, item)
}

// patch applies fn to the item with id. It reports false when the item is no
// longer present, which happens when a reload raced the write.
func (l *list[T]) patch(id int64, fn func(*T)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return false
	}
	fn(&l.items[i])
	return true
}

func (l *list[T]) remove(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	return true
}

// acquire marks id as having a write in flight.
func (l *list[T]) acquire(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index(id) < 0 {
		return ErrNotFound
	}
	if _, busy := l.pending[id]; busy {
		return ErrBusy
	}
	l.pending[id] = struct{}{}
	return nil
}

func (l *list[T]) release(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, id)
}

func (l *list[T]) busy(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[id]
	return ok
}

func (l *list[T]) index(id int64) int {
	for i, item := range l.items {
		if l.idOf(item) == id {
			return i
		}
	}
	return -1
}
