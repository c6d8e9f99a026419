package coord

// MultiMap maps coordinates to ordered lists of values. Values at one cell
// are kept in insertion order.
type MultiMap[T comparable] struct {
	t table[T]
}

func NewMultiMap[T comparable](capacity int, loadFactor float64) (*MultiMap[T], error) {
	m := &MultiMap[T]{}
	if err := m.t.init(capacity, loadFactor); err != nil {
		return nil, err
	}
	return m, nil
}

// Put appends value to the list at (x, y).
func (m *MultiMap[T]) Put(x, y int, value T) error {
	if !InRange(x, y) {
		return ErrOutOfRange
	}
	m.t.appendEntry(Key(x, y), value)
	return nil
}

// GetAll returns an iterator over the values at (x, y).
func (m *MultiMap[T]) GetAll(x, y int) *Iter[T] {
	it := &Iter[T]{m: m, gen: m.t.gen}
	if !InRange(x, y) {
		it.done = true
		return it
	}
	it.key = Key(x, y)
	it.link = &m.t.buckets[m.t.index(it.key)]
	return it
}

// Values collects the values at (x, y).
func (m *MultiMap[T]) Values(x, y int) ([]T, error) {
	var out []T
	it := m.GetAll(x, y)
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

// Remove deletes the first value at (x, y) equal to value.
func (m *MultiMap[T]) Remove(x, y int, value T) bool {
	if !InRange(x, y) {
		return false
	}
	key := Key(x, y)
	for link := &m.t.buckets[m.t.index(key)]; *link != nil; link = &(*link).next {
		if (*link).key == key && (*link).value == value {
			m.t.unlink(link)
			return true
		}
	}
	return false
}

// RemoveAll drops every value at (x, y) and returns how many were removed.
func (m *MultiMap[T]) RemoveAll(x, y int) int {
	if !InRange(x, y) {
		return 0
	}
	key := Key(x, y)
	removed := 0
	for link := &m.t.buckets[m.t.index(key)]; *link != nil; {
		if (*link).key == key {
			m.t.unlink(link)
			removed++
			continue
		}
		link = &(*link).next
	}
	return removed
}

func (m *MultiMap[T]) Len() int {
	if m == nil {
		return 0
	}
	return m.t.size
}

// Iter walks the values stored at one cell. Any structural change to the map
// not made through Iter.Remove stops iteration with ErrConcurrentModification.
//
//	it := m.GetAll(x, y)
//	for it.Next() {
//		use(it.Value())
//	}
//	if err := it.Err(); err != nil { ... }
type Iter[T comparable] struct {
	m    *MultiMap[T]
	key  int32
	gen  uint64
	link **entry[T] // link holding cur, or the next candidate when cur is nil
	cur  *entry[T]
	err  error
	done bool
}

// Next advances to the next value and reports whether there is one.
func (it *Iter[T]) Next() bool {
	if it.done {
		return false
	}
	if !it.check() {
		return false
	}
	if it.cur != nil {
		it.link = &it.cur.next
		it.cur = nil
	}
	for *it.link != nil && (*it.link).key != it.key {
		it.link = &(*it.link).next
	}
	if *it.link == nil {
		it.done = true
		return false
	}
	it.cur = *it.link
	return true
}

// Value returns the current value.
func (it *Iter[T]) Value() T {
	if it.cur == nil {
		var zero T
		return zero
	}
	return it.cur.value
}

// Remove deletes the current value without invalidating the iterator.
func (it *Iter[T]) Remove() error {
	if !it.check() {
		return it.err
	}
	if it.cur == nil {
		return ErrNoCurrent
	}
	it.m.t.unlink(it.link)
	it.gen = it.m.t.gen
	it.cur = nil
	return nil
}

// Err returns the error that stopped iteration, if any.
func (it *Iter[T]) Err() error {
	return it.err
}

func (it *Iter[T]) check() bool {
	if it.err != nil {
		return false
	}
	if it.gen != it.m.t.gen {
		it.err = ErrConcurrentModification
		it.done = true
		it.cur = nil
		return false
	}
	return true
}
