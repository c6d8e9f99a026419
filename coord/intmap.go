package coord

// IntMap maps coordinates to integer bitmasks. Untouched cells read as zero
// and storing zero drops the cell.
type IntMap struct {
	t table[int]
}

func NewIntMap(capacity int, loadFactor float64) (*IntMap, error) {
	m := &IntMap{}
	if err := m.t.init(capacity, loadFactor); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns the value at (x, y), or zero.
func (m *IntMap) Get(x, y int) int {
	if m == nil || !InRange(x, y) {
		return 0
	}
	if e := m.t.find(Key(x, y)); e != nil {
		return e.value
	}
	return 0
}

// Put overwrites the value at (x, y).
func (m *IntMap) Put(x, y, value int) error {
	if !InRange(x, y) {
		return ErrOutOfRange
	}
	key := Key(x, y)
	if value == 0 {
		m.removeKey(key)
		return nil
	}
	if e := m.t.find(key); e != nil {
		e.value = value
		return nil
	}
	m.t.appendEntry(key, value)
	return nil
}

// SetBits ORs mask into the value at (x, y).
func (m *IntMap) SetBits(x, y, mask int) error {
	if !InRange(x, y) {
		return ErrOutOfRange
	}
	if mask == 0 {
		return nil
	}
	key := Key(x, y)
	if e := m.t.find(key); e != nil {
		e.value |= mask
		return nil
	}
	m.t.appendEntry(key, mask)
	return nil
}

// Remove deletes the cell and returns its previous value.
func (m *IntMap) Remove(x, y int) (int, bool) {
	if !InRange(x, y) {
		return 0, false
	}
	return m.removeKey(Key(x, y))
}

func (m *IntMap) removeKey(key int32) (int, bool) {
	for link := &m.t.buckets[m.t.index(key)]; *link != nil; link = &(*link).next {
		if (*link).key == key {
			v := (*link).value
			m.t.unlink(link)
			return v, true
		}
	}
	return 0, false
}

func (m *IntMap) Len() int {
	if m == nil {
		return 0
	}
	return m.t.size
}

// Each visits every stored cell until fn returns false.
func (m *IntMap) Each(fn func(x, y, value int) bool) {
	if m == nil {
		return
	}
	m.t.each(func(key int32, value int) bool {
		x, y := Unpack(key)
		return fn(x, y, value)
	})
}

// PutAll copies every cell of other into m.
func (m *IntMap) PutAll(other *IntMap) error {
	var err error
	other.Each(func(x, y, value int) bool {
		err = m.Put(x, y, value)
		return err == nil
	})
	return err
}

func (m *IntMap) Clear() {
	m.t.clear()
}
