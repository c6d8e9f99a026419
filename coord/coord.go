// Package coord maps integer grid coordinates to values using chained hash
// tables whose buckets are addressed by interleaving the low bits of x and y,
// so neighbouring cells spread across distinct buckets.
package coord

import (
	"errors"
	"math"
)

const (
	// MinCoord and MaxCoord bound both axes.
	MinCoord = -32767
	MaxCoord = 32767

	// DefaultCapacity is the default table size, as a power of two.
	DefaultCapacity   = 6
	DefaultLoadFactor = 0.75

	// MaxCapacity bounds the table size, as a power of two.
	MaxCapacity = 20
)

var (
	ErrInvalidCapacity        = errors.New("coord: capacity must be between 0 and 20")
	ErrInvalidLoadFactor      = errors.New("coord: load factor must be a positive finite number")
	ErrOutOfRange             = errors.New("coord: coordinates out of range")
	ErrConcurrentModification = errors.New("coord: map modified during iteration")
	ErrNoCurrent              = errors.New("coord: iterator has no current element")
)

// InRange reports whether (x, y) lies in the addressable domain.
func InRange(x, y int) bool {
	return x >= MinCoord && x <= MaxCoord && y >= MinCoord && y <= MaxCoord
}

// Key packs a coordinate pair into a single integer.
func Key(x, y int) int32 {
	return int32(x)<<16 | int32(y)&0xffff
}

// Unpack is the inverse of Key.
func Unpack(key int32) (x, y int) {
	return int(key >> 16), int(int16(key))
}

func spread(v uint32) uint32 {
	v &= 0xffff
	v = (v | v<<8) & 0x00ff00ff
	v = (v | v<<4) & 0x0f0f0f0f
	v = (v | v<<2) & 0x33333333
	v = (v | v<<1) & 0x55555555
	return v
}

func hashIndex(x, y int, bits uint) int {
	h := spread(uint32(x)) | spread(uint32(y))<<1
	return int(h & (1<<bits - 1))
}

type entry[V any] struct {
	key   int32
	value V
	next  *entry[V]
}

// table is the chained hash table shared by IntMap and MultiMap. gen changes
// on every structural modification.
type table[V any] struct {
	buckets    []*entry[V]
	bits       uint
	size       int
	loadFactor float64
	threshold  int
	gen        uint64
}

func (t *table[V]) init(capacity int, loadFactor float64) error {
	if capacity < 0 || capacity > MaxCapacity {
		return ErrInvalidCapacity
	}
	if !(loadFactor > 0) || math.IsInf(loadFactor, 0) {
		return ErrInvalidLoadFactor
	}
	t.loadFactor = loadFactor
	t.setBits(uint(capacity))
	return nil
}

func (t *table[V]) setBits(bits uint) {
	t.bits = bits
	t.buckets = make([]*entry[V], 1<<bits)
	t.threshold = int(float64(len(t.buckets)) * t.loadFactor)
}

func (t *table[V]) index(key int32) int {
	x, y := Unpack(key)
	return hashIndex(x, y, t.bits)
}

// ensureCapacity doubles the table until n entries fit under the load factor
// or the table reaches MaxCapacity.
func (t *table[V]) ensureCapacity(n int) {
	bits := t.bits
	threshold := t.threshold
	for n > threshold && bits < MaxCapacity {
		bits++
		threshold = int(float64(uint64(1)<<bits) * t.loadFactor)
	}
	if bits != t.bits {
		t.rehash(bits)
	}
}

// rehash moves every entry into a table of 1<<bits buckets, appending to the
// tail of each new chain so entries sharing a key keep their relative order.
func (t *table[V]) rehash(bits uint) {
	old := t.buckets
	t.setBits(bits)
	tails := make([]*entry[V], len(t.buckets))
	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			e.next = nil
			idx := t.index(e.key)
			if tails[idx] == nil {
				t.buckets[idx] = e
			} else {
				tails[idx].next = e
			}
			tails[idx] = e
			e = next
		}
	}
	t.gen++
}

func (t *table[V]) find(key int32) *entry[V] {
	for e := t.buckets[t.index(key)]; e != nil; e = e.next {
		if e.key == key {
			return e
		}
	}
	return nil
}

// appendEntry adds a new entry at the end of its chain.
func (t *table[V]) appendEntry(key int32, value V) {
	t.ensureCapacity(t.size + 1)
	e := &entry[V]{key: key, value: value}
	link := &t.buckets[t.index(key)]
	for *link != nil {
		link = &(*link).next
	}
	*link = e
	t.size++
	t.gen++
}

// unlink removes the entry referenced by link.
func (t *table[V]) unlink(link **entry[V]) {
	*link = (*link).next
	t.size--
	t.gen++
}

func (t *table[V]) clear() {
	if t.size == 0 {
		return
	}
	clear(t.buckets)
	t.size = 0
	t.gen++
}

func (t *table[V]) each(fn func(key int32, value V) bool) {
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(e.key, e.value) {
				return
			}
		}
	}
}
