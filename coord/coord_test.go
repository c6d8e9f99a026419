package coord

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	cases := [][2]int{{0, 0}, {1, -1}, {-1, 1}, {MinCoord, MaxCoord}, {MaxCoord, MinCoord}, {123, -4567}}
	seen := make(map[int32]bool)
	for _, c := range cases {
		k := Key(c[0], c[1])
		x, y := Unpack(k)
		assert.Equal(t, c[0], x)
		assert.Equal(t, c[1], y)
		assert.False(t, seen[k], "duplicate key for %v", c)
		seen[k] = true
	}
}

func TestHashSpreadsNeighbours(t *testing.T) {
	const bits = 6
	used := make(map[int]int)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			used[hashIndex(x, y, bits)]++
		}
	}
	// an 8x8 block fills a 64 bucket table exactly once
	assert.Len(t, used, 64)

	used = make(map[int]int)
	for y := -4; y < 4; y++ {
		for x := -4; x < 4; x++ {
			used[hashIndex(x, y, bits)]++
		}
	}
	assert.Len(t, used, 64)
}

func TestConstructionErrors(t *testing.T) {
	cases := []struct {
		name       string
		capacity   int
		loadFactor float64
		err        error
	}{
		{"negative_capacity", -1, 0.75, ErrInvalidCapacity},
		{"huge_capacity", MaxCapacity + 1, 0.75, ErrInvalidCapacity},
		{"zero_load", 4, 0, ErrInvalidLoadFactor},
		{"negative_load", 4, -1, ErrInvalidLoadFactor},
		{"nan_load", 4, math.NaN(), ErrInvalidLoadFactor},
		{"inf_load", 4, math.Inf(1), ErrInvalidLoadFactor},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewIntMap(c.capacity, c.loadFactor)
			assert.ErrorIs(t, err, c.err)
			_, err = NewMultiMap[string](c.capacity, c.loadFactor)
			assert.ErrorIs(t, err, c.err)
		})
	}
}

func TestTinyLoadFactorGrowth(t *testing.T) {
	m, err := NewIntMap(0, 1e-9)
	require.NoError(t, err)
	for x := 0; x < 3; x++ {
		require.NoError(t, m.Put(x, 0, x+1))
	}
	assert.Equal(t, 1<<MaxCapacity, len(m.t.buckets))
	for x := 0; x < 3; x++ {
		assert.Equal(t, x+1, m.Get(x, 0))
	}

	mm, err := NewMultiMap[int](0, 1e-9)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, mm.Put(i, i, i))
	}
	assert.Equal(t, 1<<MaxCapacity, len(mm.t.buckets))
	assert.Equal(t, 5, mm.Len())
}

func TestIntMap(t *testing.T) {
	m, err := NewIntMap(0, DefaultLoadFactor)
	require.NoError(t, err)

	assert.Equal(t, 0, m.Get(3, 4))
	require.NoError(t, m.Put(3, 4, 5))
	assert.Equal(t, 5, m.Get(3, 4))
	require.NoError(t, m.Put(3, 4, 2))
	assert.Equal(t, 2, m.Get(3, 4), "put overwrites")

	require.NoError(t, m.SetBits(3, 4, 1))
	assert.Equal(t, 3, m.Get(3, 4))
	require.NoError(t, m.SetBits(-3, -4, 8))
	assert.Equal(t, 8, m.Get(-3, -4), "setBits inserts")
	assert.Equal(t, 2, m.Len())

	v, ok := m.Remove(3, 4)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 0, m.Get(3, 4))
	_, ok = m.Remove(3, 4)
	assert.False(t, ok)

	require.NoError(t, m.Put(-3, -4, 0))
	assert.Equal(t, 0, m.Len(), "storing zero drops the cell")

	assert.ErrorIs(t, m.Put(MaxCoord+1, 0, 1), ErrOutOfRange)
	assert.ErrorIs(t, m.SetBits(0, MinCoord-1, 1), ErrOutOfRange)
	assert.Equal(t, 0, m.Get(MaxCoord+1, 0))
}

func TestIntMapGrowth(t *testing.T) {
	m, err := NewIntMap(0, DefaultLoadFactor)
	require.NoError(t, err)

	for y := -20; y < 20; y++ {
		for x := -20; x < 20; x++ {
			require.NoError(t, m.Put(x, y, (x+100)*1000+(y+100)))
		}
	}
	assert.Equal(t, 1600, m.Len())
	assert.GreaterOrEqual(t, float64(len(m.t.buckets))*m.t.loadFactor, 1600.0)
	for y := -20; y < 20; y++ {
		for x := -20; x < 20; x++ {
			require.Equal(t, (x+100)*1000+(y+100), m.Get(x, y))
		}
	}

	copied, err := NewIntMap(DefaultCapacity, DefaultLoadFactor)
	require.NoError(t, err)
	require.NoError(t, copied.PutAll(m))
	count := 0
	copied.Each(func(x, y, value int) bool {
		count++
		assert.Equal(t, m.Get(x, y), value)
		return true
	})
	assert.Equal(t, 1600, count)

	copied.Clear()
	assert.Equal(t, 0, copied.Len())
	assert.Equal(t, 0, copied.Get(0, 0))
}

func TestMultiMapOrderAndRemoveAll(t *testing.T) {
	m, err := NewMultiMap[string](DefaultCapacity, DefaultLoadFactor)
	require.NoError(t, err)

	require.NoError(t, m.Put(2, 3, "a"))
	require.NoError(t, m.Put(2, 3, "b"))
	require.NoError(t, m.Put(-7, 1, "other"))
	require.NoError(t, m.Put(2, 3, "c"))

	vals, err := m.Values(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, vals)

	assert.Equal(t, 3, m.RemoveAll(2, 3))
	it := m.GetAll(2, 3)
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
	assert.False(t, it.Next(), "stays terminated")

	vals, err = m.Values(-7, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, vals)
	assert.Equal(t, 1, m.Len())
}

func TestMultiMapRemove(t *testing.T) {
	m, err := NewMultiMap[int](DefaultCapacity, DefaultLoadFactor)
	require.NoError(t, err)
	for _, v := range []int{1, 2, 1, 3} {
		require.NoError(t, m.Put(0, 0, v))
	}

	assert.True(t, m.Remove(0, 0, 1))
	vals, _ := m.Values(0, 0)
	assert.Equal(t, []int{2, 1, 3}, vals, "only the first match goes")

	assert.False(t, m.Remove(0, 0, 9))
	assert.False(t, m.Remove(1, 0, 2))
	assert.Equal(t, 0, m.RemoveAll(5, 5))
}

func TestMultiMapGrowthKeepsChains(t *testing.T) {
	m, err := NewMultiMap[int](0, 0.5)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		for x := 0; x < 30; x++ {
			require.NoError(t, m.Put(x, x%3, i))
		}
	}
	assert.Equal(t, 300, m.Len())
	for x := 0; x < 30; x++ {
		vals, err := m.Values(x, x%3)
		require.NoError(t, err)
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, vals)
	}
}

func TestIterConcurrentModification(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(m *MultiMap[int])
	}{
		{"put", func(m *MultiMap[int]) { _ = m.Put(9, 9, 1) }},
		{"remove", func(m *MultiMap[int]) { m.Remove(0, 0, 3) }},
		{"remove_all_other_cell", func(m *MultiMap[int]) { _ = m.Put(4, 4, 1); m.RemoveAll(4, 4) }},
		{"grow", func(m *MultiMap[int]) {
			for i := 0; i < 100; i++ {
				_ = m.Put(i, -i, i)
			}
		}},
	}
	for _, c := range mutations {
		t.Run(c.name, func(t *testing.T) {
			m, err := NewMultiMap[int](2, DefaultLoadFactor)
			require.NoError(t, err)
			for _, v := range []int{1, 2, 3} {
				require.NoError(t, m.Put(0, 0, v))
			}

			it := m.GetAll(0, 0)
			require.True(t, it.Next())
			assert.Equal(t, 1, it.Value())
			c.mutate(m)
			assert.False(t, it.Next())
			assert.ErrorIs(t, it.Err(), ErrConcurrentModification)
			assert.ErrorIs(t, it.Remove(), ErrConcurrentModification)
		})
	}
}

func TestIterRemove(t *testing.T) {
	m, err := NewMultiMap[int](DefaultCapacity, DefaultLoadFactor)
	require.NoError(t, err)
	for _, v := range []int{1, 2, 3, 4} {
		require.NoError(t, m.Put(1, 1, v))
	}

	it := m.GetAll(1, 1)
	assert.ErrorIs(t, it.Remove(), ErrNoCurrent)
	var kept []int
	for it.Next() {
		if it.Value()%2 == 0 {
			require.NoError(t, it.Remove())
			continue
		}
		kept = append(kept, it.Value())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int{1, 3}, kept)

	vals, err := m.Values(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, vals)
	assert.Equal(t, 2, m.Len())
}
