package space

// sparseSet stores elements densely, keyed by element ID.
type sparseSet struct {
	dense  []Element
	sparse []int
}

func (s *sparseSet) has(id int) bool {
	if id <= 0 || id-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.dense) && s.dense[idx].ID == id
}

func (s *sparseSet) get(id int) (Element, bool) {
	if !s.has(id) {
		return Element{}, false
	}
	return s.dense[s.sparse[id-1]], true
}

// set inserts or replaces the element with e.ID.
func (s *sparseSet) set(e Element) {
	if e.ID <= 0 {
		return
	}
	for e.ID-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.has(e.ID) {
		s.dense[s.sparse[e.ID-1]] = e
		return
	}
	s.dense = append(s.dense, e)
	s.sparse[e.ID-1] = len(s.dense) - 1
}

// remove swaps the last element into the removed slot.
func (s *sparseSet) remove(id int) {
	if !s.has(id) {
		return
	}
	idx := s.sparse[id-1]
	last := len(s.dense) - 1
	moved := s.dense[last]

	s.dense[idx] = moved
	s.sparse[moved.ID-1] = idx

	s.dense[last] = Element{}
	s.dense = s.dense[:last]
	s.sparse[id-1] = -1
}
