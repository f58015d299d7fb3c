package style

import (
	"iter"
	"slices"

	"github.com/matzehuels/stylegraph/pkg/topology"
)

// IDSet is an insertion-ordered set of topology identifiers. The zero value
// is an empty set ready to use.
type IDSet struct {
	ids   []topology.ID
	index map[topology.ID]struct{}
}

// Add inserts id and reports whether it was newly added.
func (s *IDSet) Add(id topology.ID) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[topology.ID]struct{})
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *IDSet) Remove(id topology.ID) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	s.ids = slices.DeleteFunc(s.ids, func(x topology.ID) bool { return x == id })
	return true
}

// Contains reports whether id is in the set.
func (s *IDSet) Contains(id topology.ID) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of ids.
func (s *IDSet) Len() int { return len(s.ids) }

// IDs returns the ids in insertion order.
func (s *IDSet) IDs() []topology.ID { return slices.Clone(s.ids) }

// All iterates over the ids in insertion order.
func (s *IDSet) All() iter.Seq[topology.ID] { return slices.Values(s.ids) }

// Clone returns an independent copy of the set.
func (s *IDSet) Clone() IDSet {
	var c IDSet
	for _, id := range s.ids {
		c.Add(id)
	}
	return c
}
