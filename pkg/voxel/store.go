package voxel

import "iter"

// Store maps grid coordinates to per-voxel dimensions. It is a plain
// associative container; no geometric logic lives here. A coordinate
// maps to at most one voxel and a later Put overwrites (last write
// wins, no merge).
type Store struct {
	cells map[Coord]Dims
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{cells: make(map[Coord]Dims)}
}

// Put inserts or overwrites the voxel at c.
func (s *Store) Put(c Coord, d Dims) {
	s.cells[c] = d
}

// Get returns the dims at c and whether a voxel is present.
func (s *Store) Get(c Coord) (Dims, bool) {
	d, ok := s.cells[c]
	return d, ok
}

// Remove deletes the voxel at c, if any.
func (s *Store) Remove(c Coord) {
	delete(s.cells, c)
}

// Clear removes all voxels.
func (s *Store) Clear() {
	s.cells = make(map[Coord]Dims)
}

// Len returns the number of voxels.
func (s *Store) Len() int {
	return len(s.cells)
}

// Empty reports whether the store has no voxels.
func (s *Store) Empty() bool {
	return len(s.cells) == 0
}

// All iterates over every (coord, dims) pair in unspecified order.
func (s *Store) All() iter.Seq2[Coord, Dims] {
	return func(yield func(Coord, Dims) bool) {
		for c, d := range s.cells {
			if !yield(c, d) {
				return
			}
		}
	}
}
