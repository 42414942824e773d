package voxel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Model is a sparse voxel model. Callers mutate it through world-space
// anchor coordinates; it stores everything on an integer grid in the
// internal Y-up frame. A Model is not safe for concurrent use; callers
// wanting parallelism run independent models.
type Model struct {
	spacing  Dims // default voxel size, internal frame
	frame    Frame
	store    *Store
	warnings *WarningSet
}

// Option configures a Model at construction time.
type Option func(*Model)

// WithWarningHandler installs a callback for structured warnings
// (off-grid placement, dimension snapping, mesh-strategy fallback).
// With no handler, warnings are discarded.
func WithWarningHandler(fn func(Warning)) Option {
	return func(m *Model) {
		m.warnings = NewWarningSet(fn)
	}
}

// New creates a Model with the given default voxel dimensions and
// coordinate convention. Dimensions are given in user order regardless
// of convention and must all be positive.
func New(defaultDims Dims, frame Frame, opts ...Option) (*Model, error) {
	if !defaultDims.Positive() {
		return nil, fmt.Errorf("%w: got (%g, %g, %g)", ErrInvalidDimensions,
			defaultDims.X, defaultDims.Y, defaultDims.Z)
	}
	if !frame.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConvention, frame)
	}
	m := &Model{
		spacing:  frame.DimsToInternal(defaultDims),
		frame:    frame,
		store:    NewStore(),
		warnings: NewWarningSet(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Frame returns the model's coordinate convention.
func (m *Model) Frame() Frame { return m.frame }

// Spacing returns the grid spacing in the internal frame. All
// coordinate math divides by this, never by a per-voxel size.
func (m *Model) Spacing() Dims { return m.spacing }

// Store exposes the underlying voxel store. Coordinates and dims are
// in the internal frame; treat it as read-only unless you know what
// you are doing.
func (m *Model) Store() *Store { return m.store }

// Warnings exposes the model's warning set so meshing code can report
// through the same deduplicated channel.
func (m *Model) Warnings() *WarningSet { return m.warnings }

// Len returns the number of voxels in the model.
func (m *Model) Len() int { return m.store.Len() }

// Empty reports whether the model has no voxels.
func (m *Model) Empty() bool { return m.store.Empty() }

// AddVoxel adds a voxel with the model's default dimensions. The
// anchor names which point of the box (x, y, z) denotes. Inserting at
// an occupied grid cell overwrites the previous voxel.
func (m *Model) AddVoxel(x, y, z float64, anchor Anchor) error {
	return m.put(x, y, z, anchor, m.spacing, false)
}

// AddVoxelSized adds a voxel with custom dimensions, given in user
// order. The dims are snapped to whole grid layers per axis (min 1);
// a snap that moves any axis warns once per model.
func (m *Model) AddVoxelSized(x, y, z float64, anchor Anchor, dims Dims) error {
	if !dims.Positive() {
		return fmt.Errorf("%w: got (%g, %g, %g)", ErrInvalidDimensions, dims.X, dims.Y, dims.Z)
	}
	internal := m.frame.DimsToInternal(dims)
	snapped, changed := SnapDims(internal, m.spacing)
	if changed {
		m.warnings.Emitf(LevelWarn, WarnDimsSnapped,
			"custom voxel dimensions snapped to grid spacing (%g, %g, %g)",
			m.spacing.X, m.spacing.Y, m.spacing.Z)
	}
	return m.put(x, y, z, anchor, snapped, false)
}

// AddVoxels adds one default-size voxel per point, all sharing the
// same anchor.
func (m *Model) AddVoxels(points []v3.Vec, anchor Anchor) error {
	for _, p := range points {
		if err := m.AddVoxel(p.X, p.Y, p.Z, anchor); err != nil {
			return err
		}
	}
	return nil
}

// AddVoxelsSized adds one custom-size voxel per point, all sharing the
// same anchor and dimensions.
func (m *Model) AddVoxelsSized(points []v3.Vec, anchor Anchor, dims Dims) error {
	for _, p := range points {
		if err := m.AddVoxelSized(p.X, p.Y, p.Z, anchor, dims); err != nil {
			return err
		}
	}
	return nil
}

// RemoveVoxel removes the voxel whose grid cell the anchor point
// resolves to. Resolution uses the default dimensions, so a voxel
// added with custom dims is still removed by the same anchor call
// that added it.
func (m *Model) RemoveVoxel(x, y, z float64, anchor Anchor) error {
	return m.put(x, y, z, anchor, m.spacing, true)
}

// Clear removes all voxels and re-arms the once-per-code warnings.
func (m *Model) Clear() {
	m.store.Clear()
	m.warnings.Reset()
}

// put resolves an anchor point to a grid cell and inserts or removes.
func (m *Model) put(x, y, z float64, anchor Anchor, dims Dims, remove bool) error {
	p := m.frame.ToInternal(v3.Vec{X: x, Y: y, Z: z})
	min, err := minCornerFor(m.frame, p, anchor, dims)
	if err != nil {
		return err
	}
	coord, offGrid := GridCoordOf(min, m.spacing)
	if offGrid {
		m.warnings.Emitf(LevelWarn, WarnOffGrid,
			"voxel at (%g, %g, %g) anchor %s does not align exactly to the grid; rounded to (%d, %d, %d)",
			x, y, z, anchor, coord.X, coord.Y, coord.Z)
	}
	if remove {
		m.store.Remove(coord)
	} else {
		m.store.Put(coord, dims)
	}
	return nil
}

// Uniform reports whether every voxel's dimensions equal the grid
// spacing, the precondition for full greedy meshing. An empty model is
// not uniform.
func (m *Model) Uniform() bool {
	if m.store.Empty() {
		return false
	}
	for _, d := range m.store.All() {
		if d != m.spacing {
			return false
		}
	}
	return true
}
