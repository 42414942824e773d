package voxel

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the tolerance for grid-alignment and plane-coincidence
// comparisons throughout the module.
const Epsilon = 1e-9

// minCornerFor resolves an anchor point to the voxel's minimum corner.
// p and dims are already in the internal frame. The frame still matters
// for the vertical-face anchors: with a Z-up convention the 2nd and 3rd
// components were swapped on the way in, so the vertical axis the
// caller meant sits in a different slot.
func minCornerFor(f Frame, p v3.Vec, anchor Anchor, dims Dims) (v3.Vec, error) {
	hx, hy, hz := dims.X/2, dims.Y/2, dims.Z/2

	switch anchor {
	case AnchorCornerNeg:
		return p, nil
	case AnchorCenter:
		return v3.Vec{X: p.X - hx, Y: p.Y - hy, Z: p.Z - hz}, nil
	case AnchorCornerPos:
		return v3.Vec{X: p.X - dims.X, Y: p.Y - dims.Y, Z: p.Z - dims.Z}, nil
	case AnchorBottomCenter:
		if f == FrameZUp {
			return v3.Vec{X: p.X - hx, Y: p.Y - hy, Z: p.Z}, nil
		}
		return v3.Vec{X: p.X - hx, Y: p.Y, Z: p.Z - hz}, nil
	case AnchorTopCenter:
		if f == FrameZUp {
			return v3.Vec{X: p.X - hx, Y: p.Y - hy, Z: p.Z - dims.Z}, nil
		}
		return v3.Vec{X: p.X - hx, Y: p.Y - dims.Y, Z: p.Z - hz}, nil
	}
	return v3.Vec{}, fmt.Errorf("%w: %d", ErrInvalidAnchor, anchor)
}

// GridCoordOf converts a minimum corner to its integer grid cell by
// dividing each component by the grid spacing and rounding to the
// nearest integer. Ties round away from zero (math.Round); a voxel
// whose corner lands exactly halfway between two cells goes to the
// cell farther from the origin. The second result reports whether any
// component was more than Epsilon off the grid.
func GridCoordOf(min v3.Vec, spacing Dims) (Coord, bool) {
	rx := min.X / spacing.X
	ry := min.Y / spacing.Y
	rz := min.Z / spacing.Z
	c := Coord{X: int(math.Round(rx)), Y: int(math.Round(ry)), Z: int(math.Round(rz))}
	offGrid := math.Abs(rx-float64(c.X)) > Epsilon ||
		math.Abs(ry-float64(c.Y)) > Epsilon ||
		math.Abs(rz-float64(c.Z)) > Epsilon
	return c, offGrid
}

// SnapAxis snaps a single extent to a whole number of grid layers,
// never fewer than one. It reports whether the value moved by more
// than Epsilon.
func SnapAxis(value, spacing float64) (float64, bool) {
	layers := int(math.Round(value / spacing))
	if layers < 1 {
		layers = 1
	}
	snapped := float64(layers) * spacing
	return snapped, math.Abs(snapped-value) > Epsilon
}

// SnapDims snaps each axis of d independently to an integer multiple
// (at least 1) of the grid spacing. Every stored voxel size being a
// whole number of layers is what keeps greedy and heightmap meshing
// tractable.
func SnapDims(d, spacing Dims) (Dims, bool) {
	sx, cx := SnapAxis(d.X, spacing.X)
	sy, cy := SnapAxis(d.Y, spacing.Y)
	sz, cz := SnapAxis(d.Z, spacing.Z)
	return Dims{X: sx, Y: sy, Z: sz}, cx || cy || cz
}

// MinCorner returns the world-space (internal frame) minimum corner of
// the grid cell c.
func MinCorner(c Coord, spacing Dims) v3.Vec {
	return v3.Vec{
		X: float64(c.X) * spacing.X,
		Y: float64(c.Y) * spacing.Y,
		Z: float64(c.Z) * spacing.Z,
	}
}
