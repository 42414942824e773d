// Package voxel defines the sparse voxel model: grid coordinates,
// per-voxel dimensions, anchor resolution and the coordinate-frame
// convention. The model is the single source of truth for voxel
// presence and size; meshing lives in pkg/mesher.
package voxel

import (
	"errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Fatal input errors. Anything else the model corrects and reports
// through the warning channel instead of failing.
var (
	ErrInvalidDimensions = errors.New("voxel: dimensions must be three positive numbers")
	ErrInvalidConvention = errors.New("voxel: unknown coordinate convention")
	ErrInvalidAnchor     = errors.New("voxel: invalid anchor")
)

// Coord is an integer grid cell. Coordinates are always expressed in
// the internal Y-up frame regardless of the model's convention.
type Coord struct {
	X, Y, Z int
}

// Offset returns the coordinate shifted by delta along the given axis
// (0=X, 1=Y, 2=Z).
func (c Coord) Offset(axis, delta int) Coord {
	switch axis {
	case 0:
		c.X += delta
	case 1:
		c.Y += delta
	default:
		c.Z += delta
	}
	return c
}

// Dims is a per-axis extent. Like Coord it lives in the internal Y-up
// frame once stored; user-facing values are reordered at the boundary.
type Dims struct {
	X, Y, Z float64
}

// Positive reports whether all three components are strictly positive.
func (d Dims) Positive() bool {
	return d.X > 0 && d.Y > 0 && d.Z > 0
}

// Axis returns the component along the given axis (0=X, 1=Y, 2=Z).
func (d Dims) Axis(axis int) float64 {
	switch axis {
	case 0:
		return d.X
	case 1:
		return d.Y
	default:
		return d.Z
	}
}

// Vec converts the dims to a vector.
func (d Dims) Vec() v3.Vec {
	return v3.Vec{X: d.X, Y: d.Y, Z: d.Z}
}

// Anchor identifies the reference point within a voxel's box that a
// caller-supplied coordinate denotes.
type Anchor int

const (
	AnchorCornerNeg    Anchor = iota // minimum corner
	AnchorCornerPos                  // maximum corner
	AnchorCenter                     // box center
	AnchorBottomCenter               // center of the bottom face along the vertical axis
	AnchorTopCenter                  // center of the top face along the vertical axis
)

// Valid reports whether a is a known anchor.
func (a Anchor) Valid() bool {
	return a >= AnchorCornerNeg && a <= AnchorTopCenter
}

func (a Anchor) String() string {
	switch a {
	case AnchorCornerNeg:
		return "corner-neg"
	case AnchorCornerPos:
		return "corner-pos"
	case AnchorCenter:
		return "center"
	case AnchorBottomCenter:
		return "bottom-center"
	case AnchorTopCenter:
		return "top-center"
	default:
		return "unknown"
	}
}

// ParseAnchor maps a DSL/user spelling to an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	switch s {
	case "corner-neg", "corner_neg":
		return AnchorCornerNeg, nil
	case "corner-pos", "corner_pos":
		return AnchorCornerPos, nil
	case "center":
		return AnchorCenter, nil
	case "bottom-center", "bottom_center":
		return AnchorBottomCenter, nil
	case "top-center", "top_center":
		return AnchorTopCenter, nil
	}
	return 0, ErrInvalidAnchor
}
