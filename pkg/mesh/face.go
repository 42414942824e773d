package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/voxelforge/voxelforge/pkg/voxel"
)

// Direction selects which of a voxel's two faces along an axis is meant.
type Direction int

const (
	Neg Direction = iota // face at the minimum of the axis
	Pos                  // face at the maximum of the axis
)

// Rect is an axis-aligned rectangle on the two axes orthogonal to a
// face normal, in the fixed cyclic order u=(axis+1)%3, v=(axis+2)%3.
type Rect struct {
	U0, V0, U1, V1 float64
}

// Empty reports whether the rectangle is degenerate.
func (r Rect) Empty() bool {
	return r.U1-r.U0 <= 0 || r.V1-r.V0 <= 0
}

// component writes val into slot i of a vector.
func component(p *v3.Vec, i int, val float64) {
	switch i {
	case 0:
		p.X = val
	case 1:
		p.Y = val
	default:
		p.Z = val
	}
}

// AppendFace lowers one face rectangle to two triangles and appends
// them to dst. The rectangle lies on the plane at pos along the given
// axis (0=X, 1=Y, 2=Z); dir picks the outward side. Degenerate
// rectangles append nothing.
//
// Output is in the caller's frame: for a Z-up frame the 2nd and 3rd
// components of every vertex and of the normal are swapped back, and
// the 2nd and 3rd vertex of each triangle are exchanged — the
// component swap flips chirality, so the winding has to be corrected
// to stay outward-CCW.
func AppendFace(dst []Triangle, frame voxel.Frame, axis int, dir Direction, pos float64, r Rect) []Triangle {
	if r.Empty() {
		return dst
	}

	uAxis := (axis + 1) % 3
	vAxis := (axis + 2) % 3

	// Corners in scan order: (u0,v0) (u1,v0) (u0,v1) (u1,v1).
	var corners [4]v3.Vec
	i := 0
	for _, vOff := range [2]float64{r.V0, r.V1} {
		for _, uOff := range [2]float64{r.U0, r.U1} {
			var p v3.Vec
			component(&p, axis, pos)
			component(&p, uAxis, uOff)
			component(&p, vAxis, vOff)
			corners[i] = p
			i++
		}
	}

	// Reorder to bottom-left, bottom-right, top-right, top-left with
	// outward-CCW winding. The same table holds for every axis because
	// the u/v cyclic order already encodes the handedness.
	var quad [4]v3.Vec
	if dir == Neg {
		quad = [4]v3.Vec{corners[0], corners[2], corners[3], corners[1]}
	} else {
		quad = [4]v3.Vec{corners[0], corners[1], corners[3], corners[2]}
	}

	var normal v3.Vec
	if dir == Pos {
		component(&normal, axis, 1)
	} else {
		component(&normal, axis, -1)
	}

	if frame == voxel.FrameZUp {
		for i := range quad {
			quad[i] = frame.FromInternal(quad[i])
		}
		normal = frame.FromInternal(normal)
		return append(dst,
			Triangle{Normal: normal, V: [3]v3.Vec{quad[0], quad[2], quad[1]}},
			Triangle{Normal: normal, V: [3]v3.Vec{quad[0], quad[3], quad[2]}},
		)
	}
	return append(dst,
		Triangle{Normal: normal, V: [3]v3.Vec{quad[0], quad[1], quad[2]}},
		Triangle{Normal: normal, V: [3]v3.Vec{quad[0], quad[2], quad[3]}},
	)
}
