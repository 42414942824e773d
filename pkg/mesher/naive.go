package mesher

import (
	"math"
	"sort"

	"github.com/voxelforge/voxelforge/pkg/mesh"
	"github.com/voxelforge/voxelforge/pkg/voxel"
)

// Naive is the general fallback for arbitrary per-voxel dimensions.
// Every voxel emits each of its six faces, minus the 2D overlap with
// the abutting neighbor face when the two planes coincide — that
// subtraction is what keeps abutting voxels of different size from
// duplicating coplanar geometry.
//
// The result is not guaranteed manifold: when neighbor sizes are
// asymmetric along the tested axis, a partial overlap on one face with
// no matching overlap on the neighbor's face leaves T-junctions or
// open edges. That is a known limitation of the subtraction scheme and
// is left as-is rather than patched.
type Naive struct{}

// faceDir pairs a normal axis with its direction and neighbor offset.
var faceDirs = [6]struct {
	axis  int
	dir   mesh.Direction
	delta int
}{
	{0, mesh.Pos, 1},
	{0, mesh.Neg, -1},
	{1, mesh.Pos, 1},
	{1, mesh.Neg, -1},
	{2, mesh.Pos, 1},
	{2, mesh.Neg, -1},
}

// Mesh implements Mesher. The optimize flag is ignored; there is
// nothing to merge here.
func (Naive) Mesh(m *voxel.Model, _ bool) []mesh.Triangle {
	s := m.Store()
	spacing := m.Spacing()
	frame := m.Frame()

	coords := make([]voxel.Coord, 0, s.Len())
	for c := range s.All() {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})

	var tris []mesh.Triangle
	for _, c := range coords {
		dims, _ := s.Get(c)
		min := voxel.MinCorner(c, spacing)

		for _, fd := range faceDirs {
			uAxis := (fd.axis + 1) % 3
			vAxis := (fd.axis + 2) % 3

			pos := vecComp(min, fd.axis)
			if fd.dir == mesh.Pos {
				pos += dims.Axis(fd.axis)
			}
			face := mesh.Rect{
				U0: vecComp(min, uAxis),
				V0: vecComp(min, vAxis),
			}
			face.U1 = face.U0 + dims.Axis(uAxis)
			face.V1 = face.V0 + dims.Axis(vAxis)

			rects := []mesh.Rect{face}
			if ndims, ok := s.Get(c.Offset(fd.axis, fd.delta)); ok {
				nmin := voxel.MinCorner(c.Offset(fd.axis, fd.delta), spacing)
				nplane := vecComp(nmin, fd.axis)
				if fd.dir == mesh.Neg {
					nplane += ndims.Axis(fd.axis)
				}
				if math.Abs(pos-nplane) <= voxel.Epsilon {
					neighbor := mesh.Rect{
						U0: vecComp(nmin, uAxis),
						V0: vecComp(nmin, vAxis),
					}
					neighbor.U1 = neighbor.U0 + ndims.Axis(uAxis)
					neighbor.V1 = neighbor.V0 + ndims.Axis(vAxis)
					rects = subtractOverlap(face, neighbor)
				}
			}

			for _, r := range rects {
				tris = mesh.AppendFace(tris, frame, fd.axis, fd.dir, pos, r)
			}
		}
	}
	return tris
}

// subtractOverlap removes the intersection of face and neighbor from
// face, returning up to four remainder rectangles: a left strip, a
// right strip, and top/bottom bands of the overlap's row. When the
// rectangles do not overlap the face comes back whole.
func subtractOverlap(face, neighbor mesh.Rect) []mesh.Rect {
	ix0 := math.Max(face.U0, neighbor.U0)
	ix1 := math.Min(face.U1, neighbor.U1)
	iy0 := math.Max(face.V0, neighbor.V0)
	iy1 := math.Min(face.V1, neighbor.V1)

	if ix1 <= ix0+voxel.Epsilon || iy1 <= iy0+voxel.Epsilon {
		return []mesh.Rect{face}
	}

	var out []mesh.Rect
	if ix0 > face.U0+voxel.Epsilon {
		out = append(out, mesh.Rect{U0: face.U0, V0: face.V0, U1: ix0, V1: face.V1})
	}
	if ix1 < face.U1-voxel.Epsilon {
		out = append(out, mesh.Rect{U0: ix1, V0: face.V0, U1: face.U1, V1: face.V1})
	}
	if iy0 > face.V0+voxel.Epsilon {
		out = append(out, mesh.Rect{U0: ix0, V0: face.V0, U1: ix1, V1: iy0})
	}
	if iy1 < face.V1-voxel.Epsilon {
		out = append(out, mesh.Rect{U0: ix0, V0: iy1, U1: ix1, V1: face.V1})
	}
	return out
}
