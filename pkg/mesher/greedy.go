package mesher

import (
	"sort"

	"github.com/voxelforge/voxelforge/pkg/mesh"
	"github.com/voxelforge/voxelforge/pkg/voxel"
)

// Greedy merges adjacent coplanar faces into maximal rectangles before
// lowering them to triangles. It requires every voxel to share the
// model's grid spacing; Classify enforces that precondition.
//
// The merge is greedy, not globally optimal: from each unvisited cell
// a run is extended along u first, then widened along v only while the
// whole u-span stays available. First-found extension wins, and the
// ascending (v, u) scan order makes the output deterministic for a
// given voxel set.
type Greedy struct{}

// Mesh implements Mesher. The optimize flag is ignored; greedy output
// is always the merged form.
func (Greedy) Mesh(m *voxel.Model, _ bool) []mesh.Triangle {
	return greedyMesh(m.Store(), m.Spacing(), m.Frame())
}

// cell2 addresses a face within a slice by its grid index on the two
// axes orthogonal to the slice normal.
type cell2 struct {
	u, v int
}

// greedyMesh runs the merge over a raw store so the heightmap mesher
// can reuse it on a scratch store of unit-height voxels.
func greedyMesh(s *voxel.Store, spacing voxel.Dims, frame voxel.Frame) []mesh.Triangle {
	var tris []mesh.Triangle

	for axis := 0; axis < 3; axis++ {
		for _, dir := range []mesh.Direction{mesh.Neg, mesh.Pos} {
			slices := collectSlices(s, spacing, axis, dir)

			positions := make([]float64, 0, len(slices))
			for pos := range slices {
				positions = append(positions, pos)
			}
			sort.Float64s(positions)

			for _, pos := range positions {
				tris = mergeSlice(tris, slices[pos], spacing, frame, axis, dir, pos)
			}
		}
	}
	return tris
}

// collectSlices gathers the exposed faces for one (axis, direction),
// grouped by their plane position along the normal axis. A face is
// exposed when the neighbor cell is absent or holds different dims;
// with the uniform precondition the dims check only matters at mixed
// boundaries, but it keeps exposure exact.
func collectSlices(s *voxel.Store, spacing voxel.Dims, axis int, dir mesh.Direction) map[float64]map[cell2]bool {
	delta := -1
	if dir == mesh.Pos {
		delta = 1
	}
	uAxis := (axis + 1) % 3
	vAxis := (axis + 2) % 3

	slices := make(map[float64]map[cell2]bool)
	for c, d := range s.All() {
		if nd, ok := s.Get(c.Offset(axis, delta)); ok && nd == d {
			continue
		}

		pos := float64(coordComp(c, axis)) * spacing.Axis(axis)
		if dir == mesh.Pos {
			pos += d.Axis(axis)
		}

		cells := slices[pos]
		if cells == nil {
			cells = make(map[cell2]bool)
			slices[pos] = cells
		}
		cells[cell2{u: coordComp(c, uAxis), v: coordComp(c, vAxis)}] = true
	}
	return slices
}

// mergeSlice greedily covers one slice's face cells with rectangles
// and lowers each merged rectangle to two triangles.
func mergeSlice(dst []mesh.Triangle, cells map[cell2]bool, spacing voxel.Dims, frame voxel.Frame, axis int, dir mesh.Direction, pos float64) []mesh.Triangle {
	if len(cells) == 0 {
		return dst
	}
	uAxis := (axis + 1) % 3
	vAxis := (axis + 2) % 3
	uSize := spacing.Axis(uAxis)
	vSize := spacing.Axis(vAxis)

	order := make([]cell2, 0, len(cells))
	for c := range cells {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].v != order[j].v {
			return order[i].v < order[j].v
		}
		return order[i].u < order[j].u
	})

	visited := make(map[cell2]bool, len(cells))
	for _, start := range order {
		if visited[start] {
			continue
		}

		// Extend the run along u while the next cell is free.
		uEnd := start.u
		for cells[cell2{u: uEnd + 1, v: start.v}] && !visited[cell2{u: uEnd + 1, v: start.v}] {
			uEnd++
		}

		// Widen along v only while the entire u-span is free.
		vEnd := start.v
		for {
			ok := true
			for u := start.u; u <= uEnd; u++ {
				c := cell2{u: u, v: vEnd + 1}
				if !cells[c] || visited[c] {
					ok = false
					break
				}
			}
			if !ok {
				break
			}
			vEnd++
		}

		for v := start.v; v <= vEnd; v++ {
			for u := start.u; u <= uEnd; u++ {
				visited[cell2{u: u, v: v}] = true
			}
		}

		rect := mesh.Rect{
			U0: float64(start.u) * uSize,
			V0: float64(start.v) * vSize,
			U1: float64(start.u)*uSize + float64(uEnd-start.u+1)*uSize,
			V1: float64(start.v)*vSize + float64(vEnd-start.v+1)*vSize,
		}
		dst = mesh.AppendFace(dst, frame, axis, dir, pos, rect)
	}
	return dst
}
