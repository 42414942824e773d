package mesher

import (
	"math"
	"sort"

	"github.com/voxelforge/voxelforge/pkg/mesh"
	"github.com/voxelforge/voxelforge/pkg/voxel"
)

// Heightmap is a specialized extrusion for terrain-shaped voxel sets:
// a single layer of columns sharing the grid footprint, with only the
// height varying. With optimize it expands each column into stacked
// unit voxels and delegates to the greedy merge, which also merges
// across columns; without it, the columns are sliced into height
// intervals and walls are emitted only where a neighboring column does
// not cover the slab.
type Heightmap struct{}

// column addresses a heightmap cell on the two horizontal axes.
type column struct {
	x, z int
}

// heightmapScene is the analyzed form of an applicable store.
type heightmapScene struct {
	baseY   int
	heights map[column]float64 // snapped to whole layers
	snapped bool               // true when snapping moved any height
}

// analyzeHeightmap checks the heightmap preconditions in order: one
// base layer along the vertical axis, grid-spacing footprints, at most
// one voxel per column. The first violation makes the store not
// applicable. Heights come back snapped to whole layers (min 1).
func analyzeHeightmap(m *voxel.Model) (*heightmapScene, bool) {
	spacing := m.Spacing()
	sc := &heightmapScene{heights: make(map[column]float64)}

	first := true
	for c, d := range m.Store().All() {
		if first {
			sc.baseY = c.Y
			first = false
		} else if c.Y != sc.baseY {
			return nil, false
		}

		if math.Abs(d.X-spacing.X) > voxel.Epsilon || math.Abs(d.Z-spacing.Z) > voxel.Epsilon {
			return nil, false
		}

		col := column{x: c.X, z: c.Z}
		if _, dup := sc.heights[col]; dup {
			return nil, false
		}
		sc.heights[col] = d.Y
	}
	if first {
		return nil, false
	}

	for col, h := range sc.heights {
		snapped, changed := voxel.SnapAxis(h, spacing.Y)
		if changed {
			sc.snapped = true
		}
		sc.heights[col] = snapped
	}
	return sc, true
}

// Mesh implements Mesher. It returns nil when the store is not a
// heightmap; Generate only routes here after Classify says it is.
func (Heightmap) Mesh(m *voxel.Model, optimize bool) []mesh.Triangle {
	sc, ok := analyzeHeightmap(m)
	if !ok {
		return nil
	}
	spacing := m.Spacing()

	if sc.snapped {
		m.Warnings().Emitf(voxel.LevelWarn, voxel.WarnHeightSnapped,
			"heightmap meshing snapped voxel heights to grid spacing %g to avoid partial-height artifacts",
			spacing.Y)
	}

	if optimize {
		return sc.meshGreedy(spacing, m.Frame())
	}
	return sc.meshStepped(spacing, m.Frame())
}

// meshGreedy expands every column into unit-height stacked voxels in a
// scratch store and hands the whole thing to the greedy merge, which
// merges across columns as well as within them.
func (sc *heightmapScene) meshGreedy(spacing voxel.Dims, frame voxel.Frame) []mesh.Triangle {
	scratch := voxel.NewStore()
	for col, h := range sc.heights {
		layers := int(math.Round(h / spacing.Y))
		for layer := 0; layer < layers; layer++ {
			scratch.Put(voxel.Coord{X: col.x, Y: sc.baseY + layer, Z: col.z}, spacing)
		}
	}
	return greedyMesh(scratch, spacing, frame)
}

// meshStepped emits the stepped extrusion directly. For each interval
// between consecutive distinct heights, a column taller than the
// interval's floor contributes side walls wherever a neighbor does not
// cover the slab, a top cap when its height ends at this slab, and a
// bottom cap on the lowest interval only. Stacked slabs of one column
// share no internal faces.
func (sc *heightmapScene) meshStepped(spacing voxel.Dims, frame voxel.Frame) []mesh.Triangle {
	baseY := float64(sc.baseY) * spacing.Y

	seen := map[float64]bool{0: true}
	thresholds := []float64{0}
	for _, h := range sc.heights {
		if !seen[h] {
			seen[h] = true
			thresholds = append(thresholds, h)
		}
	}
	sort.Float64s(thresholds)

	cols := make([]column, 0, len(sc.heights))
	for col := range sc.heights {
		cols = append(cols, col)
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].x != cols[j].x {
			return cols[i].x < cols[j].x
		}
		return cols[i].z < cols[j].z
	})

	var tris []mesh.Triangle
	for i := 0; i+1 < len(thresholds); i++ {
		h0, h1 := thresholds[i], thresholds[i+1]
		if h1 <= h0+voxel.Epsilon {
			continue
		}
		y0, y1 := baseY+h0, baseY+h1

		for _, col := range cols {
			height := sc.heights[col]
			if height <= h0+voxel.Epsilon {
				continue
			}
			x0 := float64(col.x) * spacing.X
			x1 := x0 + spacing.X
			z0 := float64(col.z) * spacing.Z
			z1 := z0 + spacing.Z

			if sc.heights[column{x: col.x - 1, z: col.z}] <= h0+voxel.Epsilon {
				tris = mesh.AppendFace(tris, frame, 0, mesh.Neg, x0, mesh.Rect{U0: y0, V0: z0, U1: y1, V1: z1})
			}
			if sc.heights[column{x: col.x + 1, z: col.z}] <= h0+voxel.Epsilon {
				tris = mesh.AppendFace(tris, frame, 0, mesh.Pos, x1, mesh.Rect{U0: y0, V0: z0, U1: y1, V1: z1})
			}
			if sc.heights[column{x: col.x, z: col.z - 1}] <= h0+voxel.Epsilon {
				tris = mesh.AppendFace(tris, frame, 2, mesh.Neg, z0, mesh.Rect{U0: x0, V0: y0, U1: x1, V1: y1})
			}
			if sc.heights[column{x: col.x, z: col.z + 1}] <= h0+voxel.Epsilon {
				tris = mesh.AppendFace(tris, frame, 2, mesh.Pos, z1, mesh.Rect{U0: x0, V0: y0, U1: x1, V1: y1})
			}

			if height <= h1+voxel.Epsilon {
				tris = mesh.AppendFace(tris, frame, 1, mesh.Pos, y1, mesh.Rect{U0: z0, V0: x0, U1: z1, V1: x1})
			}
			if i == 0 {
				tris = mesh.AppendFace(tris, frame, 1, mesh.Neg, y0, mesh.Rect{U0: z0, V0: x0, U1: z1, V1: x1})
			}
		}
	}
	return tris
}
