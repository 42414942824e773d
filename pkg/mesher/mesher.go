// Package mesher turns a voxel model into surface triangles. Three
// strategies sit behind one interface: a full-3D greedy merge for
// uniform voxels, a heightmap extrusion for single-layer terrain, and
// a naive per-voxel fallback with overlap subtraction. A pure
// classification function picks the strategy; Generate runs it.
package mesher

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/voxelforge/voxelforge/pkg/mesh"
	"github.com/voxelforge/voxelforge/pkg/voxel"
)

// Mesher is a meshing strategy. Mesh reads the model's store and
// returns surface triangles in the model's user frame; it never
// mutates the model beyond emitting warnings.
type Mesher interface {
	Mesh(m *voxel.Model, optimize bool) []mesh.Triangle
}

// Compile-time interface checks.
var (
	_ Mesher = Greedy{}
	_ Mesher = Heightmap{}
	_ Mesher = Naive{}
)

// Strategy names the meshing algorithm Classify selected.
type Strategy int

const (
	StrategyGreedy Strategy = iota
	StrategyHeightmap
	StrategyNaive
)

func (s Strategy) String() string {
	switch s {
	case StrategyGreedy:
		return "greedy"
	case StrategyHeightmap:
		return "heightmap"
	default:
		return "naive"
	}
}

// Classify inspects the store and picks a strategy. Greedy requires
// optimize plus uniform dims; the heightmap extrusion requires a
// single-layer uniform-footprint column set; everything else falls to
// the naive mesher. Classification is pure: no warnings, no mutation.
func Classify(m *voxel.Model, optimize bool) Strategy {
	if optimize && m.Uniform() {
		return StrategyGreedy
	}
	if _, ok := analyzeHeightmap(m); ok {
		return StrategyHeightmap
	}
	return StrategyNaive
}

// Generate meshes the model's current contents. An empty model yields
// an empty mesh. When optimize is requested but a less optimal
// strategy has to run, a warning is emitted through the model's
// warning channel; strategy fallback itself is never an error.
func Generate(m *voxel.Model, optimize bool) []mesh.Triangle {
	if m == nil || m.Empty() {
		return nil
	}

	switch Classify(m, optimize) {
	case StrategyGreedy:
		return Greedy{}.Mesh(m, optimize)

	case StrategyHeightmap:
		if optimize {
			m.Warnings().Emitf(voxel.LevelWarn, voxel.WarnHeightmapFallback,
				"using heightmap meshing for non-uniform voxel dimensions")
		}
		return Heightmap{}.Mesh(m, optimize)

	default:
		if optimize {
			m.Warnings().Emitf(voxel.LevelWarn, voxel.WarnOptimizeDisabled,
				"greedy meshing disabled for non-uniform voxel dimensions; using partial adjacency meshing")
		}
		return Naive{}.Mesh(m, optimize)
	}
}

// vecComp returns the vector component along axis (0=X, 1=Y, 2=Z).
func vecComp(p v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// coordComp returns the coordinate component along axis.
func coordComp(c voxel.Coord, axis int) int {
	switch axis {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}
