package mesher_test

import (
	"math"
	"testing"

	"github.com/aquilax/go-perlin"

	"github.com/voxelforge/voxelforge/pkg/mesh"
	"github.com/voxelforge/voxelforge/pkg/mesher"
	"github.com/voxelforge/voxelforge/pkg/voxel"
)

// addColumn inserts one heightmap column: a grid-footprint voxel whose
// vertical extent is height layers.
func addColumn(t *testing.T, m *voxel.Model, x, z float64, height float64) {
	t.Helper()
	if err := m.AddVoxelSized(x, 0, z, voxel.AnchorCornerNeg, voxel.Dims{X: 1, Y: height, Z: 1}); err != nil {
		t.Fatalf("AddVoxelSized(%g, %g): %v", x, z, err)
	}
}

func TestSteppedExtrusion(t *testing.T) {
	m, warnings := newModel(t, voxel.FrameYUp)
	addColumn(t, m, 0, 0, 1)
	addColumn(t, m, 1, 0, 2)

	tris := mesher.Generate(m, false)
	// Interval [0,1): five faces around the short column, four around
	// the tall one (its west wall is covered). Interval [1,2): five
	// faces around the tall column's upper slab.
	if len(tris) != 28 {
		t.Fatalf("got %d triangles, want 28", len(tris))
	}
	if got := mesh.SurfaceArea(tris); math.Abs(got-14) > 1e-9 {
		t.Errorf("area = %g, want 14", got)
	}
	// Slab boundaries line up with neighbor walls, so the stepped
	// output is watertight here.
	if open := mesh.OpenEdges(tris); open != 0 {
		t.Errorf("%d open edges, want 0", open)
	}
	checkWinding(t, tris)
	if len(*warnings) != 0 {
		t.Errorf("unexpected warnings: %v", *warnings)
	}
}

func TestHeightmapOptimizeDelegatesToGreedy(t *testing.T) {
	m, warnings := newModel(t, voxel.FrameYUp)
	addColumn(t, m, 0, 0, 1)
	addColumn(t, m, 1, 0, 2)

	tris := mesher.Generate(m, true)
	// The columns expand to an L of three unit cubes before merging.
	if len(tris) != 20 {
		t.Fatalf("got %d triangles, want 20", len(tris))
	}
	if got := mesh.SurfaceArea(tris); math.Abs(got-14) > 1e-9 {
		t.Errorf("area = %g, want 14", got)
	}
	checkWinding(t, tris)

	// The wall above the step merges across both layers while the
	// horizontal caps split at the step height, so the merged mesh has
	// T-junction seams.
	if open := mesh.OpenEdges(tris); open == 0 {
		t.Error("expected open T-junction edges in the merged mesh")
	}

	if !hasWarning(*warnings, voxel.WarnHeightmapFallback) {
		t.Errorf("expected %s warning, got %v", voxel.WarnHeightmapFallback, *warnings)
	}
}

func TestHeightmapMatchesSteppedArea(t *testing.T) {
	build := func() *voxel.Model {
		m, _ := newModel(t, voxel.FrameYUp)
		addColumn(t, m, 0, 0, 3)
		addColumn(t, m, 1, 0, 1)
		addColumn(t, m, 0, 1, 2)
		addColumn(t, m, 1, 1, 2)
		return m
	}

	merged := areaByPlane(mesher.Heightmap{}.Mesh(build(), true))
	stepped := areaByPlane(mesher.Heightmap{}.Mesh(build(), false))

	if len(merged) != len(stepped) {
		t.Fatalf("face plane sets differ: %v vs %v", merged, stepped)
	}
	for p, a := range merged {
		if b := stepped[p]; math.Abs(a-b) > 1e-9 {
			t.Errorf("plane %v: merged area %g, stepped area %g", p, a, b)
		}
	}
}

func TestHeightSnapSafetyNet(t *testing.T) {
	m, warnings := newModel(t, voxel.FrameYUp)
	addColumn(t, m, 0, 0, 1)
	// A fractional height cannot enter through AddVoxelSized, which
	// snaps on insert; planting it directly exercises the mesher's own
	// guard.
	m.Store().Put(voxel.Coord{X: 1}, voxel.Dims{X: 1, Y: 1.5, Z: 1})

	tris := mesher.Heightmap{}.Mesh(m, false)
	if len(tris) == 0 {
		t.Fatal("expected triangles")
	}
	if !hasWarning(*warnings, voxel.WarnHeightSnapped) {
		t.Errorf("expected %s warning, got %v", voxel.WarnHeightSnapped, *warnings)
	}
	// 1.5 snaps to 2 layers, giving the same terrain as the stepped
	// extrusion test.
	if got := mesh.SurfaceArea(tris); math.Abs(got-14) > 1e-9 {
		t.Errorf("area = %g, want 14", got)
	}
}

func TestFlatTerrainClosed(t *testing.T) {
	m, _ := newModel(t, voxel.FrameYUp)
	for x := 0.0; x < 4; x++ {
		for z := 0.0; z < 4; z++ {
			addColumn(t, m, x, z, 2)
		}
	}

	for _, optimize := range []bool{true, false} {
		tris := mesher.Generate(m, optimize)
		if len(tris) == 0 {
			t.Fatalf("optimize=%v: no triangles", optimize)
		}
		// A flat 4x4 slab of height 2: top and bottom 16 each, four
		// sides of 8.
		if got := mesh.SurfaceArea(tris); math.Abs(got-64) > 1e-9 {
			t.Errorf("optimize=%v: area = %g, want 64", optimize, got)
		}
		if open := mesh.OpenEdges(tris); open != 0 {
			t.Errorf("optimize=%v: %d open edges, want 0", optimize, open)
		}
		checkWinding(t, tris)
	}
}

func TestPerlinTerrain(t *testing.T) {
	p := perlin.NewPerlin(2, 2, 3, 42)

	build := func() *voxel.Model {
		m, _ := newModel(t, voxel.FrameYUp)
		const size = 8
		for x := 0; x < size; x++ {
			for z := 0; z < size; z++ {
				noise := (p.Noise2D(float64(x)/size, float64(z)/size) + 1) / 2
				// The parity term keeps adjacent columns at unequal
				// heights whatever the noise does.
				height := 1 + float64((x+z)%2) + math.Round(noise*3)
				addColumn(t, m, float64(x), float64(z), height)
			}
		}
		return m
	}

	m := build()
	if mesher.Classify(m, true) != mesher.StrategyHeightmap {
		t.Fatal("terrain did not classify as heightmap")
	}

	merged := mesher.Generate(m, true)
	stepped := mesher.Generate(build(), false)
	if len(merged) == 0 || len(stepped) == 0 {
		t.Fatal("expected triangles from both modes")
	}
	if len(merged) > len(stepped) {
		t.Errorf("merging increased triangle count: %d > %d", len(merged), len(stepped))
	}
	if a, b := mesh.SurfaceArea(merged), mesh.SurfaceArea(stepped); math.Abs(a-b) > 1e-6 {
		t.Errorf("surface area differs: merged %g, stepped %g", a, b)
	}
	checkWinding(t, merged)
	checkWinding(t, stepped)

	// Step terrain makes merged rectangles of unequal sizes meet along
	// seams: open T-junction edges are expected, but they stay a
	// fraction of the mesh's edge slots.
	open := mesh.OpenEdges(merged)
	if open == 0 {
		t.Error("expected open T-junction edges in merged terrain")
	}
	if open >= 3*len(merged) {
		t.Errorf("%d open edges out of %d edge slots", open, 3*len(merged))
	}
}
