package mesher_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/voxelforge/voxelforge/pkg/mesh"
	"github.com/voxelforge/voxelforge/pkg/mesher"
	"github.com/voxelforge/voxelforge/pkg/voxel"
)

func TestGreedySingleCube(t *testing.T) {
	m, warnings := newModel(t, voxel.FrameYUp)
	addCubes(t, m, [3]float64{0, 0, 0})

	tris := mesher.Generate(m, true)
	if len(tris) != 12 {
		t.Fatalf("got %d triangles, want 12", len(tris))
	}
	if got := mesh.SurfaceArea(tris); math.Abs(got-6) > 1e-9 {
		t.Errorf("area = %g, want 6", got)
	}
	if open := mesh.OpenEdges(tris); open != 0 {
		t.Errorf("%d open edges, want 0", open)
	}
	checkWinding(t, tris)
	if len(*warnings) != 0 {
		t.Errorf("unexpected warnings: %v", *warnings)
	}
}

func TestGreedyMergesTwoCubes(t *testing.T) {
	m, _ := newModel(t, voxel.FrameYUp)
	addCubes(t, m, [3]float64{0, 0, 0}, [3]float64{1, 0, 0})

	tris := mesher.Generate(m, true)
	// A 2x1x1 bar merges into six rectangles regardless of voxel count.
	if len(tris) != 12 {
		t.Fatalf("got %d triangles, want 12", len(tris))
	}
	if got := mesh.SurfaceArea(tris); math.Abs(got-10) > 1e-9 {
		t.Errorf("area = %g, want 10", got)
	}
	if open := mesh.OpenEdges(tris); open != 0 {
		t.Errorf("%d open edges, want 0", open)
	}
	checkWinding(t, tris)
}

func TestTwoCubesUnoptimized(t *testing.T) {
	m, _ := newModel(t, voxel.FrameYUp)
	addCubes(t, m, [3]float64{0, 0, 0}, [3]float64{1, 0, 0})

	tris := mesher.Generate(m, false)
	// Without merging each cube contributes its five exposed faces.
	if len(tris) != 20 {
		t.Fatalf("got %d triangles, want 20", len(tris))
	}
	if got := mesh.SurfaceArea(tris); math.Abs(got-10) > 1e-9 {
		t.Errorf("area = %g, want 10", got)
	}
	checkWinding(t, tris)
}

func TestGreedyBlockMerges(t *testing.T) {
	m, _ := newModel(t, voxel.FrameYUp)
	for x := 0.0; x < 2; x++ {
		for y := 0.0; y < 2; y++ {
			for z := 0.0; z < 2; z++ {
				addCubes(t, m, [3]float64{x, y, z})
			}
		}
	}

	tris := mesher.Generate(m, true)
	// Eight cubes, one merged 2x2 rectangle per side.
	if len(tris) != 12 {
		t.Fatalf("got %d triangles, want 12", len(tris))
	}
	if got := mesh.SurfaceArea(tris); math.Abs(got-24) > 1e-9 {
		t.Errorf("area = %g, want 24", got)
	}
	if open := mesh.OpenEdges(tris); open != 0 {
		t.Errorf("%d open edges, want 0", open)
	}
}

func TestGreedyLShape(t *testing.T) {
	m, _ := newModel(t, voxel.FrameYUp)
	addCubes(t, m, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{1, 1, 0})

	tris := mesher.Generate(m, true)
	if len(tris) != 20 {
		t.Fatalf("got %d triangles, want 20", len(tris))
	}
	// 18 cube faces minus the two hidden pairs.
	if got := mesh.SurfaceArea(tris); math.Abs(got-14) > 1e-9 {
		t.Errorf("area = %g, want 14", got)
	}
	checkWinding(t, tris)
}

func TestGreedyNaiveAreaAgreement(t *testing.T) {
	m, _ := newModel(t, voxel.FrameYUp)
	addCubes(t, m,
		[3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{2, 0, 0},
		[3]float64{1, 1, 0}, [3]float64{1, 1, 1}, [3]float64{0, 0, 1},
	)

	greedy := areaByPlane(mesher.Greedy{}.Mesh(m, true))
	naive := areaByPlane(mesher.Naive{}.Mesh(m, false))

	if len(greedy) != len(naive) {
		t.Fatalf("face plane sets differ: %v vs %v", greedy, naive)
	}
	for p, a := range greedy {
		if b, ok := naive[p]; !ok || math.Abs(a-b) > 1e-9 {
			t.Errorf("plane %v: greedy area %g, naive area %g", p, a, b)
		}
	}
}

func TestGreedyDeterministic(t *testing.T) {
	build := func() []mesh.Triangle {
		m, _ := newModel(t, voxel.FrameYUp)
		addCubes(t, m,
			[3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{0, 1, 0},
			[3]float64{2, 0, 0}, [3]float64{2, 1, 0}, [3]float64{2, 1, 1},
		)
		return mesher.Generate(m, true)
	}

	first := build()
	for i := 0; i < 5; i++ {
		if next := build(); !reflect.DeepEqual(first, next) {
			t.Fatal("repeated meshing of the same voxel set produced different output")
		}
	}
}
