// Package mesh defines the triangle output type and the face-lowering
// step shared by every mesher: an axis-aligned rectangle plus a normal
// axis/direction becomes two correctly wound triangles.
package mesh

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is one outward-facing surface triangle. Vertices are in
// counter-clockwise order when viewed from the side the unit normal
// points to.
type Triangle struct {
	Normal v3.Vec
	V      [3]v3.Vec
}

// Area returns the triangle's surface area.
func (t Triangle) Area() float64 {
	e1 := v3.Vec{X: t.V[1].X - t.V[0].X, Y: t.V[1].Y - t.V[0].Y, Z: t.V[1].Z - t.V[0].Z}
	e2 := v3.Vec{X: t.V[2].X - t.V[0].X, Y: t.V[2].Y - t.V[0].Y, Z: t.V[2].Z - t.V[0].Z}
	cx := e1.Y*e2.Z - e1.Z*e2.Y
	cy := e1.Z*e2.X - e1.X*e2.Z
	cz := e1.X*e2.Y - e1.Y*e2.X
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

// SurfaceArea returns the summed area of all triangles.
func SurfaceArea(tris []Triangle) float64 {
	var sum float64
	for _, t := range tris {
		sum += t.Area()
	}
	return sum
}

// edgeKey is an undirected edge between two quantized vertices.
type edgeKey struct {
	a, b [3]int64
}

// quantize keys a vertex at nanometer-ish resolution so numerically
// identical corners hash together.
func quantize(v v3.Vec) [3]int64 {
	const scale = 1e9
	return [3]int64{
		int64(math.Round(v.X * scale)),
		int64(math.Round(v.Y * scale)),
		int64(math.Round(v.Z * scale)),
	}
}

func edgeOf(p, q v3.Vec) edgeKey {
	a, b := quantize(p), quantize(q)
	if b[0] < a[0] || (b[0] == a[0] && (b[1] < a[1] || (b[1] == a[1] && b[2] < a[2]))) {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// OpenEdges counts edges not shared by exactly two triangles. Zero
// means the mesh is closed in the edge-manifold sense; merged faces of
// different sizes meeting along a seam produce T-junction edges that
// count as open even though the surface has no holes.
func OpenEdges(tris []Triangle) int {
	use := make(map[edgeKey]int)
	for _, t := range tris {
		use[edgeOf(t.V[0], t.V[1])]++
		use[edgeOf(t.V[1], t.V[2])]++
		use[edgeOf(t.V[2], t.V[0])]++
	}
	open := 0
	for _, n := range use {
		if n != 2 {
			open++
		}
	}
	return open
}
