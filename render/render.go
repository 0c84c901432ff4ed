// Package render encodes indexed triangle meshes as binary STL.
package render

import (
	"github.com/soypat/fractal/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Vertices are ordered counter clockwise
// seen from the side the normal points to.
type Triangle3 [3]r3.Vec

// Normal returns the unit normal of the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Area returns the area of the triangle.
func (t Triangle3) Area() float64 {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return 0.5 * r3.Norm(r3.Cross(e1, e2))
}

// Degenerate returns true if two of the triangle's vertices are within tol of each other.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t[0], t[1], tol) ||
		d3.EqualWithin(t[1], t[2], tol) ||
		d3.EqualWithin(t[2], t[0], tol)
}
