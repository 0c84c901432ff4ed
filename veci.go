/*

Integer 3D lattice vectors

*/

package fractal

import "gonum.org/v1/gonum/spatial/r3"

// V3i is a 3D integer vector. Menger lattice points are keyed by V3i.
type V3i [3]int

// MulScalar multiplies each component of the vector by a scalar.
func (a V3i) MulScalar(b int) V3i {
	return V3i{a[0] * b, a[1] * b, a[2] * b}
}

// ToV3 converts V3i (integer) to r3.Vec (float).
func (a V3i) ToV3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

// Add adds two vectors. Return v = a + b.
func (a V3i) Add(b V3i) V3i {
	return V3i{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// InRange returns true if every component of a lies within [lo, hi].
func (a V3i) InRange(lo, hi int) bool {
	return a[0] >= lo && a[0] <= hi &&
		a[1] >= lo && a[1] <= hi &&
		a[2] >= lo && a[2] <= hi
}

// count returns the number of components equal to v.
func (a V3i) count(v int) (n int) {
	for _, c := range a {
		if c == v {
			n++
		}
	}
	return n
}
