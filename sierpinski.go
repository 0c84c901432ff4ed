package fractal

import (
	"math"

	"github.com/soypat/fractal/geo"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxSierpinskiLevel is the largest level accepted by NewSierpinski.
// Level 10 holds about two million points and four million faces.
const MaxSierpinskiLevel = 10

// Tetra is a tetrahedron given by four point indices.
type Tetra [4]int

// sierpinskiSeed is the regular tetrahedron of unit side subdivided by NewSierpinski.
// The apex is first and the base lies on the z=0 plane.
var sierpinskiSeed = [4]r3.Vec{
	{X: 0.5, Y: 1 / (2 * math.Sqrt(3)), Z: math.Sqrt(2. / 3.)},
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 0.5, Y: math.Sqrt(3) / 2, Z: 0},
}

var (
	tetraEdges = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {2, 3}, {3, 1}}
	// tetraFaces lists each face's corners counter clockwise seen from outside.
	tetraFaces = [4][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {3, 2, 1}}
)

// Sierpinski is a Sierpinski tetrahedron. Every face of every leaf
// tetrahedron lies on the boundary of the fractal.
type Sierpinski struct {
	Points Registry
	Tetras []Tetra
	level  int
}

// NewSierpinski subdivides the seed tetrahedron level times keeping the
// four corner tetrahedra each round. The result has 4^level leaves.
func NewSierpinski(level int) (*Sierpinski, error) {
	if err := checkLevel(level, MaxSierpinskiLevel); err != nil {
		return nil, err
	}
	s := &Sierpinski{level: level}
	// Each round adds one midpoint per edge and there are 6*4^level edges.
	leaves := 1 << (2 * uint(level))
	s.Points.grow(len(sierpinskiSeed) + 2*(leaves-1))
	for _, v := range sierpinskiSeed {
		s.Points.Append(v)
	}
	s.Tetras = []Tetra{{0, 1, 2, 3}}
	for i := 0; i < level; i++ {
		s.subdivide()
	}
	return s, nil
}

// subdivide replaces every tetrahedron with its four corner tetrahedra.
// Corner i keeps vertex i and moves every other vertex j to the midpoint of i and j.
func (s *Sierpinski) subdivide() {
	cache := NewMidpointCache(&s.Points)
	next := make([]Tetra, 0, 4*len(s.Tetras))
	for _, t := range s.Tetras {
		for _, pivot := range t {
			var child Tetra
			for j, v := range t {
				child[j] = cache.Midpoint(pivot, v)
			}
			next = append(next, child)
		}
	}
	s.Tetras = next
}

// Level returns the number of subdivision rounds.
func (s *Sierpinski) Level() int { return s.level }

// Faces returns the number of boundary faces, four per leaf.
func (s *Sierpinski) Faces() int { return 4 * len(s.Tetras) }

// Encode writes the points and the faces of every leaf tetrahedron to enc.
func (s *Sierpinski) Encode(enc *geo.Encoder) {
	encodePoints(enc, &s.Points)
	es := newEdgeSet(enc, 6*len(s.Tetras))
	for _, t := range s.Tetras {
		for _, e := range tetraEdges {
			es.declare(t[e[0]], t[e[1]])
		}
		var loops [4]int
		for f, corners := range tetraFaces {
			loops[f] = es.loop(t[:], corners[:])
		}
		for _, loop := range loops {
			enc.PlaneSurface(loop)
		}
	}
}
