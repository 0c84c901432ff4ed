package fractal

import (
	"github.com/soypat/fractal/geo"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxSpongeLevel is the largest level accepted by NewSponge.
// Level 4 holds 160000 cubes.
const MaxSpongeLevel = 4

// Cube is a hexahedron given by eight point indices and the visibility
// of its six faces. Corners and faces are ordered as follows, with x along
// V[4]→V[5], y along V[4]→V[7] and z along V[4]→V[0]:
//
//	corner  0:(0,0,1) 1:(1,0,1) 2:(1,1,1) 3:(0,1,1)
//	        4:(0,0,0) 5:(1,0,0) 6:(1,1,0) 7:(0,1,0)
//	face    0:+z 1:-y 2:+x 3:+y 4:-x 5:-z
type Cube struct {
	V [8]int
	// Visible is set for faces on the boundary of the fractal.
	Visible [6]bool
}

var spongeSeed = [8]r3.Vec{
	{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
}

var (
	// cornerOffset is the local position of each cube corner.
	cornerOffset = [8]V3i{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	// faceNormal is the outward direction of each face.
	faceNormal = [6]V3i{{0, 0, 1}, {0, -1, 0}, {1, 0, 0}, {0, 1, 0}, {-1, 0, 0}, {0, 0, -1}}
	// cubeFaces lists each face's corners counter clockwise seen from outside.
	cubeFaces = [6][4]int{{0, 1, 2, 3}, {1, 0, 4, 5}, {2, 1, 5, 6}, {3, 2, 6, 7}, {0, 3, 7, 4}, {4, 7, 6, 5}}
	cubeEdges = [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
	}
	// edgeFaces holds the two faces bounded by each edge of cubeEdges.
	edgeFaces = [12][2]int{
		{0, 1}, {0, 2}, {0, 3}, {0, 4},
		{1, 4}, {1, 2}, {2, 3}, {3, 4},
		{1, 5}, {2, 5}, {3, 5}, {4, 5},
	}
)

// Sponge is a Menger sponge.
type Sponge struct {
	Points Registry
	Cubes  []Cube
	level  int
	// lattice maps integer coordinates to point indices. The seed cube
	// spans 3^level units so every point of every round has integer coordinates.
	lattice map[V3i]int
	// coords holds the lattice coordinate of each point.
	coords []V3i
}

// NewSponge subdivides the unit cube level times keeping 20 of the 27
// sub-cubes each round. The result has 20^level leaves.
func NewSponge(level int) (*Sponge, error) {
	if err := checkLevel(level, MaxSpongeLevel); err != nil {
		return nil, err
	}
	side := 1
	for i := 0; i < level; i++ {
		side *= 3
	}
	s := &Sponge{
		level:   level,
		lattice: make(map[V3i]int),
	}
	seed := Cube{Visible: [6]bool{true, true, true, true, true, true}}
	for m, v := range spongeSeed {
		seed.V[m] = s.addPoint(v, cornerOffset[m].MulScalar(side))
	}
	s.Cubes = []Cube{seed}
	for side > 1 {
		s.subdivide(side)
		side /= 3
	}
	return s, nil
}

func (s *Sponge) addPoint(v r3.Vec, at V3i) int {
	idx := s.Points.Append(v)
	s.lattice[at] = idx
	s.coords = append(s.coords, at)
	return idx
}

// subdivide replaces every cube of the given lattice side with its 20 kept sub-cubes.
func (s *Sponge) subdivide(side int) {
	step := side / 3
	next := make([]Cube, 0, 20*len(s.Cubes))
	var (
		corners [8]r3.Vec
		grid    [4][4][4]int
	)
	for _, c := range s.Cubes {
		origin := s.coords[c.V[4]]
		for m, idx := range c.V {
			corners[m] = s.Points.At(idx)
		}
		for i := range grid {
			for j := range grid[i] {
				for k := range grid[i][j] {
					at := origin.Add(V3i{i, j, k}.MulScalar(step))
					idx, ok := s.lattice[at]
					if !ok {
						p := trilinear(&corners, float64(i)/3, float64(j)/3, float64(k)/3)
						idx = s.addPoint(p, at)
					}
					grid[i][j][k] = idx
				}
			}
		}
		for _, child := range spongeChildren {
			var nc Cube
			for m, off := range cornerOffset {
				at := child.pos.Add(off)
				nc.V[m] = grid[at[0]][at[1]][at[2]]
			}
			for f, rule := range child.rules {
				nc.Visible[f] = rule.apply(c.Visible[f])
			}
			next = append(next, nc)
		}
	}
	s.Cubes = next
}

// trilinear interpolates the cube corners at local coordinates (u,v,w).
func trilinear(corners *[8]r3.Vec, u, v, w float64) r3.Vec {
	var p r3.Vec
	for m, off := range cornerOffset {
		weight := lerpWeight(off[0], u) * lerpWeight(off[1], v) * lerpWeight(off[2], w)
		if weight != 0 {
			p = r3.Add(p, r3.Scale(weight, corners[m]))
		}
	}
	return p
}

func lerpWeight(bit int, t float64) float64 {
	if bit == 1 {
		return t
	}
	return 1 - t
}

// Level returns the number of subdivision rounds.
func (s *Sponge) Level() int { return s.level }

// Faces returns the number of visible faces over all leaf cubes.
func (s *Sponge) Faces() (n int) {
	for _, c := range s.Cubes {
		for _, vis := range c.Visible {
			if vis {
				n++
			}
		}
	}
	return n
}

// Encode writes the points and the visible faces of every leaf cube to enc.
// Edges which bound no visible face are not written.
func (s *Sponge) Encode(enc *geo.Encoder) {
	encodePoints(enc, &s.Points)
	es := newEdgeSet(enc, 2*len(s.Cubes))
	for _, c := range s.Cubes {
		for e, faces := range edgeFaces {
			if c.Visible[faces[0]] || c.Visible[faces[1]] {
				es.declare(c.V[cubeEdges[e][0]], c.V[cubeEdges[e][1]])
			}
		}
		var loops [6]int
		for f, corners := range cubeFaces {
			if c.Visible[f] {
				loops[f] = es.loop(c.V[:], corners[:])
			}
		}
		for f, loop := range loops {
			if c.Visible[f] {
				enc.PlaneSurface(loop)
			}
		}
	}
}
