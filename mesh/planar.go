package mesh

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/soypat/fractal/geo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Planar is a reference Builder which triangulates every plane surface of
// a description on a regular grid fine enough to honour the points' target
// sizes. Only triangular and quadrilateral surfaces are supported. Grids of
// surfaces sharing an edge conform when both surfaces have the same number
// of divisions, which holds for the fractal solids of this module.
type Planar struct {
	// MaxDivisions caps the number of divisions of a surface edge.
	// Zero means no cap.
	MaxDivisions int
}

var _ Builder = Planar{}

// Build parses and validates the description and triangulates its surfaces.
func (p Planar) Build(ctx context.Context, text []byte) (*Mesh, error) {
	d, err := geo.Parse(bytes.NewReader(text))
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := planarBuilder{
		d:      d,
		shared: make(map[vertexKey]int),
	}
	for id := range d.Surfaces {
		if id%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pts, err := d.LoopPoints(d.Surfaces[id])
		if err != nil {
			return nil, err
		}
		n := p.divisions(d, pts)
		switch len(pts) {
		case 3:
			b.triangle(pts, n)
		case 4:
			b.quad(pts, n)
		default:
			return nil, fmt.Errorf("plane surface %d: unsupported boundary with %d points", id+1, len(pts))
		}
	}
	return &b.m, nil
}

// divisions returns the number of segments each edge of the surface is split in.
func (p Planar) divisions(d *geo.Description, pts []int) int {
	lc := math.Inf(1)
	var longest float64
	for i, id := range pts {
		pt := d.Points[id-1]
		lc = pointSize(lc, pt.LC, d.LC)
		next := d.Points[pts[(i+1)%len(pts)]-1]
		longest = math.Max(longest, r3.Norm(r3.Sub(next.X, pt.X)))
	}
	n := 1
	if !math.IsInf(lc, 1) {
		// Tolerance avoids an extra division when the ratio is integral up to rounding.
		n = int(math.Ceil(longest/lc - 1e-9))
	}
	if n < 1 {
		n = 1
	}
	if p.MaxDivisions > 0 && n > p.MaxDivisions {
		n = p.MaxDivisions
	}
	return n
}

func pointSize(current, lc, global float64) float64 {
	if lc <= 0 {
		lc = global
	}
	if lc <= 0 {
		return current
	}
	return math.Min(current, lc)
}

// vertexKey identifies a vertex which may be shared between surfaces:
// either a declared point (b == 0) or the k'th of n divisions of the line a→b with a < b.
type vertexKey struct {
	a, b, k, n int
}

type planarBuilder struct {
	d      *geo.Description
	m      Mesh
	shared map[vertexKey]int
}

func (pb *planarBuilder) point(id int) int {
	key := vertexKey{a: id}
	idx, ok := pb.shared[key]
	if !ok {
		idx = len(pb.m.Vertices)
		pb.m.Vertices = append(pb.m.Vertices, pb.d.Points[id-1].X)
		pb.shared[key] = idx
	}
	return idx
}

// edgePoint returns the vertex k/n of the way from point a to point b.
func (pb *planarBuilder) edgePoint(a, b, k, n int) int {
	if a > b {
		a, b, k = b, a, n-k
	}
	switch k {
	case 0:
		return pb.point(a)
	case n:
		return pb.point(b)
	}
	key := vertexKey{a: a, b: b, k: k, n: n}
	idx, ok := pb.shared[key]
	if !ok {
		t := float64(k) / float64(n)
		pa, pbv := pb.d.Points[a-1].X, pb.d.Points[b-1].X
		idx = len(pb.m.Vertices)
		pb.m.Vertices = append(pb.m.Vertices, r3.Add(pa, r3.Scale(t, r3.Sub(pbv, pa))))
		pb.shared[key] = idx
	}
	return idx
}

func (pb *planarBuilder) interior(v r3.Vec) int {
	pb.m.Vertices = append(pb.m.Vertices, v)
	return len(pb.m.Vertices) - 1
}

// quad triangulates the quadrilateral p[0..3] on an (n+1)x(n+1) grid
// with s along p0→p1 and t along p0→p3.
func (pb *planarBuilder) quad(p []int, n int) {
	c := [4]r3.Vec{}
	for i := range c {
		c[i] = pb.d.Points[p[i]-1].X
	}
	grid := make([][]int, n+1)
	for i := range grid {
		grid[i] = make([]int, n+1)
		for j := range grid[i] {
			switch {
			case j == 0:
				grid[i][j] = pb.edgePoint(p[0], p[1], i, n)
			case i == n:
				grid[i][j] = pb.edgePoint(p[1], p[2], j, n)
			case j == n:
				grid[i][j] = pb.edgePoint(p[3], p[2], i, n)
			case i == 0:
				grid[i][j] = pb.edgePoint(p[0], p[3], j, n)
			default:
				s, t := float64(i)/float64(n), float64(j)/float64(n)
				v := r3.Add(
					r3.Add(r3.Scale((1-s)*(1-t), c[0]), r3.Scale(s*(1-t), c[1])),
					r3.Add(r3.Scale(s*t, c[2]), r3.Scale((1-s)*t, c[3])),
				)
				grid[i][j] = pb.interior(v)
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pb.m.Triangles = append(pb.m.Triangles,
				[3]int{grid[i][j], grid[i+1][j], grid[i+1][j+1]},
				[3]int{grid[i][j], grid[i+1][j+1], grid[i][j+1]},
			)
		}
	}
}

// triangle triangulates the triangle p[0..2] into n*n similar triangles.
// Vertex (i,j) lies at p0 + i/n*(p1-p0) + j/n*(p2-p0).
func (pb *planarBuilder) triangle(p []int, n int) {
	c0 := pb.d.Points[p[0]-1].X
	e1 := r3.Sub(pb.d.Points[p[1]-1].X, c0)
	e2 := r3.Sub(pb.d.Points[p[2]-1].X, c0)
	grid := make([][]int, n+1)
	for i := range grid {
		grid[i] = make([]int, n+1-i)
		for j := range grid[i] {
			switch {
			case j == 0:
				grid[i][j] = pb.edgePoint(p[0], p[1], i, n)
			case i == 0:
				grid[i][j] = pb.edgePoint(p[0], p[2], j, n)
			case i+j == n:
				grid[i][j] = pb.edgePoint(p[1], p[2], j, n)
			default:
				s, t := float64(i)/float64(n), float64(j)/float64(n)
				grid[i][j] = pb.interior(r3.Add(c0, r3.Add(r3.Scale(s, e1), r3.Scale(t, e2))))
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; i+j < n; j++ {
			pb.m.Triangles = append(pb.m.Triangles, [3]int{grid[i][j], grid[i+1][j], grid[i][j+1]})
			if i+j < n-1 {
				pb.m.Triangles = append(pb.m.Triangles, [3]int{grid[i+1][j], grid[i+1][j+1], grid[i][j+1]})
			}
		}
	}
}
