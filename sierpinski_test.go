package fractal

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/fractal/geo"
	"github.com/soypat/fractal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSierpinskiCounts(t *testing.T) {
	for level := 1; level <= 5; level++ {
		s, err := NewSierpinski(level)
		if err != nil {
			t.Fatal(err)
		}
		leaves := 1 << (2 * uint(level))
		if len(s.Tetras) != leaves {
			t.Errorf("level %d: got %d leaves, want %d", level, len(s.Tetras), leaves)
		}
		if want := 4 + 2*(leaves-1); s.Points.Len() != want {
			t.Errorf("level %d: got %d points, want %d", level, s.Points.Len(), want)
		}
		if s.Faces() != 4*leaves || s.Level() != level {
			t.Errorf("level %d: got %d faces at level %d", level, s.Faces(), s.Level())
		}
	}
}

func TestSierpinskiLevelErrors(t *testing.T) {
	for _, level := range []int{0, -1, MaxSierpinskiLevel + 1} {
		s, err := NewSierpinski(level)
		if !errors.Is(err, ErrConfig) {
			t.Errorf("level %d: want ErrConfig, got %v", level, err)
		}
		if s != nil {
			t.Errorf("level %d: got non-nil result", level)
		}
	}
}

// Points shared by neighbouring tetrahedra must be registered once.
func TestSierpinskiDistinctPoints(t *testing.T) {
	for level := 1; level <= 4; level++ {
		s, err := NewSierpinski(level)
		if err != nil {
			t.Fatal(err)
		}
		if pairs := mesh.Coincident(s.Points.Points(), 1e-9); len(pairs) != 0 {
			t.Errorf("level %d: %d coincident point pairs, first %v", level, len(pairs), pairs[0])
		}
	}
}

func TestSierpinskiSharedMidpoint(t *testing.T) {
	s, err := NewSierpinski(1)
	if err != nil {
		t.Fatal(err)
	}
	// Corner children i and j of the seed touch at the midpoint of seed edge (i,j).
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if s.Tetras[i][j] != s.Tetras[j][i] {
				t.Errorf("children %d and %d do not share vertex: %d != %d", i, j, s.Tetras[i][j], s.Tetras[j][i])
			}
			want := r3.Scale(0.5, r3.Add(sierpinskiSeed[i], sierpinskiSeed[j]))
			if got := s.Points.At(s.Tetras[i][j]); r3.Norm(r3.Sub(got, want)) > 1e-12 {
				t.Errorf("shared vertex of %d and %d at %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestSierpinskiGeometry(t *testing.T) {
	const level = 3
	s, err := NewSierpinski(level)
	if err != nil {
		t.Fatal(err)
	}
	side := math.Pow(0.5, level)
	for n, tet := range s.Tetras {
		var centroid r3.Vec
		for _, v := range tet {
			centroid = r3.Add(centroid, r3.Scale(0.25, s.Points.At(v)))
		}
		for _, e := range tetraEdges {
			l := r3.Norm(r3.Sub(s.Points.At(tet[e[1]]), s.Points.At(tet[e[0]])))
			if math.Abs(l-side) > 1e-12 {
				t.Fatalf("tetra %d edge %v has length %g, want %g", n, e, l, side)
			}
		}
		for f, corners := range tetraFaces {
			poly := []r3.Vec{s.Points.At(tet[corners[0]]), s.Points.At(tet[corners[1]]), s.Points.At(tet[corners[2]])}
			normal := geo.Normal(poly)
			centre := r3.Scale(1./3, r3.Add(poly[0], r3.Add(poly[1], poly[2])))
			if r3.Dot(normal, r3.Sub(centre, centroid)) <= 0 {
				t.Fatalf("tetra %d face %d is not oriented outwards", n, f)
			}
		}
	}
}
