package fractal

import (
	"errors"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/fractal/geo"
	"github.com/soypat/fractal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func pow(base, exp int) int {
	n := 1
	for i := 0; i < exp; i++ {
		n *= base
	}
	return n
}

func TestSpongeChildren(t *testing.T) {
	var hidden, exposed, inherited int
	seen := make(map[V3i]bool)
	for _, child := range spongeChildren {
		if seen[child.pos] {
			t.Errorf("duplicate child %v", child.pos)
		}
		seen[child.pos] = true
		for _, r := range child.rules {
			switch r {
			case ruleHidden:
				hidden++
			case ruleExposed:
				exposed++
			case ruleInherit:
				inherited++
			}
		}
	}
	// 6 faces of 9 cells less the 6 removed face centres lie on the parent boundary.
	// Each of the 12 edge cells borders 2 removed cells.
	if inherited != 48 || exposed != 24 || hidden != 48 {
		t.Errorf("got %d inherited, %d exposed and %d hidden rules", inherited, exposed, hidden)
	}
}

func TestSpongeCounts(t *testing.T) {
	for level := 1; level <= 3; level++ {
		s, err := NewSponge(level)
		if err != nil {
			t.Fatal(err)
		}
		leaves := pow(20, level)
		if len(s.Cubes) != leaves {
			t.Errorf("level %d: got %d leaves, want %d", level, len(s.Cubes), leaves)
		}
		faces := s.Faces()
		if want := 2*leaves + 4*pow(8, level); faces != want {
			t.Errorf("level %d: got %d visible faces, want %d", level, faces, want)
		}
		if faces <= 0 || faces >= 6*leaves {
			t.Errorf("level %d: visible faces %d out of range", level, faces)
		}
	}
	s, err := NewSponge(1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Points.Len() != 64 {
		t.Errorf("got %d points at level 1, want 64", s.Points.Len())
	}
}

func TestSpongeLevelErrors(t *testing.T) {
	for _, level := range []int{0, -3, MaxSpongeLevel + 1} {
		s, err := NewSponge(level)
		if !errors.Is(err, ErrConfig) {
			t.Errorf("level %d: want ErrConfig, got %v", level, err)
		}
		if s != nil {
			t.Errorf("level %d: got non-nil result", level)
		}
	}
}

func TestSpongeDistinctPoints(t *testing.T) {
	for level := 1; level <= 2; level++ {
		s, err := NewSponge(level)
		if err != nil {
			t.Fatal(err)
		}
		if pairs := mesh.Coincident(s.Points.Points(), 1e-9); len(pairs) != 0 {
			t.Errorf("level %d: %d coincident point pairs, first %v", level, len(pairs), pairs[0])
		}
	}
}

// leafCells returns the lattice cell of every leaf cube.
func leafCells(s *Sponge) map[V3i]int {
	cells := make(map[V3i]int, len(s.Cubes))
	for i, c := range s.Cubes {
		cells[s.coords[c.V[4]]] = i
	}
	return cells
}

// A face is visible exactly when the cell across it is empty, and every
// visible face is oriented away from its cube.
func TestSpongeVisibility(t *testing.T) {
	for level := 1; level <= 3; level++ {
		s, err := NewSponge(level)
		if err != nil {
			t.Fatal(err)
		}
		cells := leafCells(s)
		if len(cells) != len(s.Cubes) {
			t.Fatalf("level %d: leaves overlap", level)
		}
		side := math.Pow(3, -float64(level))
		for i, c := range s.Cubes {
			at := s.coords[c.V[4]]
			for f, dir := range faceNormal {
				_, occupied := cells[at.Add(dir)]
				if c.Visible[f] == occupied {
					t.Fatalf("level %d: cube %d at %v face %d visible=%v with neighbour occupied=%v",
						level, i, at, f, c.Visible[f], occupied)
				}
				var poly []r3.Vec
				for _, corner := range cubeFaces[f] {
					poly = append(poly, s.Points.At(c.V[corner]))
				}
				n := geo.Normal(poly)
				if r3.Dot(n, dir.ToV3()) <= 0 {
					t.Fatalf("level %d: cube %d face %d is not oriented outwards", level, i, f)
				}
				if area := r3.Norm(n) / 2; math.Abs(area-side*side) > 1e-12 {
					t.Fatalf("level %d: cube %d face %d has area %g, want %g", level, i, f, area, side*side)
				}
			}
		}
	}
}

// mengerSDF builds the sponge as the unit box less the cross shaped
// tunnels bored at every scale.
func mengerSDF(t *testing.T, level int) sdf.SDF3 {
	t.Helper()
	box, err := sdf.Box3D(sdf.V3{X: 1, Y: 1, Z: 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	var bars []sdf.SDF3
	for k := 1; k <= level; k++ {
		cell := math.Pow(3, -float64(k))
		n := pow(3, k-1)
		for axis := 0; axis < 3; axis++ {
			size := sdf.V3{X: cell, Y: cell, Z: cell}
			switch axis {
			case 0:
				size.X = 1.5
			case 1:
				size.Y = 1.5
			case 2:
				size.Z = 1.5
			}
			bar, err := sdf.Box3D(size, 0)
			if err != nil {
				t.Fatal(err)
			}
			for u := 0; u < n; u++ {
				for v := 0; v < n; v++ {
					// Bar centre relative to the centre of the box.
					a := (3*float64(u)+1.5)*cell - 0.5
					b := (3*float64(v)+1.5)*cell - 0.5
					var pos sdf.V3
					switch axis {
					case 0:
						pos = sdf.V3{X: 0, Y: a, Z: b}
					case 1:
						pos = sdf.V3{X: a, Y: 0, Z: b}
					case 2:
						pos = sdf.V3{X: a, Y: b, Z: 0}
					}
					bars = append(bars, sdf.Transform3D(bar, sdf.Translate3d(pos)))
				}
			}
		}
	}
	return sdf.Difference3D(box, sdf.Union3D(bars...))
}

// Leaf cubes lie inside an independently built sponge and removed cells outside.
func TestSpongeAgainstSDF(t *testing.T) {
	for level := 1; level <= 2; level++ {
		s, err := NewSponge(level)
		if err != nil {
			t.Fatal(err)
		}
		model := mengerSDF(t, level)
		cells := leafCells(s)
		side := pow(3, level)
		cell := 1 / float64(side)
		for i := 0; i < side; i++ {
			for j := 0; j < side; j++ {
				for k := 0; k < side; k++ {
					// The model is centred on the origin.
					centre := sdf.V3{
						X: (float64(i)+0.5)*cell - 0.5,
						Y: (float64(j)+0.5)*cell - 0.5,
						Z: (float64(k)+0.5)*cell - 0.5,
					}
					_, leaf := cells[V3i{i, j, k}]
					d := model.Evaluate(centre)
					if leaf != (d < 0) {
						t.Errorf("level %d: cell %v leaf=%v but model distance %g", level, V3i{i, j, k}, leaf, d)
					}
				}
			}
		}
	}
}
