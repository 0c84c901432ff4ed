package fractal

import (
	"testing"
	"unsafe"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestMidpointCache(t *testing.T) {
	var reg Registry
	a := reg.Append(r3.Vec{X: 0, Y: 0, Z: 0})
	b := reg.Append(r3.Vec{X: 2, Y: 4, Z: -2})
	c := reg.Append(r3.Vec{X: 1, Y: 1, Z: 1})
	cache := NewMidpointCache(&reg)

	ab := cache.Midpoint(a, b)
	if got := cache.Midpoint(b, a); got != ab {
		t.Errorf("midpoint not symmetric: %d != %d", got, ab)
	}
	if got := cache.Midpoint(a, b); got != ab {
		t.Errorf("midpoint not idempotent: %d != %d", got, ab)
	}
	if want := (r3.Vec{X: 1, Y: 2, Z: -1}); reg.At(ab) != want {
		t.Errorf("got midpoint %v, want %v", reg.At(ab), want)
	}
	if got := cache.Midpoint(c, c); got != c {
		t.Errorf("midpoint of a point with itself should be the point, got %d", got)
	}
	cache.Midpoint(c, a)
	if cache.Len() != 2 || reg.Len() != 5 {
		t.Errorf("got %d cached midpoints and %d points, want 2 and 5", cache.Len(), reg.Len())
	}
	// A new round starts with an empty cache.
	next := NewMidpointCache(&reg)
	if got := next.Midpoint(a, b); got == ab {
		t.Error("fresh cache reused a midpoint of a previous round")
	}
}

func TestRegistryGrow(t *testing.T) {
	var reg Registry
	reg.Append(r3.Vec{X: 1})
	reg.grow(10)
	if cap(reg.Points())-reg.Len() < 10 {
		t.Errorf("grow did not reserve capacity, cap=%d len=%d", cap(reg.Points()), reg.Len())
	}
	if reg.At(0) != (r3.Vec{X: 1}) {
		t.Error("grow lost registered points")
	}
}

func TestMaxLevelAllocation(t *testing.T) {
	const maxBytes = 256 << 20
	points := 4 + 2*(pow(4, MaxSierpinskiLevel)-1)
	if size := points * int(unsafe.Sizeof(r3.Vec{})); size > maxBytes {
		t.Errorf("MaxSierpinskiLevel=%d preallocates %d bytes", MaxSierpinskiLevel, size)
	}
	cubes := pow(20, MaxSpongeLevel)
	if size := cubes * int(unsafe.Sizeof(Cube{})); size > maxBytes {
		t.Errorf("MaxSpongeLevel=%d holds %d bytes of cubes", MaxSpongeLevel, size)
	}
	// Reaching the maximum must succeed.
	if testing.Short() {
		return
	}
	s, err := NewSponge(MaxSpongeLevel)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Cubes) != cubes {
		t.Errorf("got %d cubes, want %d", len(s.Cubes), cubes)
	}
}
