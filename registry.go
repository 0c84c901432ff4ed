package fractal

import "gonum.org/v1/gonum/spatial/r3"

// Registry is an append-only ordered list of points. A point is identified
// by its index in the registry which never changes once assigned.
// The zero value is an empty registry ready to use.
type Registry struct {
	pts []r3.Vec
}

// Append adds v to the registry and returns its index.
func (r *Registry) Append(v r3.Vec) int {
	r.pts = append(r.pts, v)
	return len(r.pts) - 1
}

// At returns the point with index i.
func (r *Registry) At(i int) r3.Vec { return r.pts[i] }

// Len returns the number of registered points.
func (r *Registry) Len() int { return len(r.pts) }

// Points returns the registered points in index order.
// The returned slice must not be modified.
func (r *Registry) Points() []r3.Vec { return r.pts }

// grow ensures space for another n points without reallocation.
func (r *Registry) grow(n int) {
	if cap(r.pts)-len(r.pts) >= n {
		return
	}
	pts := make([]r3.Vec, len(r.pts), len(r.pts)+n)
	copy(pts, r.pts)
	r.pts = pts
}

// MidpointCache creates and remembers midpoints between registered points.
// Keys are unordered point index pairs so two solids sharing an edge
// obtain the same midpoint index.
type MidpointCache struct {
	reg *Registry
	// Stored with lower index first.
	m map[[2]int]int
}

// NewMidpointCache returns an empty cache which appends new midpoints to reg.
func NewMidpointCache(reg *Registry) *MidpointCache {
	return &MidpointCache{reg: reg, m: make(map[[2]int]int)}
}

// Midpoint returns the index of the point halfway between points a and b,
// registering it on first request for the pair. Midpoint(a, a) returns a.
func (c *MidpointCache) Midpoint(a, b int) int {
	if a == b {
		return a
	}
	if a > b {
		a, b = b, a
	}
	key := [2]int{a, b}
	if idx, ok := c.m[key]; ok {
		return idx
	}
	mid := r3.Scale(0.5, r3.Add(c.reg.At(a), c.reg.At(b)))
	idx := c.reg.Append(mid)
	c.m[key] = idx
	return idx
}

// Len returns the number of midpoints created by the cache.
func (c *MidpointCache) Len() int { return len(c.m) }
