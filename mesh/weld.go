package mesh

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = kdVertices{}
	_ kdtree.Comparable = kdVertex{}
)

// Weld returns a copy of m with vertices closer than tol merged. If tol is
// zero it is inferred from the shortest triangle side. Triangles which
// collapse after merging are dropped.
func Weld(m *Mesh, tol float64) *Mesh {
	verts := make(kdVertices, len(m.Vertices))
	for i, v := range m.Vertices {
		verts[i] = kdVertex{Vec: v, idx: i}
	}
	if tol == 0 {
		tol = suggestedTolerance(m)
	}
	remap := cluster(verts, tol)
	welded := &Mesh{}
	newIdx := make(map[int]int)
	for _, rep := range remap {
		if _, ok := newIdx[rep]; !ok {
			newIdx[rep] = len(welded.Vertices)
			welded.Vertices = append(welded.Vertices, m.Vertices[rep])
		}
	}
	for _, t := range m.Triangles {
		t = [3]int{newIdx[remap[t[0]]], newIdx[remap[t[1]]], newIdx[remap[t[2]]]}
		if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
			continue
		}
		welded.Triangles = append(welded.Triangles, t)
	}
	return welded
}

// Coincident returns the index pairs (i<j) of points closer than tol, sorted by i then j.
func Coincident(pts []r3.Vec, tol float64) [][2]int {
	verts := make(kdVertices, len(pts))
	for i, v := range pts {
		verts[i] = kdVertex{Vec: v, idx: i}
	}
	var pairs [][2]int
	if len(pts) == 0 {
		return pairs
	}
	tree := kdtree.New(verts, false)
	for i, v := range pts {
		for _, j := range within(tree, v, tol) {
			if j > i {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	sortPairs(pairs)
	return pairs
}

// cluster maps every vertex to the lowest index vertex of its
// neighbourhood. Vertices are visited in index order.
func cluster(verts kdVertices, tol float64) []int {
	remap := make([]int, len(verts))
	for i := range remap {
		remap[i] = -1
	}
	if len(verts) == 0 {
		return remap
	}
	pos := make([]r3.Vec, len(verts))
	for i, v := range verts {
		pos[i] = v.Vec
	}
	// kdtree.New reorders verts.
	tree := kdtree.New(verts, false)
	for i := range remap {
		if remap[i] >= 0 {
			continue
		}
		remap[i] = i
		for _, j := range within(tree, pos[i], tol) {
			if remap[j] < 0 {
				remap[j] = i
			}
		}
	}
	return remap
}

// within returns the indices of the vertices stored in tree closer than tol to q.
func within(tree *kdtree.Tree, q r3.Vec, tol float64) []int {
	keep := kdtree.NewDistKeeper(tol * tol)
	tree.NearestSet(keep, kdVertex{Vec: q})
	idx := make([]int, 0, len(keep.Heap))
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		idx = append(idx, c.Comparable.(kdVertex).idx)
	}
	return idx
}

func suggestedTolerance(m *Mesh) float64 {
	minDist2 := math.MaxFloat64
	for _, tri := range m.Triangles3() {
		for j := range tri {
			side2 := r3.Norm2(r3.Sub(tri[(j+1)%3], tri[j]))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
		}
	}
	if minDist2 == math.MaxFloat64 {
		return 0
	}
	return math.Sqrt(minDist2) / 256
}

type kdVertex struct {
	r3.Vec
	idx int
}

type kdVertices []kdVertex

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdVertices) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), vertices: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdVertices) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
//
// Given c = a.Compare(b, d):
//
//	c = a_d - b_d
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a.Vec, b.(kdVertex).Vec, int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.Vec, b.(kdVertex).Vec))
}

// c = a.dim - b.dim
func kdComp(a, b r3.Vec, dim int) float64 {
	switch dim {
	case 0:
		return a.X - b.X
	case 1:
		return a.Y - b.Y
	}
	return a.Z - b.Z
}

type kdPlane struct {
	dim      int
	vertices kdVertices
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.vertices[i].Vec, p.vertices[j].Vec, p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}
func (p kdPlane) Len() int {
	return len(p.vertices)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}

func sortPairs(pairs [][2]int) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}
