package fractal

import "github.com/soypat/fractal/geo"

// edgeSet assigns line identifiers to edges shared between solids.
// An edge is declared once; later solids reference it with a sign
// matching their traversal direction.
type edgeSet struct {
	enc *geo.Encoder
	// ids holds the signed line identifier traversing the edge from
	// lower to higher point index. Keys are stored with lower index first.
	ids map[[2]int]int
}

func newEdgeSet(enc *geo.Encoder, sizeHint int) *edgeSet {
	return &edgeSet{enc: enc, ids: make(map[[2]int]int, sizeHint)}
}

// declare writes the line from point a to b if no line joins them yet.
func (es *edgeSet) declare(a, b int) {
	key := [2]int{a, b}
	if a > b {
		key = [2]int{b, a}
	}
	if _, ok := es.ids[key]; ok {
		return
	}
	id := es.enc.Line(a+1, b+1) // serialized points are 1-based.
	if a > b {
		id = -id
	}
	es.ids[key] = id
}

// signed returns the signed line identifier traversing from point a to b,
// declaring the line if needed.
func (es *edgeSet) signed(a, b int) int {
	es.declare(a, b)
	if a > b {
		return -es.ids[[2]int{b, a}]
	}
	return es.ids[[2]int{a, b}]
}

// loop declares a line loop visiting the solid vertices selected by corners.
func (es *edgeSet) loop(verts []int, corners []int) int {
	var lines [4]int
	refs := lines[:0]
	for i, c := range corners {
		next := corners[(i+1)%len(corners)]
		refs = append(refs, es.signed(verts[c], verts[next]))
	}
	return es.enc.LineLoop(refs...)
}

func encodePoints(enc *geo.Encoder, reg *Registry) {
	for _, p := range reg.Points() {
		enc.Point(p)
	}
}
