package geo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// Encoder writes a geometry description statement by statement, assigning
// sequential identifiers to points, lines, loops and surfaces.
// Methods do nothing after the first error; it is reported by Flush.
type Encoder struct {
	w   *bufio.Writer
	err error
	buf []byte

	lcSet    bool
	points   int
	lines    int
	loops    int
	surfaces int
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), buf: make([]byte, 0, 128)}
}

// CharacteristicLength declares the target mesh size shared by all points.
// It must be called before the first Point.
func (e *Encoder) CharacteristicLength(lc float64) {
	if e.err != nil {
		return
	}
	if e.points > 0 {
		e.err = errors.New("characteristic length declared after points")
		return
	}
	if lc <= 0 || math.IsNaN(lc) || math.IsInf(lc, 0) {
		e.err = fmt.Errorf("invalid characteristic length %g", lc)
		return
	}
	b := append(e.buf[:0], lcName+" = "...)
	b = appendFloat(b, lc)
	b = append(b, ";\n"...)
	e.write(b)
	e.lcSet = true
}

// Point declares a point and returns its identifier.
func (e *Encoder) Point(v r3.Vec) int {
	if e.err != nil {
		return 0
	}
	if !e.lcSet {
		e.err = errors.New("point declared before characteristic length")
		return 0
	}
	e.points++
	b := append(e.buf[:0], "Point("...)
	b = strconv.AppendInt(b, int64(e.points), 10)
	b = append(b, ") = {"...)
	b = appendFloat(b, v.X)
	b = append(b, ',')
	b = appendFloat(b, v.Y)
	b = append(b, ',')
	b = appendFloat(b, v.Z)
	b = append(b, ","+lcName+"};\n"...)
	e.write(b)
	return e.points
}

// Line declares a directed line from point p1 to point p2 and returns its identifier.
func (e *Encoder) Line(p1, p2 int) int {
	if e.err != nil {
		return 0
	}
	switch {
	case p1 < 1 || p1 > e.points || p2 < 1 || p2 > e.points:
		e.err = fmt.Errorf("line references undeclared point (%d,%d), have %d points", p1, p2, e.points)
		return 0
	case p1 == p2:
		e.err = fmt.Errorf("degenerate line on point %d", p1)
		return 0
	}
	e.lines++
	b := append(e.buf[:0], "Line("...)
	b = strconv.AppendInt(b, int64(e.lines), 10)
	b = append(b, ") = {"...)
	b = strconv.AppendInt(b, int64(p1), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(p2), 10)
	b = append(b, "};\n"...)
	e.write(b)
	return e.lines
}

// LineLoop declares a closed loop of signed line references and returns its identifier.
// Closure of the loop is not checked by the Encoder, see [Description.Validate].
func (e *Encoder) LineLoop(lines ...int) int {
	if e.err != nil {
		return 0
	}
	if len(lines) < 3 {
		e.err = fmt.Errorf("line loop needs at least 3 lines, got %d", len(lines))
		return 0
	}
	e.loops++
	b := append(e.buf[:0], "Line Loop("...)
	b = strconv.AppendInt(b, int64(e.loops), 10)
	b = append(b, ") = {"...)
	for i, l := range lines {
		if l == 0 || l > e.lines || -l > e.lines {
			e.err = fmt.Errorf("line loop %d references undeclared line %d", e.loops, l)
			return 0
		}
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, int64(l), 10)
	}
	b = append(b, "};\n"...)
	e.write(b)
	return e.loops
}

// PlaneSurface declares a planar surface bounded by loop and returns its identifier.
func (e *Encoder) PlaneSurface(loop int) int {
	if e.err != nil {
		return 0
	}
	if loop < 1 || loop > e.loops {
		e.err = fmt.Errorf("plane surface references undeclared line loop %d", loop)
		return 0
	}
	e.surfaces++
	b := append(e.buf[:0], "Plane Surface("...)
	b = strconv.AppendInt(b, int64(e.surfaces), 10)
	b = append(b, ") = {"...)
	b = strconv.AppendInt(b, int64(loop), 10)
	b = append(b, "};\n"...)
	e.write(b)
	return e.surfaces
}

// MeshAlgorithm writes the directive selecting the mesher's 2D algorithm.
// It is usually the last statement of a description.
func (e *Encoder) MeshAlgorithm(alg int) {
	if e.err != nil {
		return
	}
	b := append(e.buf[:0], "\nMesh.Algorithm = "...)
	b = strconv.AppendInt(b, int64(alg), 10)
	b = append(b, ";\n"...)
	e.write(b)
}

// Flush writes buffered data to the underlying writer and returns
// the first error encountered by the Encoder.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}

func (e *Encoder) write(b []byte) {
	e.buf = b[:0]
	_, e.err = e.w.Write(b)
}

func appendFloat(b []byte, f float64) []byte {
	return strconv.AppendFloat(b, f, 'g', -1, 64)
}
