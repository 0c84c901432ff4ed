package geo

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a declared point and its target mesh size.
// LC is zero when the point declaration carried no size.
type Point struct {
	X  r3.Vec
	LC float64
}

// Line is a directed edge between two point identifiers.
type Line [2]int

// Loop is a closed sequence of signed line identifiers.
type Loop []int

// Description is a parsed geometry description.
// Entity identifiers are the 1-based slice positions.
type Description struct {
	LC        float64
	Algorithm int
	Points    []Point
	Lines     []Line
	Loops     []Loop
	// Surfaces holds the loop identifier bounding each plane surface.
	Surfaces []int
}

// ErrInvalid is wrapped by all errors returned by Validate.
var ErrInvalid = errors.New("invalid geometry description")

// Validate checks the referential closure of d: lines reference declared
// points, loops reference declared lines and are closed, surfaces reference
// declared loops.
func (d *Description) Validate() error {
	for i, l := range d.Lines {
		for _, p := range l {
			if p < 1 || p > len(d.Points) {
				return fmt.Errorf("%w: line %d references undeclared point %d", ErrInvalid, i+1, p)
			}
		}
		if l[0] == l[1] {
			return fmt.Errorf("%w: line %d is degenerate", ErrInvalid, i+1)
		}
	}
	for i := range d.Loops {
		if _, err := d.LoopPoints(i + 1); err != nil {
			return err
		}
	}
	for i, loop := range d.Surfaces {
		if loop < 1 || loop > len(d.Loops) {
			return fmt.Errorf("%w: plane surface %d references undeclared line loop %d", ErrInvalid, i+1, loop)
		}
	}
	return nil
}

// LoopPoints returns the point identifiers visited by the loop with identifier id,
// in traversal order, starting at the first point of the loop's first line.
// An error is returned if the loop references undeclared lines or is not closed.
func (d *Description) LoopPoints(id int) ([]int, error) {
	if id < 1 || id > len(d.Loops) {
		return nil, fmt.Errorf("%w: undeclared line loop %d", ErrInvalid, id)
	}
	loop := d.Loops[id-1]
	if len(loop) < 3 {
		return nil, fmt.Errorf("%w: line loop %d has %d lines", ErrInvalid, id, len(loop))
	}
	pts := make([]int, len(loop))
	var end int
	for i, ref := range loop {
		a, b, err := d.directed(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: line loop %d: %v", ErrInvalid, id, err)
		}
		if i > 0 && a != end {
			return nil, fmt.Errorf("%w: line loop %d not connected at line %d", ErrInvalid, id, ref)
		}
		pts[i] = a
		end = b
	}
	if end != pts[0] {
		return nil, fmt.Errorf("%w: line loop %d is not closed", ErrInvalid, id)
	}
	return pts, nil
}

// directed returns start and end points of a signed line reference.
func (d *Description) directed(ref int) (start, end int, err error) {
	idx := ref
	if idx < 0 {
		idx = -idx
	}
	if idx == 0 || idx > len(d.Lines) {
		return 0, 0, fmt.Errorf("undeclared line %d", ref)
	}
	l := d.Lines[idx-1]
	if ref < 0 {
		return l[1], l[0], nil
	}
	return l[0], l[1], nil
}

// SurfacePoints returns the positions of the points around the boundary of
// plane surface id, in loop order.
func (d *Description) SurfacePoints(id int) ([]r3.Vec, error) {
	if id < 1 || id > len(d.Surfaces) {
		return nil, fmt.Errorf("%w: undeclared plane surface %d", ErrInvalid, id)
	}
	ids, err := d.LoopPoints(d.Surfaces[id-1])
	if err != nil {
		return nil, err
	}
	pts := make([]r3.Vec, len(ids))
	for i, p := range ids {
		if p < 1 || p > len(d.Points) {
			return nil, fmt.Errorf("%w: undeclared point %d", ErrInvalid, p)
		}
		pts[i] = d.Points[p-1].X
	}
	return pts, nil
}

// Normal returns the area weighted normal of a closed polygon using
// Newell's method. Its norm is twice the polygon's area.
func Normal(poly []r3.Vec) r3.Vec {
	var n r3.Vec
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}
