package fractal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/soypat/fractal/geo"
	"github.com/soypat/fractal/mesh"
)

// Shape selects the fractal solid to generate.
type Shape int

const (
	ShapeSierpinski Shape = iota + 1
	ShapeMenger
)

func (s Shape) String() string {
	switch s {
	case ShapeSierpinski:
		return "sierpinski"
	case ShapeMenger:
		return "menger"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape returns the Shape named s. Both "pyramid" and "sierpinski"
// name the Sierpinski tetrahedron; "sponge" and "menger" name the Menger sponge.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(s) {
	case "sierpinski", "pyramid":
		return ShapeSierpinski, nil
	case "menger", "sponge":
		return ShapeMenger, nil
	}
	return 0, configErr(1, fmt.Sprintf("unknown shape %q", s))
}

// Parms configures the generation of a fractal solid's boundary.
type Parms struct {
	Shape Shape
	// Level is the number of subdivision rounds, starting at 1.
	Level int
	// EdgeLength is the target mesh edge length written as the characteristic length.
	EdgeLength float64
	// Algorithm is the 2D meshing algorithm directive. Zero selects geo.DefaultAlgorithm.
	Algorithm int
	// DumpPath, if set, is where the geometry description is written
	// before it is handed to the mesh builder.
	DumpPath string
}

// Validate checks p and returns an error wrapping ErrConfig if it is invalid.
func (p Parms) Validate() error {
	switch p.Shape {
	case ShapeSierpinski:
		if err := checkLevel(p.Level, MaxSierpinskiLevel); err != nil {
			return err
		}
	case ShapeMenger:
		if err := checkLevel(p.Level, MaxSpongeLevel); err != nil {
			return err
		}
	default:
		return configErr(1, "unknown shape "+p.Shape.String())
	}
	switch {
	case math.IsNaN(p.EdgeLength) || math.IsInf(p.EdgeLength, 0):
		return configErr(1, "edge length must be finite")
	case p.EdgeLength <= 0:
		return configErr(1, fmt.Sprintf("edge length must be positive, got %g", p.EdgeLength))
	case p.Algorithm < 0:
		return configErr(1, fmt.Sprintf("negative mesh algorithm %d", p.Algorithm))
	}
	return nil
}

func (p Parms) algorithm() int {
	if p.Algorithm == 0 {
		return geo.DefaultAlgorithm
	}
	return p.Algorithm
}

type encodable interface {
	Encode(enc *geo.Encoder)
}

// Describe generates the solid configured by p and writes its boundary
// geometry description to w.
func Describe(w io.Writer, p Parms) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var (
		solid encodable
		err   error
	)
	switch p.Shape {
	case ShapeSierpinski:
		solid, err = NewSierpinski(p.Level)
	case ShapeMenger:
		solid, err = NewSponge(p.Level)
	}
	if err != nil {
		return err
	}
	enc := geo.NewEncoder(w)
	enc.CharacteristicLength(p.EdgeLength)
	solid.Encode(enc)
	enc.MeshAlgorithm(p.algorithm())
	return enc.Flush()
}

// Generate describes the solid configured by p and meshes it with b.
// Errors from b are returned without retrying.
func Generate(ctx context.Context, b mesh.Builder, p Parms) (*mesh.Mesh, error) {
	if b == nil {
		return nil, configErr(1, "nil mesh builder")
	}
	var buf bytes.Buffer
	if err := Describe(&buf, p); err != nil {
		return nil, err
	}
	if p.DumpPath != "" {
		if err := os.WriteFile(p.DumpPath, buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
	}
	m, err := b.Build(ctx, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("meshing %s level %d: %w", p.Shape, p.Level, err)
	}
	return m, nil
}

// SierpinskiPyramid meshes the Sierpinski tetrahedron of unit side subdivided
// level times, with target mesh edge length h.
func SierpinskiPyramid(ctx context.Context, b mesh.Builder, h float64, level int) (*mesh.Mesh, error) {
	return Generate(ctx, b, Parms{Shape: ShapeSierpinski, Level: level, EdgeLength: h})
}

// MengerSponge meshes the unit Menger sponge subdivided level times,
// with target mesh edge length h.
func MengerSponge(ctx context.Context, b mesh.Builder, h float64, level int) (*mesh.Mesh, error) {
	return Generate(ctx, b, Parms{Shape: ShapeMenger, Level: level, EdgeLength: h})
}
