package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84 // 80 byte comment and triangle count.
	stlTriangleSize = 50
)

// ErrNormalMismatch is returned when a triangle's stored normal is not
// approximately equal to the normal calculated from its vertices.
// It may be ignored if the model is OK.
var ErrNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")

// CreateSTL writes the indexed mesh to a binary STL file at path.
func CreateSTL(path string, vertices []r3.Vec, triangles [][3]int) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSTL(fp, vertices, triangles); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// WriteSTL writes the indexed mesh to w in binary STL format. Triangle
// normals are computed from the vertex winding.
func WriteSTL(w io.Writer, vertices []r3.Vec, triangles [][3]int) error {
	if len(triangles) == 0 {
		return errors.New("empty triangle slice")
	}
	if uint64(len(triangles)) > math.MaxUint32 {
		return fmt.Errorf("%d triangles exceed STL capacity", len(triangles))
	}
	bw := bufio.NewWriter(w)
	var header [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(header[80:], uint32(len(triangles)))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	var (
		b [stlTriangleSize]byte
		d stlTriangle
	)
	for i, t := range triangles {
		var tri Triangle3
		for j, idx := range t {
			if idx < 0 || idx >= len(vertices) {
				return fmt.Errorf("triangle %d references vertex %d, have %d vertices", i, idx, len(vertices))
			}
			tri[j] = vertices[idx]
		}
		d.set(tri)
		d.put(b[:])
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSTL reads a binary STL file into an indexed mesh. Vertices with
// identical stored coordinates are merged. If stored normals disagree with
// the normals computed from the vertices the mesh is returned along with
// an error wrapping ErrNormalMismatch.
func ReadSTL(r io.Reader) (vertices []r3.Vec, triangles [][3]int, err error) {
	br := bufio.NewReader(r)
	var header [stlHeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, nil, fmt.Errorf("STL header read failed: %w", err)
	}
	count := int(binary.LittleEndian.Uint32(header[80:]))
	if count == 0 {
		return nil, nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		b          [stlTriangleSize]byte
		d          stlTriangle
		mismatches int
	)
	index := make(map[[3]float32]int)
	triangles = make([][3]int, 0, count)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		d.get(b[:])
		if err := d.validate(); errors.Is(err, ErrNormalMismatch) {
			mismatches++
		} else if err != nil {
			return nil, nil, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		var t [3]int
		for j, v := range d.Vertex {
			idx, ok := index[v]
			if !ok {
				idx = len(vertices)
				index[v] = idx
				vertices = append(vertices, r3From3F32(v))
			}
			t[j] = idx
		}
		triangles = append(triangles, t)
	}
	if mismatches > 0 {
		// For high resolution models this error may be incorrectly returned.
		err = fmt.Errorf("%w in %d of %d triangles", ErrNormalMismatch, mismatches, count)
	}
	return vertices, triangles, err
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal [3]float32
	Vertex [3][3]float32
	// Attribute byte count is not supported.
}

func (d *stlTriangle) set(t Triangle3) {
	d.Normal = f32From(t.Normal())
	for i, v := range t {
		d.Vertex[i] = f32From(v)
	}
}

func (d *stlTriangle) put(b []byte) {
	_ = b[stlTriangleSize-1] // early bounds check
	put3F32(b, d.Normal)
	for i, v := range d.Vertex {
		put3F32(b[12*(i+1):], v)
	}
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (d *stlTriangle) get(b []byte) {
	_ = b[stlTriangleSize-1] // early bounds check
	get3F32(b, &d.Normal)
	for i := range d.Vertex {
		get3F32(b[12*(i+1):], &d.Vertex[i])
	}
}

func (d *stlTriangle) validate() error {
	const normTol = 5e-2
	if bad3F32(d.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	var t Triangle3
	for i, v := range d.Vertex {
		if bad3F32(v) {
			return errors.New("inf/NaN STL triangle vertex")
		}
		t[i] = r3From3F32(v)
	}
	if t.Degenerate(1e-12) {
		return errors.New("triangle is degenerate")
	}
	// Scaled up so tiny triangles keep a usable cross product.
	for i := range t {
		t[i] = r3.Scale(10, t[i])
	}
	calc := f32From(t.Normal())
	neg := [3]float32{-calc[0], -calc[1], -calc[2]}
	if !equalWithin3F32(calc, d.Normal, normTol) && !equalWithin3F32(neg, d.Normal, normTol) {
		return ErrNormalMismatch // sometimes may fail
	}
	return nil
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func f32From(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}
