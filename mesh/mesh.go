// Package mesh defines the mesh object returned by mesh builders and
// adapters turning geometry descriptions into meshes.
package mesh

import (
	"context"
	"io"

	"github.com/soypat/fractal/internal/d3"
	"github.com/soypat/fractal/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Builder turns a geometry description into a mesh. Errors are returned
// to the caller as they are; the description is deterministic so retrying
// a failed build reproduces the failure.
type Builder interface {
	Build(ctx context.Context, geo []byte) (*Mesh, error)
}

// Mesh is an indexed triangle surface mesh.
type Mesh struct {
	Vertices []r3.Vec
	// Triangles holds vertex indices ordered counter clockwise seen from outside.
	Triangles [][3]int
}

// Triangles3 returns the triangles of the mesh with their vertex positions.
func (m *Mesh) Triangles3() []render.Triangle3 {
	tris := make([]render.Triangle3, len(m.Triangles))
	for i, t := range m.Triangles {
		tris[i] = render.Triangle3{m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]}
	}
	return tris
}

// CreateSTL writes the mesh to a binary STL file at path.
func (m *Mesh) CreateSTL(path string) error {
	return render.CreateSTL(path, m.Vertices, m.Triangles)
}

// WriteSTL writes the mesh to w in binary STL format.
func (m *Mesh) WriteSTL(w io.Writer) error {
	return render.WriteSTL(w, m.Vertices, m.Triangles)
}

// ReadSTL reads a binary STL mesh. Vertices sharing stored coordinates are
// merged, use Weld to merge vertices which are merely close. Like
// render.ReadSTL a mesh is returned along with an error wrapping
// render.ErrNormalMismatch.
func ReadSTL(r io.Reader) (*Mesh, error) {
	verts, tris, err := render.ReadSTL(r)
	if verts == nil {
		return nil, err
	}
	return &Mesh{Vertices: verts, Triangles: tris}, err
}

// Bounds returns the bounding box of the mesh vertices.
// The zero box is returned for a mesh without vertices.
func (m *Mesh) Bounds() r3.Box {
	return r3.Box(d3.Set(m.Vertices).Bounds())
}

// Area returns the total surface area of the mesh.
func (m *Mesh) Area() (area float64) {
	for _, t := range m.Triangles3() {
		area += t.Area()
	}
	return area
}

// Volume returns the volume enclosed by the mesh, which is only meaningful
// for closed and consistently oriented meshes.
func (m *Mesh) Volume() (vol float64) {
	for _, t := range m.Triangles {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		vol += r3.Dot(a, r3.Cross(b, c))
	}
	return vol / 6
}

// EdgeUses returns how many triangles use each undirected edge.
// Keys are stored with lower vertex index first.
func (m *Mesh) EdgeUses() map[[2]int]int {
	uses := make(map[[2]int]int, 3*len(m.Triangles)/2)
	for _, t := range m.Triangles {
		for i := range t {
			a, b := t[i], t[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			uses[[2]int{a, b}]++
		}
	}
	return uses
}
