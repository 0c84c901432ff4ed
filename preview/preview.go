// Package preview renders STL files to PNG images on the CPU.
package preview

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/fractal/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera and image of a preview.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye  r3.Vec
	Near float64
	Far  float64
	// Width and Height of the output image in pixels.
	Width, Height int
	// Supersample renders at a multiple of the output size and downsamples
	// for antialiasing. Zero or one disables supersampling.
	Supersample int
	// Color of the object and Background as hex strings.
	Color, Background string
}

// DefaultView is an isometric view of a model fit in a bi-unit cube.
var DefaultView = View{
	Up:          r3.Vec{Z: 1},
	Eye:         d3.Elem(2.4), // iso view.
	Near:        1,
	Far:         10,
	Width:       512,
	Height:      512,
	Supersample: 2,
	Color:       "#468966",
	Background:  "#FFF8E3",
}

// Render renders the binary STL file at stlPath.
func Render(stlPath string, view View) (image.Image, error) {
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("preview: image size must be positive")
	}
	if view.Near <= 0 || view.Far <= view.Near {
		return nil, errors.New("preview: need 0 < near < far")
	}
	mesh, err := fauxgl.LoadSTL(stlPath)
	if err != nil {
		return nil, err
	}
	scale := view.Supersample
	if scale < 1 {
		scale = 1
	}
	const fovy = 30 // vertical field of view in degrees

	var (
		eye    = fauxgl.V(view.Eye.X, view.Eye.Y, view.Eye.Z)          // camera position
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z) // view center position
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)             // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()                  // light direction
	)

	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if scale > 1 {
		// downsample image for antialiasing
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// STLToPNG renders the binary STL file at stlPath to a PNG file at pngPath.
func STLToPNG(stlPath, pngPath string, view View) error {
	img, err := Render(stlPath, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(pngPath, img)
}
