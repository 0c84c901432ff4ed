package mesh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/soypat/fractal/render"
)

// Gmsh builds meshes by running the gmsh executable on the description
// and reading back the binary STL surface mesh it writes.
type Gmsh struct {
	// Path of the gmsh executable. If empty "gmsh" is looked up in PATH.
	Path string
	// Args are extra arguments passed to gmsh before the output flags.
	Args []string
	// Tolerance used to weld the STL vertices. Zero infers it from the mesh.
	Tolerance float64
}

var _ Builder = Gmsh{}

// ExternalError is returned when the external mesher fails.
// Output holds the combined standard output and error of the process.
type ExternalError struct {
	Output []byte
	Err    error
}

func (e *ExternalError) Error() string {
	out := bytes.TrimSpace(e.Output)
	if len(out) == 0 {
		return "gmsh: " + e.Err.Error()
	}
	return fmt.Sprintf("gmsh: %s\n%s", e.Err, out)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// Build writes the description to a temporary directory, meshes it with gmsh
// and returns the welded surface mesh. Building is not retried.
func (g Gmsh) Build(ctx context.Context, text []byte) (*Mesh, error) {
	path := g.Path
	if path == "" {
		path = "gmsh"
	}
	dir, err := os.MkdirTemp("", "fractal-gmsh")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	geoPath := filepath.Join(dir, "model.geo")
	stlPath := filepath.Join(dir, "model.stl")
	if err := os.WriteFile(geoPath, text, 0o644); err != nil {
		return nil, err
	}
	args := append([]string{geoPath}, g.Args...)
	args = append(args, "-2", "-format", "stl", "-bin", "-o", stlPath)
	cmd := exec.CommandContext(ctx, path, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &ExternalError{Output: out, Err: err}
	}
	fp, err := os.Open(stlPath)
	if err != nil {
		return nil, &ExternalError{Output: out, Err: err}
	}
	defer fp.Close()
	m, err := ReadSTL(fp)
	if err != nil && !errors.Is(err, render.ErrNormalMismatch) {
		return nil, fmt.Errorf("reading gmsh output: %w", err)
	}
	return Weld(m, g.Tolerance), nil
}
