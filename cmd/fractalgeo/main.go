// Command fractalgeo writes the boundary geometry description of a fractal
// solid and optionally meshes it, saving the result as STL and PNG.
//
// Usage:
//
//	fractalgeo -shape menger -level 2 -h 0.05 -geo sponge.geo -mesher gmsh -stl sponge.stl
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/soypat/fractal"
	"github.com/soypat/fractal/geo"
	"github.com/soypat/fractal/internal/d3"
	"github.com/soypat/fractal/mesh"
	"github.com/soypat/fractal/preview"
)

func main() {
	var (
		shape    = flag.String("shape", "sierpinski", "fractal solid: sierpinski (pyramid) or menger (sponge)")
		level    = flag.Int("level", 1, "number of subdivision rounds")
		h        = flag.Float64("h", 0.1, "target mesh edge length")
		alg      = flag.Int("alg", geo.DefaultAlgorithm, "gmsh 2D meshing algorithm")
		geoPath  = flag.String("geo", "", "write the geometry description to this file, - for stdout")
		dump     = flag.String("dump", "", "debug dump of the description handed to the mesher")
		mesher   = flag.String("mesher", "none", "mesh builder: none, planar or gmsh")
		gmshPath = flag.String("gmsh", "gmsh", "path to the gmsh executable")
		stlPath  = flag.String("stl", "", "write the mesh to this binary STL file")
		pngPath  = flag.String("png", "", "write a preview of the STL mesh to this PNG file")
		timeout  = flag.Duration("timeout", 0, "abort meshing after this duration")
	)
	flag.Parse()
	log.SetFlags(0)
	s, err := fractal.ParseShape(*shape)
	if err != nil {
		log.Fatal(err)
	}
	parms := fractal.Parms{
		Shape:      s,
		Level:      *level,
		EdgeLength: *h,
		Algorithm:  *alg,
		DumpPath:   *dump,
	}
	if err := parms.Validate(); err != nil {
		log.Fatal(err)
	}
	if *geoPath != "" {
		if err := writeGeo(*geoPath, parms); err != nil {
			log.Fatal(err)
		}
	}

	var b mesh.Builder
	switch *mesher {
	case "none":
		if *stlPath != "" || *pngPath != "" {
			log.Fatal("-stl and -png need a mesher")
		}
		return
	case "planar":
		b = mesh.Planar{}
	case "gmsh":
		b = mesh.Gmsh{Path: *gmshPath}
	default:
		log.Fatalf("unknown mesher %q", *mesher)
	}
	if *pngPath != "" && *stlPath == "" {
		log.Fatal("-png needs -stl")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	start := time.Now()
	m, err := fractal.Generate(ctx, b, parms)
	if err != nil {
		log.Fatal(err)
	}
	size := d3.Box(m.Bounds()).Size()
	log.Printf("%s level %d: %d vertices, %d triangles, area %.6g, size %.4gx%.4gx%.4g in %s",
		parms.Shape, parms.Level, len(m.Vertices), len(m.Triangles), m.Area(),
		size.X, size.Y, size.Z, time.Since(start).Round(time.Millisecond))

	if *stlPath != "" {
		if err := m.CreateSTL(*stlPath); err != nil {
			log.Fatal(err)
		}
	}
	if *pngPath != "" {
		if err := preview.STLToPNG(*stlPath, *pngPath, preview.DefaultView); err != nil {
			log.Fatal(err)
		}
	}
}

func writeGeo(path string, parms fractal.Parms) error {
	if path == "-" {
		return fractal.Describe(os.Stdout, parms)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fractal.Describe(fp, parms); err != nil {
		fp.Close()
		return err
	}
	if err := fp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
