/*
Package fractal generates the boundary of self-similar fractal solids and
serializes it as a gmsh geometry description.

Two families are supported: the Sierpinski tetrahedron, built by keeping the
four corner tetrahedra of every tetrahedron, and the Menger sponge, built by
keeping 20 of the 27 sub-cubes of every cube. After level rounds of
subdivision the leaf solids are walked once and their exposed faces are
written as points, lines, line loops and plane surfaces with deduplicated
vertices and edges. Faces interior to the fractal are never written.

	var b bytes.Buffer
	err := fractal.Describe(&b, fractal.Parms{
		Shape:      fractal.ShapeMenger,
		Level:      2,
		EdgeLength: 0.05,
	})

Meshing the description is delegated to a [mesh.Builder].
*/
package fractal
