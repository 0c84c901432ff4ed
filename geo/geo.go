/*
Package geo reads and writes boundary geometry descriptions in the textual
format accepted by the gmsh meshing engine. Only the statements needed to
describe a polyhedral boundary are supported:

	lc = 0.1;
	Point(1) = {0,0,0,lc};
	Line(1) = {1,2};
	Line Loop(1) = {1,2,-3};
	Plane Surface(1) = {1};
	Mesh.Algorithm = 6;

Identifiers of each kind are 1-based and dense. A negative line reference
in a loop denotes the line traversed from its second point to its first.
*/
package geo

// DefaultAlgorithm is the gmsh 2D meshing algorithm (Frontal-Delaunay)
// selected when none is specified.
const DefaultAlgorithm = 6

// lcName is the variable holding the characteristic length of every point.
const lcName = "lc"
