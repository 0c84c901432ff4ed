package fractal

// faceRule derives a child cube's face visibility from its parent.
type faceRule uint8

const (
	// ruleHidden marks a face shared with a kept sibling.
	ruleHidden faceRule = iota
	// ruleExposed marks a face bordering a removed sibling.
	ruleExposed
	// ruleInherit marks a face lying on the parent's face of the same direction.
	ruleInherit
)

func (r faceRule) apply(parent bool) bool {
	switch r {
	case ruleExposed:
		return true
	case ruleInherit:
		return parent
	}
	return false
}

// childRule describes one kept sub-cube of the 3x3x3 decomposition.
type childRule struct {
	// pos is the lattice offset of the sub-cube's V[4] corner within the parent, in thirds.
	pos   V3i
	rules [6]faceRule
}

// spongeChildren is the fixed Menger decomposition table, the same at every level.
var spongeChildren = buildSpongeChildren()

// spongeKeeps reports whether the sub-cube at pos survives subdivision.
// The body centre and the six face centres, which have two or more
// central coordinates, are removed.
func spongeKeeps(pos V3i) bool { return pos.count(1) <= 1 }

func buildSpongeChildren() (children [20]childRule) {
	n := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				pos := V3i{i, j, k}
				if !spongeKeeps(pos) {
					continue
				}
				child := childRule{pos: pos}
				for f, dir := range faceNormal {
					neighbor := pos.Add(dir)
					switch {
					case !neighbor.InRange(0, 2):
						child.rules[f] = ruleInherit
					case spongeKeeps(neighbor):
						child.rules[f] = ruleHidden
					default:
						child.rules[f] = ruleExposed
					}
				}
				children[n] = child
				n++
			}
		}
	}
	if n != len(children) {
		panic("bug: menger decomposition does not keep 20 sub-cubes")
	}
	return children
}
