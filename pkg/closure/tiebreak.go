package closure

// Candidate is a tentative frontier entry: total weight from the source and
// the predecessor that achieved it.
type Candidate struct {
	Weight   Weight
	Previous VertexIndex
}

// Better reports whether candidate should replace existing as the tentative
// entry of vertex.
//
// Smaller weight wins. On an exact weight tie the predecessor closer to vertex
// by index wins, and if that also ties the smaller predecessor index wins.
// The secondary keys form a strict order over a finite set, so zero-weight
// cycles cannot make relaxation oscillate.
func Better(vertex VertexIndex, candidate, existing Candidate) bool {
	if candidate.Weight != existing.Weight {
		return candidate.Weight < existing.Weight
	}
	d := indexDistance(vertex, candidate.Previous)
	ed := indexDistance(vertex, existing.Previous)
	if d != ed {
		return d < ed
	}
	return candidate.Previous < existing.Previous
}

// candidateLess orders the frontier by weight only.
func candidateLess(a, b Candidate) bool {
	return a.Weight < b.Weight
}

func indexDistance(a, b VertexIndex) int {
	if a > b {
		return a - b
	}
	return b - a
}
