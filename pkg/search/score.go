package search

import "math"

// Score is a search node's value from the perspective of the side to move
// at that node, paired with the ply distance at which a forced mate was
// found. Finite scores compare on Value alone; an infinite score's Depth
// breaks ties so that, among winning scores, a smaller Depth (a faster
// mate) is preferred, and among losing scores a larger Depth (a slower
// loss) is preferred. Grounded on spec.md §4.7's score representation and
// teacher's eval.Score/eval.IncrementMateDistance.
type Score struct {
	Value float64
	Depth int
}

var (
	// ZeroScore is a drawn or otherwise neutral leaf.
	ZeroScore = Score{}
	// PosInfScore is an unconditional win for the side to move.
	PosInfScore = Score{Value: math.Inf(1)}
	// NegInfScore is an unconditional loss for the side to move.
	NegInfScore = Score{Value: math.Inf(-1)}
)

// IsMate reports whether s represents a forced win or loss rather than a
// finite heuristic value.
func (s Score) IsMate() bool {
	return math.IsInf(s.Value, 0)
}

// Negate flips s to the other side's perspective, carrying Depth through
// unchanged; callers wanting mate-distance bookkeeping call
// IncrementMateDistance first, matching teacher's
// eval.IncrementMateDistance(score).Negate() call order.
func (s Score) Negate() Score {
	return Score{Value: -s.Value, Depth: s.Depth}
}

// IncrementMateDistance adds one ply to a mate score's distance as it is
// returned up the tree from a child node, so that a mate found deeper
// scores as one ply further away from the parent's point of view. A no-op
// on finite scores.
func IncrementMateDistance(s Score) Score {
	if s.IsMate() {
		s.Depth++
	}
	return s
}

// Less reports whether s is strictly worse than o for the side whose
// perspective both scores share.
func (s Score) Less(o Score) bool {
	switch {
	case s.Value < o.Value:
		return true
	case s.Value > o.Value:
		return false
	case math.IsInf(s.Value, 1) && math.IsInf(o.Value, 1):
		return s.Depth > o.Depth // a deeper-found win is a slower, worse mate
	case math.IsInf(s.Value, -1) && math.IsInf(o.Value, -1):
		return s.Depth < o.Depth // a shallower-found loss is a faster, worse mate
	default:
		return false
	}
}

// Max returns whichever of a, b is not worse.
func Max(a, b Score) Score {
	if a.Less(b) {
		return b
	}
	return a
}
