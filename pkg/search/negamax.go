// Package search implements negamax with alpha-beta pruning over a
// eval.Genome's composite evaluation, iterative deepening, a selective
// quiescence extension, and the centipawn calibration used to report engine
// scores. Grounded on teacher's pkg/search, reworked around this module's
// value-semantics board.Board (Apply returns a new position rather than
// mutating in place, so recursion needs no push/pop undo bookkeeping) and a
// genetically evolved evaluator in place of a fixed one.
package search

import (
	"context"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/eval"
	"go.uber.org/atomic"
)

// quiescenceCaptureCap bounds the forced-recapture recursion on the last-
// moved square, per spec.md §4.7 step 5's "up to a fixed cap".
const quiescenceCaptureCap = 8

// maxCheckExtensions bounds how many times step 4's extension triggers may
// push the descent past minimumDepth in a single line, so a perpetual-check
// sequence cannot recurse without bound.
const maxCheckExtensions = 6

// Search drives one negamax descent from a fixed root over a shared genome.
// A Search value holds per-run state (node count, the in-search repetition
// path) and must not be reused across concurrent searches, matching
// teacher's runAlphaBeta's single-use-per-Search.Search-call discipline.
type Search struct {
	Genome *eval.Genome

	// MoveNow is polled at the top of every node; once set, the descent
	// unwinds immediately and the best line found so far at the current
	// iteration is returned. Shared with an external protocol handler per
	// spec.md §5's "sole cross-thread communications" list.
	MoveNow *atomic.Bool

	drawValue   *eval.DrawValueGene
	moveSorting *eval.MoveSortingGene

	nodes    uint64
	rootPath []board.ZobristHash
}

// NewSearch returns a Search over genome with a fresh, cleared MoveNow flag.
func NewSearch(genome *eval.Genome) *Search {
	s := &Search{Genome: genome, MoveNow: atomic.NewBool(false)}
	for _, g := range genome.Genes {
		switch t := g.(type) {
		case *eval.DrawValueGene:
			s.drawValue = t
		case *eval.MoveSortingGene:
			s.moveSorting = t
		}
	}
	return s
}

// Run searches b to minimumDepth plies, selectively extending per spec.md
// §4.7 step 4 up to maxCheckExtensions further plies, then quiescing. pv
// seeds move ordering (the previous iteration's principal variation, or nil
// on the first iteration). perMoveBudget and perNodeTime are consulted only
// by the extension trigger in step 4 ("the per-move time allotment exceeds
// legal_move_count · per_node_time"); pass zero values to disable that
// trigger (e.g. for a plain depth-limited search).
func (s *Search) Run(ctx context.Context, b *board.Board, minimumDepth int, perMoveBudget, perNodeTime time.Duration, pv []board.Move) (uint64, Score, []board.Move) {
	s.nodes = 0
	s.rootPath = nil
	score, moves := s.negamax(ctx, b, minimumDepth, maxCheckExtensions, 0, perMoveBudget, perNodeTime, NegInfScore, PosInfScore, pv)
	return s.nodes, score, moves
}

func (s *Search) negamax(ctx context.Context, b *board.Board, depth, extensionsLeft, ply int, perMoveBudget, perNodeTime time.Duration, alpha, beta Score, pv []board.Move) (Score, []board.Move) {
	if s.MoveNow.Load() {
		return alpha, nil
	}
	select {
	case <-ctx.Done():
		return alpha, nil
	default:
	}

	if result := b.Result(); !result.IsOngoing() {
		return s.terminalScore(b, result), nil
	}
	if s.repeatedFromRoot(b.Hash()) {
		return ZeroScore, nil
	}

	s.rootPath = append(s.rootPath, b.Hash())
	defer func() { s.rootPath = s.rootPath[:len(s.rootPath)-1] }()

	moves := b.LegalMoves()
	pvMove, hasPV := pvHead(pv)

	if depth <= 0 {
		if extensionsLeft > 0 && s.warrantsExtension(b, moves, perMoveBudget, perNodeTime, hasPV) {
			depth = 1
			extensionsLeft--
		} else {
			return s.quiesce(ctx, b, alpha, beta, ply, quiescenceCaptureCap), nil
		}
	}

	s.nodes++

	orderMoves(moves, b, s.Genome, s.moveSorting, pvMove, hasPV)

	var line []board.Move
	for _, m := range moves {
		next := b.Apply(m)

		var childPV []board.Move
		if hasPV && pvMove.Equals(m) {
			childPV = pv[1:]
		}

		score, rem := s.negamax(ctx, &next, depth-1, extensionsLeft, ply+1, perMoveBudget, perNodeTime, beta.Negate(), alpha.Negate(), childPV)
		score = IncrementMateDistance(score).Negate()

		if alpha.Less(score) {
			alpha = score
			line = append([]board.Move{m}, rem...)
		}
		if !alpha.Less(beta) {
			break // beta cutoff
		}
	}
	return alpha, line
}

// warrantsExtension implements spec.md §4.7 step 4: a principal-variation
// move exists at this ply, the side to move is in check, or the remaining
// per-move time allotment exceeds what the node count at hand would need.
func (s *Search) warrantsExtension(b *board.Board, moves []board.Move, perMoveBudget, perNodeTime time.Duration, hasPV bool) bool {
	if hasPV {
		return true
	}
	if b.InCheck(b.Turn()) {
		return true
	}
	if perNodeTime > 0 && perMoveBudget > time.Duration(len(moves))*perNodeTime {
		return true
	}
	return false
}

// terminalScore scores a position b.Result() has already flagged as ended.
// Board.Result() only ever reports Checkmate or one of the draw kinds
// (TimeForfeit and its insufficient-material variant are Clock-only
// outcomes, never produced by Board itself); every non-Checkmate kind is
// therefore a draw here.
func (s *Search) terminalScore(b *board.Board, result board.Result) Score {
	if result.Kind == board.Checkmate {
		return NegInfScore
	}
	value := 0.0
	if s.drawValue != nil {
		value = s.drawValue.Value()
	}
	return Score{Value: value}
}

// repeatedFromRoot reports whether h already occurred earlier along the
// current search path since the true root, per spec.md §4.7's in-search
// repetition rule: "if the current board position's hash appears ≥2 times
// among the moves played from the true root ... the node is scored as a
// draw". This is stricter than (and independent of) Board.Result's
// whole-game Threefold, which only fires at 3 occurrences across the
// actual game history; here a single earlier occurrence within this
// search is enough to stop the engine from searching toward a repetition
// it could force anyway.
func (s *Search) repeatedFromRoot(h board.ZobristHash) bool {
	for _, seen := range s.rootPath {
		if seen == h {
			return true
		}
	}
	return false
}
