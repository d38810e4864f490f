package search

import (
	"sort"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/eval"
)

// orderMoves sorts moves in place per spec.md §4.7 step 1: the principal-
// variation move from the previous iteration first (if any), then whichever
// of the move-sorting gene's stages are enabled — recaptures on the
// opponent's last-moved square, MVV-LVA among the remaining captures, and
// checks before other quiet moves — each independently toggleable so
// evolution can disable a stage without touching the others. Grounded on
// teacher's board.NewMoveList/board.ByScore move prioritization, adapted to
// this board's pre-generated LegalMoves slice and eval.MoveSortingGene's
// flags.
func orderMoves(moves []board.Move, b *board.Board, genome *eval.Genome, sorting *eval.MoveSortingGene, pv board.Move, hasPV bool) {
	recaptureTarget := board.NoSquare
	hasRecapture := false
	if sorting != nil && sorting.RecapturesFirst() {
		if last, ok := b.LastMove(); ok && last.IsCapture() {
			recaptureTarget, hasRecapture = last.To, true
		}
	}

	stageOf := func(m board.Move) (stage int, mvvLva float64) {
		switch {
		case hasPV && m.Equals(pv):
			return 0, 0
		case hasRecapture && m.IsCapture() && m.To == recaptureTarget:
			return 1, 0
		case sorting != nil && sorting.MVVLVACaptures() && m.IsCapture() && genome.PieceStrength != nil:
			victim := genome.PieceStrength.Value(m.Capture)
			attacker := genome.PieceStrength.Value(m.Piece)
			return 2, attacker - victim // valuable victim, cheap attacker sorts first (most negative)
		case sorting != nil && sorting.ChecksBeforeQuiet() && givesCheck(b, m):
			return 3, 0
		default:
			return 4, 0
		}
	}

	type ranked struct {
		move   board.Move
		stage  int
		mvvLva float64
	}
	scored := make([]ranked, len(moves))
	for i, m := range moves {
		stage, mvvLva := stageOf(m)
		scored[i] = ranked{move: m, stage: stage, mvvLva: mvvLva}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].stage != scored[j].stage {
			return scored[i].stage < scored[j].stage
		}
		return scored[i].mvvLva < scored[j].mvvLva
	})

	for i, r := range scored {
		moves[i] = r.move
	}
}

func givesCheck(b *board.Board, m board.Move) bool {
	next := b.Apply(m)
	return next.InCheck(next.Turn())
}

func pvHead(pv []board.Move) (board.Move, bool) {
	if len(pv) == 0 {
		return board.Move{}, false
	}
	return pv[0], true
}
