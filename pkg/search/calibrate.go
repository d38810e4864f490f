package search

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/eval"
)

// calibrationGames bounds how many sampled positions Calibrate scores for
// the centipawn measurement: a fixed iteration cap rather than a
// relative-variance stopping criterion, simpler to reason about without a
// runtime feedback loop.
const calibrationGames = 64

// calibrationPlies bounds the short internal game Calibrate plays to
// measure per-node search cost.
const calibrationPlies = 6

// calibrationDepth is the fixed search depth used while measuring
// per-node search cost; calibration cares about typical node cost, not
// best play.
const calibrationDepth = 2

// Calibration holds the two measurements spec.md §4.7 asks an engine to
// take once at construction.
type Calibration struct {
	// PerNodeTime is the measured average search cost per visited node,
	// consulted by FixedBudget's minimum-depth formula.
	PerNodeTime time.Duration
	// CentipawnValue converts a genome's raw composite score to the
	// centipawn units an external protocol expects.
	CentipawnValue float64
}

// Calibrate plays a short internal fixed-depth game from the starting
// position to measure per-node search cost, then samples calibrationGames
// random legal positions reached along similar short random games, scoring
// each with and without one random pawn removed, and reports the mean
// absolute score delta as the centipawn value. Grounded on spec.md §4.7's
// "plays a short internal game ... repeatedly scores random positions with
// and without one random pawn removed".
func Calibrate(ctx context.Context, genome *eval.Genome, rng *rand.Rand) Calibration {
	return Calibration{
		PerNodeTime:    measurePerNodeTime(ctx, genome),
		CentipawnValue: measureCentipawnValue(genome, rng),
	}
}

func measurePerNodeTime(ctx context.Context, genome *eval.Genome) time.Duration {
	s := NewSearch(genome)
	b := board.NewBoard()

	start := time.Now()
	var totalNodes uint64
	for i := 0; i < calibrationPlies && b.Result().IsOngoing(); i++ {
		nodes, _, moves := s.Run(ctx, &b, calibrationDepth, 0, 0, nil)
		totalNodes += nodes
		if len(moves) == 0 {
			break
		}
		b = b.Apply(moves[0])
	}
	elapsed := time.Since(start)

	if totalNodes == 0 {
		return time.Millisecond
	}
	return elapsed / time.Duration(totalNodes)
}

func measureCentipawnValue(genome *eval.Genome, rng *rand.Rand) float64 {
	var deltaSum float64
	var samples int
	for i := 0; i < calibrationGames; i++ {
		pos := randomPosition(rng)

		withoutPawn, ok := removeRandomPawn(pos, rng)
		if !ok {
			continue
		}

		base := genome.Evaluate(&pos, pos.Turn(), 0)
		adjusted := genome.Evaluate(&withoutPawn, withoutPawn.Turn(), 0)

		delta := base - adjusted
		if delta < 0 {
			delta = -delta
		}
		deltaSum += delta
		samples++
	}
	if samples == 0 {
		return 0
	}
	return deltaSum / float64(samples)
}

// randomPosition plays a short random legal game from the starting position
// and returns wherever it lands.
func randomPosition(rng *rand.Rand) board.Board {
	b := board.NewBoard()
	plies := 4 + rng.Intn(16)
	for i := 0; i < plies && b.Result().IsOngoing(); i++ {
		moves := b.LegalMoves()
		if len(moves) == 0 {
			break
		}
		b = b.Apply(moves[rng.Intn(len(moves))])
	}
	return b
}

// removeRandomPawn returns a copy of b with one randomly chosen pawn (of
// either color) removed, by editing the FEN piece-placement field and
// re-parsing through the public Board API — this package has no access to
// Board's private squares array, and FEN round-tripping is the board
// package's only exported way to construct an edited position.
func removeRandomPawn(b board.Board, rng *rand.Rand) (board.Board, bool) {
	fields := strings.Fields(b.FEN())
	if len(fields) < 6 {
		return board.Board{}, false
	}

	squares := expandPlacement(fields[0])
	var pawns []int
	for i, c := range squares {
		if c == 'P' || c == 'p' {
			pawns = append(pawns, i)
		}
	}
	if len(pawns) == 0 {
		return board.Board{}, false
	}
	squares[pawns[rng.Intn(len(pawns))]] = '.'
	fields[0] = compressPlacement(squares)

	next, err := board.FromFEN(strings.Join(fields, " "))
	if err != nil {
		return board.Board{}, false
	}
	return next, true
}

// expandPlacement decodes a FEN piece-placement field into 64 bytes (rank 8
// down to rank 1, file a to h, per FEN's own ordering), using '.' for an
// empty square.
func expandPlacement(placement string) []byte {
	squares := make([]byte, 0, 64)
	for _, r := range placement {
		switch {
		case r == '/':
			continue
		case r >= '1' && r <= '8':
			for i := 0; i < int(r-'0'); i++ {
				squares = append(squares, '.')
			}
		default:
			squares = append(squares, byte(r))
		}
	}
	return squares
}

// compressPlacement is expandPlacement's inverse.
func compressPlacement(squares []byte) string {
	var sb strings.Builder
	for rank := 0; rank < 8; rank++ {
		empty := 0
		for file := 0; file < 8; file++ {
			c := squares[rank*8+file]
			if c == '.' {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(c)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank != 7 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}
