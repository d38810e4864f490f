// Package player drives one game to completion between two move sources,
// grounded on original_source/src/Game/Game.cpp's play_game loop: ask the
// side to move for a move, punch the clock, apply the move, repeat until
// the clock or the board declares the game over.
package player

import (
	"context"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
)

// Player chooses a move for the side to move in b, within whatever time
// clk currently allows. Implementations must not mutate b; Board's value
// semantics mean the driver applies the returned move itself.
type Player interface {
	Name() string
	ChooseMove(ctx context.Context, b *board.Board, clk *clock.Clock) (board.Move, error)
}

// RecordedMove is one played half-move plus how long its side spent
// choosing it, kept for PGN annotation (clock comments, TimeLeftWhite/Black
// tags).
type RecordedMove struct {
	Move      board.Move
	San       string
	TimeSpent time.Duration
}

// GameRecord is everything PlayGame produces: enough to reconstruct or
// write out the game afterward.
type GameRecord struct {
	StartFEN string
	Moves    []RecordedMove
	Result   board.Result
	White    string
	Black    string
}

// PlayGame runs one game from b to completion, alternating ChooseMove calls
// between white and black, punching clk after every move per
// original_source's ordering (the clock is charged for thinking time before
// the board is checked for the move's own consequences). ctx cancellation
// ends the game early with board.Other and is reported as the result's
// Text; it does not otherwise special-case either player.
func PlayGame(ctx context.Context, b board.Board, clk *clock.Clock, white, black Player) GameRecord {
	record := GameRecord{StartFEN: b.FEN(), White: white.Name(), Black: black.Name()}

	clk.Start()
	for {
		if result := b.Result(); !result.IsOngoing() {
			record.Result = result
			break
		}
		select {
		case <-ctx.Done():
			record.Result = board.Result{Kind: board.Other, Text: ctx.Err().Error()}
			clk.Stop()
			return record
		default:
		}

		mover := b.Turn()
		current := white
		if mover == board.Black {
			current = black
		}

		start := time.Now()
		mv, err := current.ChooseMove(ctx, &b, clk)
		spent := time.Since(start)
		if err != nil {
			winner := mover.Opponent()
			record.Result = board.Result{Kind: board.Other, Winner: winner, Text: err.Error()}
			clk.Stop()
			return record
		}

		san := board.SAN(&b, mv)
		b = b.Apply(mv)
		record.Moves = append(record.Moves, RecordedMove{Move: mv, San: san, TimeSpent: spent})

		if result := clk.Punch(ctx, &b); !result.IsOngoing() {
			record.Result = result
			break
		}
	}
	clk.Stop()
	return record
}
