package board

import "fmt"

// noprogressPlyLimit is the halfmove-clock value (the FEN sense: plies played
// since the last capture or pawn move, not counting the position the streak
// started from) at which the fifty-move rule triggers. history is cleared on
// every irreversible move and always holds the current position's hash as
// its last element, so NoProgressCount is len(history)-1.
const noprogressPlyLimit = 100

// Board is a mailbox chess position: 64 squares, side to move, castling and
// en-passant state, a zobrist hash, and the repetition history since the last
// irreversible move. Apply is its only mutator-by-value: it returns a new
// Board rather than mutating the receiver, so a search tree can hold a board
// per node without separate undo bookkeeping.
type Board struct {
	squares  [64]Piece
	turn     Color
	castling Castling
	epTarget Square

	kingSquare [NumColors]Square
	attackers  [NumColors][64]uint16

	hash    ZobristHash
	history []ZobristHash

	lastMove           Move
	hasLastMove        bool
	lastMoveWasCapture bool

	fullmove int

	result Result
}

// NewBoard returns the standard chess starting position.
func NewBoard() Board {
	var b Board
	b.squares = initialSquares()
	b.turn = White
	b.castling = FullCastingRights
	b.epTarget = NoSquare
	b.fullmove = 1
	b.finish()
	return b
}

func initialSquares() [64]Piece {
	var sq [64]Piece
	backRank := []PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := File(0); f < NumFiles; f++ {
		sq[NewSquare(f, Rank1)] = Piece{Kind: backRank[f], Color: White}
		sq[NewSquare(f, Rank2)] = Piece{Kind: Pawn, Color: White}
		sq[NewSquare(f, Rank7)] = Piece{Kind: Pawn, Color: Black}
		sq[NewSquare(f, Rank8)] = Piece{Kind: backRank[f], Color: Black}
	}
	return sq
}

// finish recomputes derived state (attack maps, king squares, hash, result)
// from b.squares/b.turn/b.castling/b.epTarget. Called after construction and
// after every Apply.
func (b *Board) finish() {
	b.finishCore()
	b.appendHistory()
	b.result = b.determineResult()
}

// finishFromFEN is like finish but takes the no-progress ply count from the
// FEN halfmove clock field instead of an inherited history: a synthetic
// history of that length is fabricated (the real hash only in its last
// slot) so the fifty-move counter is preserved without spuriously matching
// the repetition rule against positions that were never actually reached.
func (b *Board) finishFromFEN(noProgress int) {
	b.finishCore()
	b.history = syntheticHistory(noProgress, b.hash)
	b.result = b.determineResult()
}

func (b *Board) finishCore() {
	for sq := Square(0); sq < NumSquares; sq++ {
		p := b.squares[sq]
		if p.Kind == King {
			b.kingSquare[p.Color] = sq
		}
	}
	b.recomputeAttackers()
	b.commitEnPassant()
	b.hash = b.computeHash()
}

func syntheticHistory(n int, last ZobristHash) []ZobristHash {
	if n < 0 {
		n = 0
	}
	if n > noprogressPlyLimit {
		n = noprogressPlyLimit
	}
	h := make([]ZobristHash, n+1)
	for i := 0; i < n; i++ {
		h[i] = ZobristHash(0x9e3779b97f4a7c15 ^ uint64(i+1))
	}
	h[n] = last
	return h
}

// commitEnPassant clears epTarget unless at least one pseudo-legal en-passant
// capture actually exists, per §4.1's commit rule. A capturing pawn sits one
// rank behind the transit square, from the capturer's point of view: one rank
// below it for White, one rank above it for Black.
func (b *Board) commitEnPassant() {
	if b.epTarget == NoSquare {
		return
	}
	capturer := b.turn
	rankOffset := -1
	if capturer == Black {
		rankOffset = 1
	}
	rank := Rank(int(b.epTarget.Rank()) + rankOffset)

	for _, df := range []int{-1, 1} {
		cf := int(b.epTarget.File()) + df
		if cf < 0 || cf > 7 {
			continue
		}
		from := NewSquare(File(cf), rank)
		p := b.squares[from]
		if p.Kind == Pawn && p.Color == capturer {
			return
		}
	}
	b.epTarget = NoSquare
}

func (b *Board) appendHistory() {
	b.history = append(b.history, b.hash)
	if len(b.history) > noprogressPlyLimit+1 {
		b.history = b.history[len(b.history)-(noprogressPlyLimit+1):]
	}
}

// At returns the piece on sq (the zero Piece if empty).
func (b *Board) At(sq Square) Piece {
	return b.squares[sq]
}

func (b *Board) Turn() Color {
	return b.turn
}

func (b *Board) Castling() Castling {
	return b.castling
}

// EnPassant returns the committed en-passant target square, if any.
func (b *Board) EnPassant() (Square, bool) {
	return b.epTarget, b.epTarget != NoSquare
}

func (b *Board) KingSquare(c Color) Square {
	return b.kingSquare[c]
}

func (b *Board) Hash() ZobristHash {
	return b.hash
}

func (b *Board) FullMoveNumber() int {
	return b.fullmove
}

// NoProgressCount is the FEN halfmove clock: the number of plies played
// since the last capture or pawn move, not counting the position that
// streak started from.
func (b *Board) NoProgressCount() int {
	return len(b.history) - 1
}

func (b *Board) LastMove() (Move, bool) {
	return b.lastMove, b.hasLastMove
}

func (b *Board) LastMoveWasCapture() bool {
	return b.lastMoveWasCapture
}

// CaptureAvailable reports whether the side to move has at least one legal
// capturing move.
func (b *Board) CaptureAvailable() bool {
	for _, m := range b.LegalMoves() {
		if m.IsCapture() {
			return true
		}
	}
	return false
}

// Result returns the outcome of the game as of this position.
func (b *Board) Result() Result {
	return b.result
}

// Apply plays m, which must come from b.LegalMoves(), and returns the
// resulting position. Operation order follows §4.1: move the piece (and
// handle the side effect of castling/en-passant/promotion), revoke castling
// rights, flip the turn, and determine the new result.
func (b *Board) Apply(m Move) Board {
	next := *b
	next.lastMove = m
	next.hasLastMove = true
	next.lastMoveWasCapture = m.IsCapture()

	irreversible := m.Piece == Pawn || !b.squares[m.To].IsEmpty() || m.Tag == EnPassant
	if irreversible {
		next.history = nil
	}

	moving := next.squares[m.From]
	next.squares[m.From] = Empty
	next.squares[m.To] = moving

	next.epTarget = NoSquare

	switch m.Tag {
	case PawnDouble:
		dir := 1
		if m.Color == Black {
			dir = -1
		}
		next.epTarget = NewSquare(m.From.File(), Rank(int(m.From.Rank())+dir))

	case EnPassant:
		captureSq := EnPassantCaptureSquare(m.To, m.Color)
		next.squares[captureSq] = Empty

	case PawnPromotion, PawnPromotionByCapture:
		next.squares[m.To] = Piece{Kind: m.Promotion, Color: m.Color}

	case CastleKingSide:
		rank := homeRank(m.Color)
		rookFrom, rookTo := NewSquare(FileH, rank), NewSquare(FileF, rank)
		next.squares[rookFrom] = Empty
		next.squares[rookTo] = Piece{Kind: Rook, Color: m.Color}

	case CastleQueenSide:
		rank := homeRank(m.Color)
		rookFrom, rookTo := NewSquare(FileA, rank), NewSquare(FileD, rank)
		next.squares[rookFrom] = Empty
		next.squares[rookTo] = Piece{Kind: Rook, Color: m.Color}
	}

	if moving.Kind == King {
		next.kingSquare[m.Color] = m.To
	}

	next.castling = next.castling &^ castlingLost(m, moving)

	if m.Color == Black {
		next.fullmove++
	}
	next.turn = b.turn.Opponent()

	next.finish()
	return next
}

// castlingLost returns the castling bits revoked by m: a king or rook
// leaving its home square, or an enemy rook being captured on its own home
// square.
func castlingLost(m Move, moving Piece) Castling {
	var lost Castling

	switch {
	case moving.Kind == King:
		if moving.Color == White {
			lost |= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			lost |= BlackKingSideCastle | BlackQueenSideCastle
		}
	case moving.Kind == Rook:
		lost |= rookHomeRight(moving.Color, m.From)
	}

	if m.IsCapture() {
		lost |= rookHomeRight(moving.Color.Opponent(), m.To)
	}
	return lost
}

func rookHomeRight(c Color, sq Square) Castling {
	rank := homeRank(c)
	switch {
	case sq == NewSquare(FileA, rank):
		if c == White {
			return WhiteQueenSideCastle
		}
		return BlackQueenSideCastle
	case sq == NewSquare(FileH, rank):
		if c == White {
			return WhiteKingSideCastle
		}
		return BlackKingSideCastle
	default:
		return 0
	}
}

// determineResult implements §4.1 step 6's ordered result determination.
func (b *Board) determineResult() Result {
	if !b.hasLegalMove() {
		if b.InCheck(b.turn) {
			return Result{Kind: Checkmate, Winner: b.turn.Opponent()}
		}
		return Result{Kind: Stalemate}
	}
	if b.repetitionCount() >= 3 {
		return Result{Kind: Threefold}
	}
	if len(b.history)-1 >= noprogressPlyLimit {
		return Result{Kind: FiftyMove}
	}
	if hasInsufficientMaterial(&b.squares) {
		return Result{Kind: InsufficientMaterial}
	}
	return Result{Kind: Ongoing}
}

func (b *Board) repetitionCount() int {
	count := 0
	for _, h := range b.history {
		if h == b.hash {
			count++
		}
	}
	return count
}

func (b *Board) String() string {
	return fmt.Sprintf("Board{turn=%v castling=%v ep=%v result=%v}", b.turn, b.castling, b.epTarget, b.result)
}
