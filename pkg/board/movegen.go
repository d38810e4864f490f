package board

import "sort"

// pseudoLegalFor returns every move the piece at sq could make ignoring
// whether it leaves the mover's own king in check.
func (b *Board) pseudoLegalFor(sq Square) []Move {
	p := b.squares[sq]
	if p.IsEmpty() || p.Color != b.turn {
		return nil
	}
	switch p.Kind {
	case Pawn:
		return b.pawnMoves(sq)
	case Knight:
		return b.knightMoves(sq)
	case Bishop:
		return b.sliderMoves(sq, Bishop, bishopDirs)
	case Rook:
		return b.sliderMoves(sq, Rook, rookDirs)
	case Queen:
		return b.sliderMoves(sq, Queen, queenDirs)
	case King:
		moves := b.kingMoves(sq)
		moves = append(moves, b.castlingMoves(sq)...)
		return moves
	default:
		return nil
	}
}

var (
	bishopDirs = []Direction{DirNE, DirSE, DirSW, DirNW}
	rookDirs   = []Direction{DirN, DirE, DirS, DirW}
	queenDirs  = []Direction{DirN, DirNE, DirE, DirSE, DirS, DirSW, DirW, DirNW}
)

func (b *Board) sliderMoves(sq Square, kind PieceKind, dirs []Direction) []Move {
	var out []Move
	color := b.turn
	for _, d := range dirs {
		for _, to := range rayTable[sq][d] {
			target := b.squares[to]
			if target.IsEmpty() {
				out = append(out, Move{Color: color, Piece: kind, From: sq, To: to, Tag: Normal})
				continue
			}
			if target.Color != color {
				out = append(out, Move{Color: color, Piece: kind, From: sq, To: to, Tag: Normal, Capture: target.Kind})
			}
			break
		}
	}
	return out
}

func (b *Board) knightMoves(sq Square) []Move {
	var out []Move
	color := b.turn
	for i := 0; i < 8; i++ {
		to := KnightTargetAt(sq, i)
		if to == NoSquare {
			continue
		}
		target := b.squares[to]
		if target.IsEmpty() {
			out = append(out, Move{Color: color, Piece: Knight, From: sq, To: to, Tag: Normal})
		} else if target.Color != color {
			out = append(out, Move{Color: color, Piece: Knight, From: sq, To: to, Tag: Normal, Capture: target.Kind})
		}
	}
	return out
}

func (b *Board) kingMoves(sq Square) []Move {
	var out []Move
	color := b.turn
	for d := Direction(0); d < NumSlidingDirections; d++ {
		to := kingTable[sq][d]
		if to == NoSquare {
			continue
		}
		target := b.squares[to]
		if target.IsEmpty() {
			out = append(out, Move{Color: color, Piece: King, From: sq, To: to, Tag: Normal})
		} else if target.Color != color {
			out = append(out, Move{Color: color, Piece: King, From: sq, To: to, Tag: Normal, Capture: target.Kind})
		}
	}
	return out
}

var promotionKinds = []PieceKind{Queen, Rook, Bishop, Knight}

func (b *Board) pawnMoves(sq Square) []Move {
	var out []Move
	color := b.turn
	f, r := sq.File(), sq.Rank()

	forward := 1
	startRank, promoRank := Rank2, Rank8
	if color == Black {
		forward = -1
		startRank, promoRank = Rank7, Rank1
	}

	single := NewSquare(f, Rank(int(r)+forward))
	if single.IsValid() && b.squares[single].IsEmpty() {
		out = append(out, pawnAdvance(color, sq, single, promoRank, PawnSingle, PawnPromotion)...)

		if r == startRank {
			double := NewSquare(f, Rank(int(r)+2*forward))
			if b.squares[double].IsEmpty() {
				out = append(out, Move{Color: color, Piece: Pawn, From: sq, To: double, Tag: PawnDouble})
			}
		}
	}

	for _, df := range []int{-1, 1} {
		cf := int(f) + df
		if cf < 0 || cf > 7 {
			continue
		}
		to := NewSquare(File(cf), Rank(int(r)+forward))
		if !to.IsValid() {
			continue
		}
		target := b.squares[to]
		switch {
		case !target.IsEmpty() && target.Color != color:
			out = append(out, pawnCapture(color, sq, to, target.Kind, promoRank, PawnCapture, PawnPromotionByCapture)...)
		case to == b.epTarget && b.epTarget != NoSquare:
			out = append(out, Move{Color: color, Piece: Pawn, From: sq, To: to, Tag: EnPassant, Capture: Pawn})
		}
	}

	return out
}

func pawnAdvance(color Color, from, to Square, promoRank Rank, plainTag, promoTag MoveTag) []Move {
	if to.Rank() == promoRank {
		out := make([]Move, 0, len(promotionKinds))
		for _, k := range promotionKinds {
			out = append(out, Move{Color: color, Piece: Pawn, From: from, To: to, Tag: promoTag, Promotion: k})
		}
		return out
	}
	return []Move{{Color: color, Piece: Pawn, From: from, To: to, Tag: plainTag}}
}

func pawnCapture(color Color, from, to Square, captured PieceKind, promoRank Rank, plainTag, promoTag MoveTag) []Move {
	if to.Rank() == promoRank {
		out := make([]Move, 0, len(promotionKinds))
		for _, k := range promotionKinds {
			out = append(out, Move{Color: color, Piece: Pawn, From: from, To: to, Tag: promoTag, Promotion: k, Capture: captured})
		}
		return out
	}
	return []Move{{Color: color, Piece: Pawn, From: from, To: to, Tag: plainTag, Capture: captured}}
}

// EnPassantCaptureSquare returns the square of the pawn actually removed by an
// en passant capture landing on to.
func EnPassantCaptureSquare(to Square, mover Color) Square {
	if mover == White {
		return NewSquare(to.File(), Rank(int(to.Rank())-1))
	}
	return NewSquare(to.File(), Rank(int(to.Rank())+1))
}

func (b *Board) castlingMoves(king Square) []Move {
	c := b.turn
	rank := homeRank(c)
	if king != NewSquare(FileE, rank) {
		return nil
	}
	var out []Move

	kingRight, queenRight := WhiteKingSideCastle, WhiteQueenSideCastle
	if c == Black {
		kingRight, queenRight = BlackKingSideCastle, BlackQueenSideCastle
	}

	if b.castling.IsAllowed(kingRight) {
		f, g := NewSquare(FileF, rank), NewSquare(FileG, rank)
		if b.squares[f].IsEmpty() && b.squares[g].IsEmpty() &&
			!b.InCheck(c) && b.squareSafeIfKingLeaves(c, king, f) && b.squareSafeIfKingLeaves(c, king, g) {
			out = append(out, Move{Color: c, Piece: King, From: king, To: g, Tag: CastleKingSide})
		}
	}
	if b.castling.IsAllowed(queenRight) {
		d, cc, bb := NewSquare(FileD, rank), NewSquare(FileC, rank), NewSquare(FileB, rank)
		if b.squares[d].IsEmpty() && b.squares[cc].IsEmpty() && b.squares[bb].IsEmpty() &&
			!b.InCheck(c) && b.squareSafeIfKingLeaves(c, king, d) && b.squareSafeIfKingLeaves(c, king, cc) {
			out = append(out, Move{Color: c, Piece: King, From: king, To: cc, Tag: CastleQueenSide})
		}
	}
	return out
}

func homeRank(c Color) Rank {
	if c == White {
		return Rank1
	}
	return Rank8
}

// squareSafeIfKingLeaves reports whether sq would be unattacked by the
// opponent if c's king were removed from vacated (used both to test a
// castling transit square and, with vacated==from and a king placed at sq, a
// king's own destination square).
func (b *Board) squareSafeIfKingLeaves(c Color, vacated, sq Square) bool {
	tmp := b.squares
	tmp[vacated] = Empty
	return computeAttackers(&tmp, c.Opponent(), sq) == 0
}

func (b *Board) kingMoveSafe(c Color, from, to Square) bool {
	tmp := b.squares
	tmp[from] = Empty
	tmp[to] = Piece{Kind: King, Color: c}
	return computeAttackers(&tmp, c.Opponent(), to) == 0
}

// enPassantSafe reports whether an en passant capture from from to to leaves
// c's king safe. The pin scan and checker set are computed against the
// pre-move occupancy and only ever track one vacated square per ray, so they
// cannot see a capture that empties two squares on the same rank at once: the
// capturer's origin and the captured pawn's square one file over. A rank
// slider behind either square can be uncovered by that double removal even
// though neither square was flagged by pinnedPieces or findCheckers. This
// check simulates the resulting occupancy directly rather than trusting
// either of those.
func (b *Board) enPassantSafe(c Color, from, to Square) bool {
	tmp := b.squares
	tmp[from] = Empty
	tmp[EnPassantCaptureSquare(to, c)] = Empty
	tmp[to] = Piece{Kind: Pawn, Color: c}
	return computeAttackers(&tmp, c.Opponent(), b.kingSquare[c]) == 0
}

// checkInfo names one attacker of the side to move's king and, for sliding
// attackers, the squares a block would have to land on.
type checkInfo struct {
	square       Square
	blockSquares []Square
}

func (b *Board) findCheckers(c Color) []checkInfo {
	king := b.kingSquare[c]
	mask := b.attackers[c.Opponent()][king]
	var out []checkInfo

	for d := Direction(0); d < NumSlidingDirections; d++ {
		if mask&(1<<uint(d)) == 0 {
			continue
		}
		var block []Square
		for _, s := range rayTable[king][d] {
			if b.squares[s].IsEmpty() {
				block = append(block, s)
				continue
			}
			out = append(out, checkInfo{square: s, blockSquares: block})
			break
		}
	}
	for i := 0; i < 8; i++ {
		if mask&(1<<uint(NumSlidingDirections+i)) == 0 {
			continue
		}
		out = append(out, checkInfo{square: KnightTargetAt(king, i)})
	}
	return out
}

func containsSquare(squares []Square, s Square) bool {
	for _, x := range squares {
		if x == s {
			return true
		}
	}
	return false
}

// LegalMoves returns every move available to the side to move.
func (b *Board) LegalMoves() []Move {
	c := b.turn
	checkers := b.findCheckers(c)
	pins := b.pinnedPieces(c)
	king := b.kingSquare[c]

	var out []Move
	for sq := Square(0); sq < NumSquares; sq++ {
		p := b.squares[sq]
		if p.IsEmpty() || p.Color != c {
			continue
		}
		if p.Kind != King && len(checkers) >= 2 {
			continue // double check: only the king may move
		}

		for _, m := range b.pseudoLegalFor(sq) {
			if p.Kind == King {
				if !m.IsCastle() && !b.kingMoveSafe(c, sq, m.To) {
					continue
				}
				out = append(out, m)
				continue
			}

			if len(checkers) == 1 {
				chk := checkers[0]
				resolves := m.To == chk.square || containsSquare(chk.blockSquares, m.To)
				if m.Tag == EnPassant {
					resolves = resolves || EnPassantCaptureSquare(m.To, c) == chk.square
				}
				if !resolves {
					continue
				}
			}

			if dir, pinned := pins[sq]; pinned {
				if !containsSquare(rayTable[king][dir], m.To) {
					continue
				}
			}

			if m.Tag == EnPassant && !b.enPassantSafe(c, m.From, m.To) {
				continue
			}

			out = append(out, m)
		}
	}
	return out
}

// pinnedPieces returns, for each of c's pieces pinned against c's king, the
// sliding direction (from the king) along which the pin line runs; a move by
// that piece is legal only if its destination also lies on that ray.
func (b *Board) pinnedPieces(c Color) map[Square]Direction {
	king := b.kingSquare[c]
	opp := c.Opponent()
	pins := make(map[Square]Direction)

	for d := Direction(0); d < NumSlidingDirections; d++ {
		var friendly Square = NoSquare
		for _, s := range rayTable[king][d] {
			p := b.squares[s]
			if p.IsEmpty() {
				continue
			}
			if friendly == NoSquare {
				if p.Color == c {
					friendly = s
					continue
				}
				break
			}
			if p.Color == opp && (p.Kind == Queen || (p.Kind == Rook && isOrthogonal(d)) || (p.Kind == Bishop && !isOrthogonal(d))) {
				pins[friendly] = d
			}
			break
		}
	}
	return pins
}

// hasLegalMove reports whether the side to move has at least one legal move.
// Callers normally reach this through Board.Apply's Result, not directly.
func (b *Board) hasLegalMove() bool {
	c := b.turn
	checkers := b.findCheckers(c)
	pins := b.pinnedPieces(c)
	king := b.kingSquare[c]

	for sq := Square(0); sq < NumSquares; sq++ {
		p := b.squares[sq]
		if p.IsEmpty() || p.Color != c {
			continue
		}
		if p.Kind != King && len(checkers) >= 2 {
			continue
		}
		for _, m := range b.pseudoLegalFor(sq) {
			if p.Kind == King {
				if !m.IsCastle() && !b.kingMoveSafe(c, sq, m.To) {
					continue
				}
				return true
			}
			if len(checkers) == 1 {
				chk := checkers[0]
				resolves := m.To == chk.square || containsSquare(chk.blockSquares, m.To)
				if m.Tag == EnPassant {
					resolves = resolves || EnPassantCaptureSquare(m.To, c) == chk.square
				}
				if !resolves {
					continue
				}
			}
			if dir, pinned := pins[sq]; pinned {
				if !containsSquare(rayTable[king][dir], m.To) {
					continue
				}
			}
			if m.Tag == EnPassant && !b.enPassantSafe(c, m.From, m.To) {
				continue
			}
			return true
		}
	}
	return false
}

// IsRecapture reports whether m is a capture on the square the last move
// landed on.
func IsRecapture(b *Board, m Move) bool {
	return b.hasLastMove && b.lastMove.To == m.To && m.IsCapture()
}

// SortMoves stably partitions moves into recaptures, then MVV-LVA captures
// (by captured-piece-kind descending, attacker-kind ascending as tie-break),
// then the rest. It is the default ordering used where no Move-Sorting gene
// is wired in (e.g. the plain reference players and perft).
func SortMoves(b *Board, moves []Move) []Move {
	priority := func(m Move) int {
		switch {
		case IsRecapture(b, m):
			return 0
		case m.IsCapture():
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(moves, func(i, j int) bool {
		pi, pj := priority(moves[i]), priority(moves[j])
		if pi != pj {
			return pi < pj
		}
		if pi == 1 { // MVV-LVA among captures
			if moves[i].Capture != moves[j].Capture {
				return moves[i].Capture > moves[j].Capture
			}
			return moves[i].Piece < moves[j].Piece
		}
		return false
	})
	return moves
}
