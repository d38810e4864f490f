package board

import "fmt"

// MoveTag is the closed tagged union of move kinds. Board.Apply switches on the
// tag for the move's side effect and move generation decides legality, so a
// MoveTag value carries no behavior of its own. The no-progress (fifty-move)
// counter is reset by pawn moves and captures; castling does not reset it.
type MoveTag uint8

const (
	Normal MoveTag = iota
	PawnSingle
	PawnDouble
	PawnCapture
	EnPassant
	PawnPromotion
	PawnPromotionByCapture
	CastleKingSide
	CastleQueenSide
)

func (t MoveTag) String() string {
	switch t {
	case Normal:
		return "Normal"
	case PawnSingle:
		return "PawnSingle"
	case PawnDouble:
		return "PawnDouble"
	case PawnCapture:
		return "PawnCapture"
	case EnPassant:
		return "EnPassant"
	case PawnPromotion:
		return "PawnPromotion"
	case PawnPromotionByCapture:
		return "PawnPromotionByCapture"
	case CastleKingSide:
		return "CastleKingSide"
	case CastleQueenSide:
		return "CastleQueenSide"
	default:
		return "?"
	}
}

// CanCapture reports whether the tag permits an enemy piece on the destination
// square. Normal moves may or may not capture depending on what occupies the
// destination; PawnSingle, PawnDouble, PawnPromotion and castling require an
// empty destination (a capturing promotion is PawnPromotionByCapture).
func (t MoveTag) CanCapture() bool {
	switch t {
	case PawnCapture, EnPassant, PawnPromotionByCapture:
		return true
	case Normal:
		return true
	default:
		return false
	}
}

// Move is a single origin/destination/tag record. Move values are built on each
// move-generation call from the per-square geometry tables in movetables.go and
// passed by value; there is no precomputed per-(color, piece kind, origin square)
// move table. Move values are never mutated after construction.
type Move struct {
	Color     Color
	Piece     PieceKind
	From, To  Square
	Tag       MoveTag
	Promotion PieceKind // set iff Tag is a promotion tag

	// Capture is the piece kind expected to be captured, if any; it lets Board
	// apply the side effect without re-probing the board for the captured piece's
	// identity (relevant for the Zobrist XOR and SAN notation).
	Capture PieceKind
}

// IsCapture reports whether this specific move instance captures a piece. Unlike
// MoveTag.CanCapture, this reflects the move as generated against a position, not
// the tag's abstract possibility.
func (m Move) IsCapture() bool {
	switch m.Tag {
	case PawnCapture, EnPassant, PawnPromotionByCapture:
		return true
	case Normal:
		return m.Capture != NoPieceKind
	default:
		return false
	}
}

func (m Move) IsPromotion() bool {
	return m.Tag == PawnPromotion || m.Tag == PawnPromotionByCapture
}

func (m Move) IsCastle() bool {
	return m.Tag == CastleKingSide || m.Tag == CastleQueenSide
}

// Equals compares the squares and promotion piece, ignoring cached metadata such
// as Capture -- sufficient to match a parsed or pondered candidate against a
// legal move list.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

// String renders the move in pure coordinate notation, e.g. "e2e4" or "a7a8q".
func (m Move) String() string {
	if m.IsPromotion() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// ParseMove parses a move in pure algebraic coordinate notation, such as "a2a4" or
// "a7a8q". The parsed move carries only From/To/Promotion; Tag/Capture/Piece are
// resolved by matching it against Board's legal move list.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)
	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: %q", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from in move %q: %w", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to in move %q: %w", str, err)
	}

	m := Move{From: from, To: to}
	if len(runes) == 5 {
		promo, ok := ParsePieceKind(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion in move %q", str)
		}
		m.Promotion = promo
	}
	return m, nil
}
