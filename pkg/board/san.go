package board

import (
	"fmt"
	"strings"
)

// SAN renders m, played against b (before the move is applied), in short
// algebraic notation, including the check/checkmate suffix determined from
// the resulting position.
func SAN(b *Board, m Move) string {
	if m.IsCastle() {
		s := "O-O"
		if m.Tag == CastleQueenSide {
			s = "O-O-O"
		}
		return s + checkSuffix(b, m)
	}

	var sb strings.Builder

	if m.Piece == Pawn {
		if m.IsCapture() {
			sb.WriteString(m.From.File().String())
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteString(strings.ToUpper(m.Promotion.String()))
		}
		return sb.String() + checkSuffix(b, m)
	}

	sb.WriteString(strings.ToUpper(m.Piece.String()))
	sb.WriteString(disambiguation(b, m))
	if m.IsCapture() {
		sb.WriteByte('x')
	}
	sb.WriteString(m.To.String())
	return sb.String() + checkSuffix(b, m)
}

// disambiguation computes the minimal origin-square qualifier needed to
// distinguish m from every other legal move of the same piece kind to the
// same destination: the origin file if that alone disambiguates, else the
// origin rank if that alone disambiguates, else the full origin square.
func disambiguation(b *Board, m Move) string {
	var sameFile, sameRank, other bool

	for _, alt := range b.LegalMoves() {
		if alt.Piece != m.Piece || alt.To != m.To || alt.From == m.From {
			continue
		}
		other = true
		if alt.From.File() == m.From.File() {
			sameFile = true
		}
		if alt.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	if !other {
		return ""
	}
	if !sameFile {
		return m.From.File().String()
	}
	if !sameRank {
		return m.From.Rank().String()
	}
	return m.From.String()
}

func checkSuffix(b *Board, m Move) string {
	after := b.Apply(m)
	if after.InCheck(after.turn) {
		if after.Result().Kind == Checkmate {
			return "#"
		}
		return "+"
	}
	return ""
}

// ParseSAN resolves a SAN token against the legal moves available in b. It
// strips trailing "+", "#", "!", "?" and "e.p." itself without checking them;
// it does not interpret a move-number prefix, which callers strip.
func ParseSAN(b *Board, token string) (Move, error) {
	clean := strings.TrimRight(token, "+#!?")
	clean = strings.TrimSuffix(clean, "e.p.")
	if clean == "" {
		return Move{}, fmt.Errorf("invalid SAN %q: empty", token)
	}

	legal := b.LegalMoves()

	if clean == "O-O" || clean == "0-0" {
		return findCastle(legal, CastleKingSide, token)
	}
	if clean == "O-O-O" || clean == "0-0-0" {
		return findCastle(legal, CastleQueenSide, token)
	}

	promo := NoPieceKind
	if i := strings.IndexByte(clean, '='); i >= 0 {
		p, ok := ParsePieceKind(rune(clean[i+1]))
		if !ok {
			return Move{}, fmt.Errorf("invalid SAN %q: bad promotion piece", token)
		}
		promo = p
		clean = clean[:i]
	}

	piece := Pawn
	rest := clean
	if r := rune(clean[0]); r >= 'A' && r <= 'Z' {
		k, ok := ParsePieceKind(r)
		if !ok {
			return Move{}, fmt.Errorf("invalid SAN %q: unknown piece letter", token)
		}
		piece = k
		rest = clean[1:]
	}
	rest = strings.ReplaceAll(rest, "x", "")

	if len(rest) < 2 {
		return Move{}, fmt.Errorf("invalid SAN %q", token)
	}
	to, err := ParseSquareStr(rest[len(rest)-2:])
	if err != nil {
		return Move{}, fmt.Errorf("invalid SAN %q: %w", token, err)
	}
	qualifier := rest[:len(rest)-2]

	var candidates []Move
	for _, m := range legal {
		if m.Piece != piece || m.To != to || m.Promotion != promo {
			continue
		}
		if !matchesQualifier(m.From, qualifier) {
			continue
		}
		candidates = append(candidates, m)
	}
	if len(candidates) != 1 {
		return Move{}, fmt.Errorf("invalid SAN %q: %d matching legal moves", token, len(candidates))
	}
	return candidates[0], nil
}

func matchesQualifier(from Square, qualifier string) bool {
	switch len(qualifier) {
	case 0:
		return true
	case 1:
		if f, ok := ParseFile(rune(qualifier[0])); ok {
			return from.File() == f
		}
		if r, ok := ParseRank(rune(qualifier[0])); ok {
			return from.Rank() == r
		}
		return false
	case 2:
		sq, err := ParseSquareStr(qualifier)
		return err == nil && from == sq
	default:
		return false
	}
}

func findCastle(legal []Move, tag MoveTag, token string) (Move, error) {
	for _, m := range legal {
		if m.Tag == tag {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("invalid SAN %q: castle not legal", token)
}
