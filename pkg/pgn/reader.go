package pgn

import (
	"fmt"
	"io"
	"strings"

	"github.com/corvane/evochess/pkg/board"
)

// ValidationError reports a PGN movetext or tag disagreement caught while
// replaying a game, with the line it was found on: any disagreement
// between the recorded text and the replayed position is a hard failure.
type ValidationError struct {
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pgn:%d: %s", e.Line, e.Message)
}

// Validate replays every game in r move by move against Board's own
// legality, check, checkmate, capture and promotion bookkeeping, grounded
// on original_source/src/Game/PGN.cpp's reading side: the SAN suffixes (x,
// +, #, =<piece>, O-O/O-O-O) must agree with what the move actually does,
// comments and recursive variations are balance-checked and skipped (a
// variation is additionally replayed for legality from the position before
// the move it varies), and the final Result/Termination tags must agree
// with the replayed position.
func Validate(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	t := &tokenizer{text: string(data), line: 1}

	for {
		if err := t.skipTrivia(); err != nil {
			return err
		}
		if _, ok := t.peek(); !ok {
			return nil
		}

		tagLine := t.line
		tags, err := t.parseTags()
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return &ValidationError{Line: tagLine, Message: "expected a tag pair section"}
		}

		start := board.NewBoard()
		if fen, ok := tags["FEN"]; ok {
			start, err = board.FromFEN(fen)
			if err != nil {
				return &ValidationError{Line: tagLine, Message: fmt.Sprintf("bad FEN tag: %v", err)}
			}
		}

		final, resultTok, line, err := replayMoves(t, start)
		if err != nil {
			return err
		}
		if err := checkResult(tags, final, resultTok, line); err != nil {
			return err
		}
	}
}

// replayMoves consumes one game's movetext (move numbers, SAN tokens,
// comments, variations) up to its result token or the next game's tag
// section, applying each SAN move to cur in turn.
func replayMoves(t *tokenizer, b board.Board) (cur board.Board, resultTok string, line int, err error) {
	cur = b
	prevBeforeLastMove := b

	for {
		tok, tokLine, ok, terr := t.nextWord()
		if terr != nil {
			return cur, "", tokLine, terr
		}
		if !ok {
			return cur, "", tokLine, nil
		}

		if tok == "(" {
			if err := skipAndValidateRAV(t, prevBeforeLastMove); err != nil {
				return cur, "", tokLine, err
			}
			continue
		}
		if tok == ")" {
			return cur, "", tokLine, &ValidationError{Line: tokLine, Message: "unexpected ) outside a variation"}
		}
		if isResultToken(tok) {
			return cur, tok, tokLine, nil
		}

		tok = stripMoveNumberPrefix(tok)
		if tok == "" || isMoveNumber(tok) {
			continue
		}

		move, verr := checkAndParseSAN(&cur, tok, tokLine)
		if verr != nil {
			return cur, "", tokLine, verr
		}
		prevBeforeLastMove = cur
		cur = cur.Apply(move)
	}
}

// skipAndValidateRAV consumes one parenthesized variation (already past its
// opening paren), checking only that every move in it -- including nested
// variations -- is legal from start.
func skipAndValidateRAV(t *tokenizer, start board.Board) error {
	cur := start
	prev := start

	for {
		tok, line, ok, err := t.nextWord()
		if err != nil {
			return err
		}
		if !ok {
			return &ValidationError{Line: line, Message: "unterminated variation"}
		}
		if tok == "(" {
			if err := skipAndValidateRAV(t, prev); err != nil {
				return err
			}
			continue
		}
		if tok == ")" {
			return nil
		}

		tok = stripMoveNumberPrefix(tok)
		if tok == "" || isMoveNumber(tok) || isResultToken(tok) {
			continue
		}

		move, perr := board.ParseSAN(&cur, tok)
		if perr != nil {
			return &ValidationError{Line: line, Message: fmt.Sprintf("illegal move %q in variation: %v", tok, perr)}
		}
		prev = cur
		cur = cur.Apply(move)
	}
}

// checkAndParseSAN resolves tok against b's legal moves and verifies its
// capture/check/checkmate/promotion/castle markers agree with the move it
// resolves to.
func checkAndParseSAN(b *board.Board, tok string, line int) (board.Move, error) {
	move, err := board.ParseSAN(b, tok)
	if err != nil {
		return board.Move{}, &ValidationError{Line: line, Message: fmt.Sprintf("illegal move %q: %v", tok, err)}
	}

	if strings.ContainsRune(tok, 'x') != move.IsCapture() {
		return board.Move{}, &ValidationError{Line: line, Message: fmt.Sprintf("move %q: capture marker does not match the board", tok)}
	}

	clean := strings.TrimRight(tok, "+#!?")
	if move.IsCastle() {
		wantQueenside := move.Tag == board.CastleQueenSide
		isQueenside := clean == "O-O-O" || clean == "0-0-0"
		if wantQueenside != isQueenside {
			return board.Move{}, &ValidationError{Line: line, Message: fmt.Sprintf("move %q: castle side does not match the board", tok)}
		}
	}
	if move.IsPromotion() {
		want := "=" + strings.ToUpper(move.Promotion.String())
		if !strings.Contains(tok, want) {
			return board.Move{}, &ValidationError{Line: line, Message: fmt.Sprintf("move %q: promotion piece does not match the board (expected %s)", tok, want)}
		}
	}

	next := b.Apply(move)
	inCheck := next.InCheck(next.Turn())
	isMate := next.Result().Kind == board.Checkmate
	marks := strings.TrimRight(tok, "!?")
	hasPlus := strings.HasSuffix(marks, "+")
	hasHash := strings.HasSuffix(marks, "#")

	switch {
	case isMate && !hasHash:
		return board.Move{}, &ValidationError{Line: line, Message: fmt.Sprintf("move %q: missing checkmate marker #", tok)}
	case !isMate && hasHash:
		return board.Move{}, &ValidationError{Line: line, Message: fmt.Sprintf("move %q: # present but the move is not checkmate", tok)}
	case inCheck && !isMate && !hasPlus:
		return board.Move{}, &ValidationError{Line: line, Message: fmt.Sprintf("move %q: missing check marker +", tok)}
	case !inCheck && hasPlus:
		return board.Move{}, &ValidationError{Line: line, Message: fmt.Sprintf("move %q: + present but the move does not check", tok)}
	}

	return move, nil
}

// checkResult compares the replayed final position against the game's
// Result and Termination tags and its recorded result token. Positions left
// Ongoing (resignation, time forfeit, an unfinished game) can't be checked
// against the board and are accepted as-is.
func checkResult(tags map[string]string, final board.Board, resultTok string, line int) error {
	result := final.Result()

	var expected string
	switch result.Kind {
	case board.Checkmate:
		expected = "1-0"
		if result.Winner == board.Black {
			expected = "0-1"
		}
	case board.Stalemate, board.FiftyMove, board.Threefold, board.InsufficientMaterial, board.TimeExpiredInsufficientMaterial:
		expected = "1/2-1/2"
	default:
		return nil
	}

	if want, ok := tags["Result"]; ok && want != expected {
		return &ValidationError{Line: line, Message: fmt.Sprintf("Result tag %q does not match the replayed game (%v)", want, result.Kind)}
	}
	if resultTok != "" && resultTok != expected {
		return &ValidationError{Line: line, Message: fmt.Sprintf("recorded result %q does not match the replayed game (%v)", resultTok, result.Kind)}
	}
	if term, ok := tags["Termination"]; ok && term != result.Kind.String() {
		return &ValidationError{Line: line, Message: fmt.Sprintf("Termination tag %q does not match the draw rule (%v)", term, result.Kind)}
	}
	return nil
}

func isMoveNumber(tok string) bool {
	trimmed := strings.TrimRight(tok, ".")
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isResultToken(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	default:
		return false
	}
}

// stripMoveNumberPrefix removes a leading "<digits>.." move-number marker
// glued directly to the following token (e.g. "1.e4"), tolerating PGN
// writers that omit the space after the period.
func stripMoveNumberPrefix(tok string) string {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == 0 {
		return tok
	}
	j := i
	for j < len(tok) && tok[j] == '.' {
		j++
	}
	if j == i {
		return tok
	}
	return tok[j:]
}

// tokenizer scans PGN text into tag pairs and movetext tokens, tracking the
// current line for diagnostics.
type tokenizer struct {
	text string
	pos  int
	line int
}

func (t *tokenizer) peek() (byte, bool) {
	if t.pos >= len(t.text) {
		return 0, false
	}
	return t.text[t.pos], true
}

func (t *tokenizer) advance() byte {
	c := t.text[t.pos]
	t.pos++
	if c == '\n' {
		t.line++
	}
	return c
}

// skipTrivia consumes whitespace and comments ({ ... } and ; to end of
// line) between tokens.
func (t *tokenizer) skipTrivia() error {
	for {
		c, ok := t.peek()
		if !ok {
			return nil
		}
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			t.advance()
		case c == ';':
			for {
				c, ok := t.peek()
				if !ok || c == '\n' {
					break
				}
				t.advance()
			}
		case c == '{':
			startLine := t.line
			t.advance()
			closed := false
			for {
				c, ok := t.peek()
				if !ok {
					break
				}
				t.advance()
				if c == '}' {
					closed = true
					break
				}
			}
			if !closed {
				return &ValidationError{Line: startLine, Message: "unterminated comment"}
			}
		default:
			return nil
		}
	}
}

// parseTags reads consecutive "[Key "Value"]" pairs up to the first
// non-tag, non-trivia token.
func (t *tokenizer) parseTags() (map[string]string, error) {
	tags := map[string]string{}
	for {
		if err := t.skipTrivia(); err != nil {
			return nil, err
		}
		c, ok := t.peek()
		if !ok || c != '[' {
			return tags, nil
		}
		line := t.line
		t.advance() // '['

		var key strings.Builder
		for {
			c, ok := t.peek()
			if !ok {
				return nil, &ValidationError{Line: line, Message: "unterminated tag pair"}
			}
			if c == ' ' {
				t.advance()
				break
			}
			key.WriteByte(t.advance())
		}

		for {
			c, ok := t.peek()
			if !ok {
				return nil, &ValidationError{Line: line, Message: "unterminated tag pair"}
			}
			if c == '"' {
				t.advance()
				break
			}
			t.advance()
		}

		var val strings.Builder
		for {
			c, ok := t.peek()
			if !ok {
				return nil, &ValidationError{Line: line, Message: "unterminated tag value"}
			}
			if c == '"' {
				t.advance()
				break
			}
			val.WriteByte(t.advance())
		}

		for {
			c, ok := t.peek()
			if !ok {
				return nil, &ValidationError{Line: line, Message: "unterminated tag pair"}
			}
			t.advance()
			if c == ']' {
				break
			}
		}

		tags[key.String()] = val.String()
	}
}

// nextWord returns the next movetext token: "(" or ")" on their own, or a
// run of non-trivia, non-paren characters. ok is false at end of input or
// when the next game's tag section begins.
func (t *tokenizer) nextWord() (tok string, line int, ok bool, err error) {
	if err := t.skipTrivia(); err != nil {
		return "", t.line, false, err
	}
	c, present := t.peek()
	if !present || c == '[' {
		return "", t.line, false, nil
	}
	if c == '(' || c == ')' {
		t.advance()
		return string(c), t.line, true, nil
	}

	line = t.line
	var sb strings.Builder
	for {
		c, present := t.peek()
		if !present {
			break
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '{' || c == ';' || c == '(' || c == ')' {
			break
		}
		sb.WriteByte(t.advance())
	}
	return sb.String(), line, true, nil
}
