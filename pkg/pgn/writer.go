// Package pgn writes and validates Portable Game Notation text, grounded on
// original_source/src/Game/PGN.cpp.
package pgn

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/player"
)

// Writer appends games to one PGN file, serializing writes behind a mutex
// so concurrent games (genepool.Pool's simultaneous matches) never
// interleave their output, per spec.md §5's "append-only PGN file
// protected by a mutex around the record-writing routine".
type Writer struct {
	mu   sync.Mutex
	Path string

	nextRound int
}

// NewWriter returns a Writer appending to path, resuming round numbering
// one past the highest "[Round "n"]" tag already present so a restarted
// process doesn't repeat round numbers, grounded on PGN.cpp's
// print_game_record scanning the existing file for the same reason.
func NewWriter(path string) *Writer {
	w := &Writer{Path: path, nextRound: 1}

	f, err := os.Open(path)
	if err != nil {
		return w
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "[Round ") {
			continue
		}
		text := strings.Trim(strings.TrimPrefix(line, "[Round "), "\"] ")
		if n, err := strconv.Atoi(text); err == nil && n >= w.nextRound {
			w.nextRound = n + 1
		}
	}
	return w
}

// Game bundles the fields print_game_record needs beyond the move record
// itself: tournament metadata and the time control in force.
type Game struct {
	Event, Site   string
	TimeControl   string
	TimeLeftWhite time.Duration
	TimeLeftBlack time.Duration
	StartFEN      string
	// DefaultFEN is the library's standard starting position, to decide
	// whether the SetUp/FEN tags are needed.
	DefaultFEN string
	PlayedAt   time.Time
}

// resultTag maps a board.Result to the Seven Tag Roster's Result string.
func resultTag(r board.Result) string {
	switch {
	case !r.HasWinner() && r.Kind != board.Other:
		return "1/2-1/2"
	case r.Kind == board.Other && !r.HasWinner():
		return "*"
	case r.Winner == board.White:
		return "1-0"
	default:
		return "0-1"
	}
}

// WriteGame appends one completed game's PGN text to w's file: the Seven
// Tag Roster plus Termination/TimeControl/TimeLeftWhite/TimeLeftBlack/
// GameEnding/SetUp/FEN (spec.md §6), then the movetext in SAN.
func (w *Writer) WriteGame(rec player.GameRecord, meta Game) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	round := w.nextRound
	w.nextRound++

	var b strings.Builder
	tag := func(name, value string) { fmt.Fprintf(&b, "[%s \"%s\"]\n", name, value) }

	tag("Event", meta.Event)
	tag("Site", meta.Site)
	tag("Date", meta.PlayedAt.Format("2006.01.02"))
	tag("Round", fmt.Sprint(round))
	tag("White", rec.White)
	tag("Black", rec.Black)
	tag("Result", resultTag(rec.Result))
	tag("Termination", rec.Result.Kind.String())
	if meta.TimeControl != "" {
		tag("TimeControl", meta.TimeControl)
	}
	tag("TimeLeftWhite", meta.TimeLeftWhite.String())
	tag("TimeLeftBlack", meta.TimeLeftBlack.String())
	if rec.Result.Kind != board.Checkmate {
		tag("GameEnding", rec.Result.Kind.String())
	}
	if meta.StartFEN != "" && meta.StartFEN != meta.DefaultFEN {
		tag("SetUp", "1")
		tag("FEN", meta.StartFEN)
	}
	b.WriteString("\n")

	b.WriteString(moveText(rec.Moves, resultTag(rec.Result)))
	b.WriteString("\n\n\n")

	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(b.String())
	return err
}

// moveText renders movetext in SAN with move numbers, word-wrapped at 80
// columns like original_source's String::word_wrap, then the result
// annotation.
func moveText(moves []player.RecordedMove, resultAnnotation string) string {
	var words []string
	for i, m := range moves {
		if i%2 == 0 {
			words = append(words, fmt.Sprintf("%d.", i/2+1))
		}
		words = append(words, m.San)
	}
	words = append(words, resultAnnotation)

	var lines []string
	var line strings.Builder
	for _, word := range words {
		if line.Len() > 0 && line.Len()+1+len(word) > 80 {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
