package board

import "fmt"

// ResultKind is the closed tagged union of game outcomes. Game-ended iff
// Kind != Ongoing.
type ResultKind uint8

const (
	Ongoing ResultKind = iota
	Checkmate
	Stalemate
	FiftyMove
	Threefold
	InsufficientMaterial
	TimeForfeit
	TimeExpiredInsufficientMaterial
	Other
)

func (k ResultKind) String() string {
	switch k {
	case Ongoing:
		return "Ongoing"
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	case FiftyMove:
		return "FiftyMove"
	case Threefold:
		return "Threefold"
	case InsufficientMaterial:
		return "InsufficientMaterial"
	case TimeForfeit:
		return "TimeForfeit"
	case TimeExpiredInsufficientMaterial:
		return "TimeExpiredInsufficientMaterial"
	case Other:
		return "Other"
	default:
		return "?"
	}
}

// Result is a game outcome. Winner is meaningful only for Checkmate and
// TimeForfeit; read it only after checking HasWinner. Text carries the
// explanation for Other.
type Result struct {
	Kind   ResultKind
	Winner Color
	Text   string
}

// IsOngoing reports whether the game has not yet ended.
func (r Result) IsOngoing() bool {
	return r.Kind == Ongoing
}

// HasWinner reports whether Winner identifies the side that won.
func (r Result) HasWinner() bool {
	return r.Kind == Checkmate || r.Kind == TimeForfeit
}

// IsDraw reports whether the result is a draw, including a neither-side-can-mate
// time expiry.
func (r Result) IsDraw() bool {
	switch r.Kind {
	case Stalemate, FiftyMove, Threefold, InsufficientMaterial, TimeExpiredInsufficientMaterial:
		return true
	default:
		return false
	}
}

func (r Result) String() string {
	switch {
	case r.Kind == Ongoing:
		return "Ongoing"
	case r.HasWinner():
		return fmt.Sprintf("%v (%v wins)", r.Kind, r.Winner)
	case r.Kind == Other:
		return fmt.Sprintf("Other: %v", r.Text)
	default:
		return fmt.Sprintf("%v (draw)", r.Kind)
	}
}
