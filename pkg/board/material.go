package board

// HasInsufficientMatingMaterial reports whether neither side has enough
// material left on the board to ever force checkmate. Used by the clock to
// turn a time forfeiture into a draw; it judges both sides together, not the
// side that didn't flag on its own.
func (b *Board) HasInsufficientMatingMaterial() bool {
	return hasInsufficientMaterial(&b.squares)
}

// hasInsufficientMaterial implements §4.3: true when neither side has a pawn,
// rook or queen and the remaining minor pieces cannot force mate -- K vs K;
// K+N vs K; K+B vs K; or K+B* vs K+B* with every bishop (either side) on the
// same square color.
func hasInsufficientMaterial(squares *[64]Piece) bool {
	var knights, lightBishops, darkBishops int

	for sq := Square(0); sq < NumSquares; sq++ {
		p := squares[sq]
		switch p.Kind {
		case Pawn, Rook, Queen:
			return false
		case Knight:
			knights++
		case Bishop:
			if squareColor(sq) == lightSquare {
				lightBishops++
			} else {
				darkBishops++
			}
		}
	}

	minors := knights + lightBishops + darkBishops
	if minors == 0 {
		return true // K vs K
	}
	if minors == 1 {
		return true // K+N vs K, or K+B vs K
	}
	if knights == 0 && (lightBishops == 0 || darkBishops == 0) {
		return true // any number of same-colored bishops, split across both sides
	}
	return false
}

type squareShade int

const (
	darkSquare squareShade = iota
	lightSquare
)

func squareColor(sq Square) squareShade {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}
