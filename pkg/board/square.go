package board

import "fmt"

// Square represents a square on the board as a linear index 8*rank + file,
// with file 0..7 = a..h and rank 0..7 = 1..8:
//
//	A8 56  B8 57  C8 58  D8 59  E8 60  F8 61  G8 62  H8 63
//	A7 48  B7 49  C7 50  D7 51  E7 52  F7 53  G7 54  H7 55
//	A6 40  B6 41  C6 42  D6 43  E6 44  F6 45  G6 46  H6 47
//	A5 32  B5 33  C5 34  D5 35  E5 36  F5 37  G5 38  H5 39
//	A4 24  B4 25  C4 26  D4 27  E4 28  F4 29  G4 30  H4 31
//	A3 16  B3 17  C3 18  D3 19  E3 20  F3 21  G3 22  H3 23
//	A2  8  B2  9  C2 10  D2 11  E2 12  F2 13  G2 14  H2 15
//	A1  0  B1  1  C1  2  D1  3  E1  4  F1  5  G1  6  H1  7
//
// NoSquare is the off-board sentinel. 7 bits.
type Square int8

const NoSquare Square = -1

const NumSquares Square = 64

// Named squares, A1=0 .. H8=63, for readability at call sites and in tests.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1

	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2

	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3

	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4

	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5

	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6

	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7

	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

func NewSquare(f File, r Rank) Square {
	return Square(int(r)*8 + int(f))
}

func ParseSquare(f, r rune) (Square, error) {
	file, ok := ParseFile(f)
	if !ok {
		return NoSquare, fmt.Errorf("invalid file: %v", f)
	}
	rank, ok := ParseRank(r)
	if !ok {
		return NoSquare, fmt.Errorf("invalid rank: %v", r)
	}
	return NewSquare(file, rank), nil
}

func ParseSquareStr(str string) (Square, error) {
	runes := []rune(str)
	if len(runes) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %v", str)
	}
	return ParseSquare(runes[0], runes[1])
}

func (s Square) IsValid() bool {
	return s >= 0 && s < NumSquares
}

func (s Square) Rank() Rank {
	return Rank(int(s) / 8)
}

func (s Square) File() File {
	return File(int(s) % 8)
}

func (s Square) String() string {
	if !s.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%v%v", s.File(), s.Rank())
}

// Rank represents a chess board rank from Rank1=0, ..Rank8=7. 3bits.
type Rank uint8

const (
	Rank1 Rank = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

const (
	ZeroRank Rank = 0
	NumRanks Rank = 8
)

func ParseRank(r rune) (Rank, bool) {
	switch r {
	case '1':
		return Rank1, true
	case '2':
		return Rank2, true
	case '3':
		return Rank3, true
	case '4':
		return Rank4, true
	case '5':
		return Rank5, true
	case '6':
		return Rank6, true
	case '7':
		return Rank7, true
	case '8':
		return Rank8, true
	default:
		return 0, false
	}
}

func (r Rank) IsValid() bool {
	return r <= Rank8
}

func (r Rank) V() int {
	return int(r)
}

// Distance returns the absolute rank distance to another rank.
func (r Rank) Distance(o Rank) int {
	d := int(r) - int(o)
	if d < 0 {
		return -d
	}
	return d
}

func (r Rank) String() string {
	switch r {
	case Rank1:
		return "1"
	case Rank2:
		return "2"
	case Rank3:
		return "3"
	case Rank4:
		return "4"
	case Rank5:
		return "5"
	case Rank6:
		return "6"
	case Rank7:
		return "7"
	case Rank8:
		return "8"
	default:
		return "?"
	}
}

// File represents a chess board file from FileA=0, ..FileH=7.  3bits.
type File uint8

const (
	FileA File = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	ZeroFile File = 0
	NumFiles File = 8
)

func ParseFile(r rune) (File, bool) {
	switch r {
	case 'a', 'A':
		return FileA, true
	case 'b', 'B':
		return FileB, true
	case 'c', 'C':
		return FileC, true
	case 'd', 'D':
		return FileD, true
	case 'e', 'E':
		return FileE, true
	case 'f', 'F':
		return FileF, true
	case 'g', 'G':
		return FileG, true
	case 'h', 'H':
		return FileH, true
	default:
		return 0, false
	}
}

func (f File) IsValid() bool {
	return f <= FileH
}

func (f File) V() int {
	return int(f)
}

// Distance returns the absolute file distance to another file.
func (f File) Distance(o File) int {
	d := int(f) - int(o)
	if d < 0 {
		return -d
	}
	return d
}

func (f File) String() string {
	switch f {
	case FileA:
		return "a"
	case FileB:
		return "b"
	case FileC:
		return "c"
	case FileD:
		return "d"
	case FileE:
		return "e"
	case FileF:
		return "f"
	case FileG:
		return "g"
	case FileH:
		return "h"
	default:
		return "?"
	}
}
