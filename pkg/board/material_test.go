package board_test

import (
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientMaterial(t *testing.T) {
	cases := []struct {
		name        string
		fen         string
		insufficient bool
	}{
		{"bare kings", "8/8/8/4k3/8/8/4K3/8 w - - 0 1", true},
		{"king and knight vs king", "8/8/8/4k3/8/8/3NK3/8 w - - 0 1", true},
		{"king and bishop vs king", "8/8/8/4k3/8/8/3BK3/8 w - - 0 1", true},
		{"same-colored bishops both sides", "8/4b3/8/4k3/8/8/3BK3/8 w - - 0 1", true},
		{"opposite-colored bishops", "8/3b4/8/4k3/8/8/3BK3/8 w - - 0 1", false},
		{"two knights one side", "8/8/8/4k3/8/8/3NK3/3N4 w - - 0 1", false},
		{"lone pawn remains", "8/8/8/4k3/8/4P3/4K3/8 w - - 0 1", false},
		{"rook remains", "8/8/8/4k3/8/8/3RK3/8 w - - 0 1", false},
		{"queen remains", "8/8/8/4k3/8/8/3QK3/8 w - - 0 1", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := board.FromFEN(c.fen)
			require.NoError(t, err)
			if c.insufficient {
				assert.Equal(t, board.InsufficientMaterial, b.Result().Kind)
			} else {
				assert.NotEqual(t, board.InsufficientMaterial, b.Result().Kind)
			}
		})
	}
}
