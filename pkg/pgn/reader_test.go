package pgn_test

import (
	"strings"
	"testing"

	"github.com/corvane/evochess/pkg/pgn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foolsMate = `[Event "Test"]
[Site "Test"]
[Date "2024.01.01"]
[Round "1"]
[White "A"]
[Black "B"]
[Result "0-1"]

1.f3 e5 2.g4 Qh4# 0-1
`

const scholarsMate = `[Event "Test"]
[Site "Test"]
[Date "2024.01.01"]
[Round "1"]
[White "A"]
[Black "B"]
[Result "1-0"]

1.e4 e5 2.Bc4 Nc6 3.Qh5 Nf6 4.Qxf7# 1-0
`

func TestValidateFoolsMate(t *testing.T) {
	assert.NoError(t, pgn.Validate(strings.NewReader(foolsMate)))
}

func TestValidateScholarsMate(t *testing.T) {
	assert.NoError(t, pgn.Validate(strings.NewReader(scholarsMate)))
}

func TestValidateAllowsCommentsAndVariations(t *testing.T) {
	text := `[Event "Test"]
[Site "Test"]
[Date "2024.01.01"]
[Round "1"]
[White "A"]
[Black "B"]
[Result "1-0"]

1.e4 {king's pawn} e5 (1...c5 2.Nf3 Nc6) 2.Bc4 Nc6 3.Qh5 Nf6 4.Qxf7# 1-0
`
	assert.NoError(t, pgn.Validate(strings.NewReader(text)))
}

func TestValidateCatchesMissingCaptureMarker(t *testing.T) {
	text := strings.Replace(scholarsMate, "Qxf7#", "Qf7#", 1)
	err := pgn.Validate(strings.NewReader(text))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture marker")
}

func TestValidateCatchesMissingCheckmateMarker(t *testing.T) {
	text := strings.Replace(scholarsMate, "Qxf7#", "Qxf7", 1)
	err := pgn.Validate(strings.NewReader(text))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkmate marker")
}

func TestValidateCatchesWrongResultTag(t *testing.T) {
	text := strings.Replace(scholarsMate, `[Result "1-0"]`, `[Result "1/2-1/2"]`, 1)
	err := pgn.Validate(strings.NewReader(text))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Result tag")
}

func TestValidateCatchesIllegalMove(t *testing.T) {
	text := strings.Replace(scholarsMate, "Nf6", "Zz9", 1)
	err := pgn.Validate(strings.NewReader(text))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal move")
}

func TestValidateCatchesUnterminatedComment(t *testing.T) {
	text := strings.Replace(scholarsMate, "1.e4", "1.e4 {unterminated", 1)
	err := pgn.Validate(strings.NewReader(text))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comment")
}

func TestValidateMultipleGamesInOneFile(t *testing.T) {
	assert.NoError(t, pgn.Validate(strings.NewReader(foolsMate+"\n"+scholarsMate)))
}
