package game

import (
	"strings"
	"testing"

	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fenOnly string

func (f fenOnly) FEN() string {
	return string(f)
}

func moveStrings(moves []Move) []string {
	return lo.Map(moves, func(m Move, _ int) string {
		return m.String()
	})
}

func TestStartingPosition(t *testing.T) {
	b := StartingPosition()
	assert.Equal(t, StartFen, b.FEN())
	assert.Equal(t, White, b.Player())
	assert.True(t, b.Outcome().IsEmpty())

	moves, err := LegalMoveGenerator{}.LegalMoves(b)
	require.Nil(t, err)
	assert.Equal(t, 20, len(moves))
	assert.Contains(t, moveStrings(moves), "e2e4")
	assert.Contains(t, moveStrings(moves), "g1f3")
}

func TestPositionFromFenInvalid(t *testing.T) {
	_, err := PositionFromFen("not a fen")
	assert.NotNil(t, err)

	_, err = LegalMoveGenerator{}.LegalMoves(fenOnly("not a fen"))
	assert.NotNil(t, err)
}

func TestLegalMovesFromFen(t *testing.T) {
	moves, err := LegalMoveGenerator{}.LegalMoves(fenOnly(StartFen))
	require.Nil(t, err)
	assert.Equal(t, 20, len(moves))
}

func TestLegalMovesPromotion(t *testing.T) {
	b, err := PositionFromFen("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	require.Nil(t, err)

	moves, err := LegalMoveGenerator{}.LegalMoves(b)
	require.Nil(t, err)

	strs := moveStrings(moves)
	for _, s := range []string{"a7a8q", "a7a8r", "a7a8b", "a7a8n"} {
		assert.Contains(t, strs, s)
	}
	assert.NotContains(t, strs, "a7a8")

	queen, err := MoveFromString("a7a8q")
	require.Nil(t, err)
	assert.Contains(t, moves, queen)
}

func TestLegalMovesCheckmate(t *testing.T) {
	// fool's mate
	b, err := PositionFromFen("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.Nil(t, err)

	moves, err := LegalMoveGenerator{}.LegalMoves(b)
	require.Nil(t, err)
	assert.Empty(t, moves)
	assert.Equal(t, Some("checkmate"), b.Outcome())
}

func TestLegalMovesStalemate(t *testing.T) {
	b, err := PositionFromFen("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.Nil(t, err)

	moves, err := LegalMoveGenerator{}.LegalMoves(b)
	require.Nil(t, err)
	assert.Empty(t, moves)
	assert.Equal(t, Some("stalemate"), b.Outcome())
}

func TestApply(t *testing.T) {
	b := StartingPosition()
	move, err := MoveFromString("e2e4")
	require.Nil(t, err)

	next, err := b.Apply(move)
	require.Nil(t, err)
	assert.Equal(t, Black, next.Player())
	assert.True(t, strings.HasPrefix(next.FEN(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq"), next.FEN())

	// the original board is untouched
	assert.Equal(t, StartFen, b.FEN())

	illegal, err := MoveFromString("e2e5")
	require.Nil(t, err)
	_, err = b.Apply(illegal)
	assert.NotNil(t, err)
}

func TestApplyPromotion(t *testing.T) {
	b, err := PositionFromFen("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	require.Nil(t, err)

	knight, err := MoveFromString("a7a8n")
	require.Nil(t, err)
	next, err := b.Apply(knight)
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(next.FEN(), "N7/7k/"), next.FEN())

	_, err = b.Apply(NewMove(FileRank{File: 0, Rank: 6}, FileRank{File: 0, Rank: 7}))
	assert.NotNil(t, err)

	_, err = b.Apply(NewPromotion(FileRank{File: 0, Rank: 6}, FileRank{File: 0, Rank: 7}, King))
	assert.NotNil(t, err)
}

func TestApplyCastling(t *testing.T) {
	b, err := PositionFromFen("4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	require.Nil(t, err)

	castle, err := MoveFromString("e1g1")
	require.Nil(t, err)
	next, err := b.Apply(castle)
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(next.FEN(), "4k3/8/8/8/8/8/8/5RK1 b"), next.FEN())
}
