package uci

import (
	"errors"
	"strings"
	"testing"

	"github.com/cricklet/brothfish/internal/backend"
	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallbackRunner() *UciRunner {
	return NewUciRunner(resolver.New(Empty[backend.Backend](), game.LegalMoveGenerator{}))
}

func bestMove(t *testing.T, output []string) string {
	t.Helper()
	require.NotEmpty(t, output)
	last := output[len(output)-1]
	require.True(t, strings.HasPrefix(last, "bestmove "), last)
	return strings.TrimPrefix(last, "bestmove ")
}

func legalStrings(t *testing.T, fen string) []string {
	t.Helper()
	b, err := game.PositionFromFen(fen)
	require.Nil(t, err)
	moves, err := game.LegalMoveGenerator{}.LegalMoves(b)
	require.Nil(t, err)
	strs := []string{}
	for _, m := range moves {
		strs = append(strs, m.String())
	}
	return strs
}

func TestUci(t *testing.T) {
	r := fallbackRunner()

	output, err := r.HandleInput("uci")
	assert.Nil(t, err)
	assert.Equal(t, "uciok", output[len(output)-1])

	output, err = r.HandleInput("isready")
	assert.Nil(t, err)
	assert.Equal(t, []string{"readyok"}, output)

	_, err = r.HandleInput("position fen rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	assert.Nil(t, err)

	output, err = r.HandleInput("go")
	assert.Nil(t, err)
	assert.Contains(t, legalStrings(t, game.StartFen), bestMove(t, output))
}

func TestUciPositionWithMoves(t *testing.T) {
	r := fallbackRunner()
	fen := "rn1qk2r/ppp3pp/3b1n2/3ppb2/8/2NPBNP1/PPP2PBP/R2QK2R b KQkq - 15 8"

	for _, line := range []string{
		"isready",
		"uci",
		"position fen " + fen,
		"position fen " + fen + " moves e8g8",
		"position fen " + fen + " moves e8g8 d3d4",
	} {
		_, err := r.HandleInput(line)
		assert.Nil(t, err, line)
	}

	assert.True(t, strings.HasPrefix(r.FenString(), "rn1q1rk1/"), r.FenString())

	output, err := r.HandleInput("go")
	assert.Nil(t, err)
	move := bestMove(t, output)
	assert.NotEqual(t, "g8f8", move)
	assert.Contains(t, legalStrings(t, r.FenString()), move)
}

func TestUciStartpos(t *testing.T) {
	r := fallbackRunner()
	_, err := r.HandleInput("position startpos moves e2e4 e7e5")
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(r.FenString(), "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w"))

	_, err = r.HandleInput("ucinewgame")
	assert.Nil(t, err)
	assert.Equal(t, game.StartFen, r.FenString())
}

func TestUciIllegalMove(t *testing.T) {
	r := fallbackRunner()
	_, err := r.HandleInput("position startpos moves e2e5")
	assert.NotNil(t, err)

	_, err = r.HandleInput("position nonsense")
	assert.NotNil(t, err)
}

func TestUciCheckmate(t *testing.T) {
	r := fallbackRunner()
	_, err := r.HandleInput("position startpos moves f2f3 e7e5 g2g4 d8h4")
	require.Nil(t, err)

	output, err := r.HandleInput("go")
	assert.Nil(t, err)
	assert.Equal(t, "0000", bestMove(t, output))
}

func TestUciNativeDepth(t *testing.T) {
	depths := []int{}
	native := Some[backend.Backend](backend.Funcs{BestMoveFunc: func(fen string, depth int) (string, error) {
		depths = append(depths, depth)
		return "e2e4", nil
	}})
	r := NewUciRunner(resolver.New(native, game.LegalMoveGenerator{}))

	output, err := r.HandleInput("go")
	assert.Nil(t, err)
	assert.Equal(t, "e2e4", bestMove(t, output))
	assert.Contains(t, output[0], "native")

	_, err = r.HandleInput("go depth 6")
	assert.Nil(t, err)

	_, err = r.HandleInput("setoption name Depth value 5")
	assert.Nil(t, err)
	_, err = r.HandleInput("go")
	assert.Nil(t, err)

	assert.Equal(t, []int{resolver.DefaultDepth, 6, 5}, depths)

	_, err = r.HandleInput("go depth x")
	assert.NotNil(t, err)
	_, err = r.HandleInput("setoption name Depth value deep")
	assert.NotNil(t, err)
}

func TestUciFailingNative(t *testing.T) {
	native := Some[backend.Backend](backend.Funcs{BestMoveFunc: func(fen string, depth int) (string, error) {
		return "", errors.New("engine crashed")
	}})
	r := NewUciRunner(resolver.New(native, game.LegalMoveGenerator{}))

	output, err := r.HandleInput("go")
	assert.Nil(t, err)
	assert.Contains(t, output[0], "fallback")
	assert.Contains(t, legalStrings(t, game.StartFen), bestMove(t, output))
}

func TestParseSetOption(t *testing.T) {
	name, value := parseSetOption("setoption name Depth value 4")
	assert.Equal(t, "Depth", name)
	assert.Equal(t, "4", value)

	name, value = parseSetOption("setoption name Clear Hash")
	assert.Equal(t, "Clear Hash", name)
	assert.Equal(t, "", value)
}
