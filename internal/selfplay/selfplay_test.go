package selfplay

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/cricklet/brothfish/internal/backend"
	"github.com/cricklet/brothfish/internal/game"
	"github.com/cricklet/brothfish/internal/gamelog"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomContestant(name string, seed int64) Contestant {
	return Contestant{
		Name: name,
		Resolver: resolver.New(Empty[backend.Backend](), game.LegalMoveGenerator{},
			resolver.WithRand(rand.New(rand.NewSource(seed)))),
	}
}

func TestPlayGameFoolsMate(t *testing.T) {
	moves := []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	ply := 0
	native := Some[backend.Backend](backend.Funcs{BestMoveFunc: func(fen string, depth int) (string, error) {
		if ply >= len(moves) {
			return "(none)", nil
		}
		move := moves[ply]
		ply++
		return move, nil
	}})

	scripted := resolver.New(native, game.LegalMoveGenerator{})
	white := Contestant{"white", scripted}
	black := Contestant{"black", scripted}

	record, err := PlayGame(context.Background(), SilentLogger, white, black, game.StartFen, 100)
	require.Nil(t, err)
	assert.Equal(t, BlackWins, record.Result)
	assert.Equal(t, 4, len(record.Moves))
	assert.Equal(t, "checkmate", record.Termination)
	assert.Equal(t, "d8h4", record.Moves[3].Move)
	assert.Equal(t, "native", record.Moves[3].Source)
	assert.Equal(t, game.StartFen, record.Moves[0].Fen)
}

// scriptedContestant plays the given moves in order, both sides sharing
// one script.
func scriptedContestant(moves ...string) Contestant {
	ply := 0
	native := Some[backend.Backend](backend.Funcs{BestMoveFunc: func(fen string, depth int) (string, error) {
		move := moves[ply%len(moves)]
		ply++
		return move, nil
	}})
	return Contestant{"scripted", resolver.New(native, game.LegalMoveGenerator{})}
}

func TestPlayGameInsufficientMaterial(t *testing.T) {
	scripted := scriptedContestant("e1d2")
	record, err := PlayGame(context.Background(), SilentLogger, scripted, scripted, "4k3/8/8/8/8/8/3n4/4KB2 w - - 0 1", 50)
	require.Nil(t, err)
	assert.Equal(t, 1, len(record.Moves))
	assert.Equal(t, Draw, record.Result)
	assert.Equal(t, "insufficient material", record.Termination)
}

func TestPlayGameRepetition(t *testing.T) {
	scripted := scriptedContestant("g1f3", "g8f6", "f3g1", "f6g8")
	record, err := PlayGame(context.Background(), SilentLogger, scripted, scripted, game.StartFen, 100)
	require.Nil(t, err)
	assert.Equal(t, Draw, record.Result)
	assert.Equal(t, "threefold repetition", record.Termination)
	assert.LessOrEqual(t, len(record.Moves), 12)
	assert.Equal(t, 0, len(record.Moves)%4)
}

func TestPlayGameMaxPlies(t *testing.T) {
	record, err := PlayGame(context.Background(), SilentLogger,
		randomContestant("a", 1), randomContestant("b", 2), game.StartFen, 6)
	require.Nil(t, err)
	assert.Equal(t, 6, len(record.Moves))
	assert.Equal(t, Unfinished, record.Result)
	assert.Empty(t, record.Termination)
	for _, m := range record.Moves {
		assert.Equal(t, "fallback", m.Source)
		assert.Equal(t, 0, m.Nodes)
	}
}

func TestPlayGameStalemate(t *testing.T) {
	record, err := PlayGame(context.Background(), SilentLogger,
		randomContestant("a", 1), randomContestant("b", 2), "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 10)
	require.Nil(t, err)
	assert.Empty(t, record.Moves)
	assert.Equal(t, Draw, record.Result)
	assert.Equal(t, "stalemate", record.Termination)
}

func TestPlayGameIllegalNativeMove(t *testing.T) {
	native := Some[backend.Backend](backend.Funcs{BestMoveFunc: func(fen string, depth int) (string, error) {
		return "e2e5", nil
	}})
	bad := Contestant{"bad", resolver.New(native, game.LegalMoveGenerator{})}

	record, err := PlayGame(context.Background(), SilentLogger, bad, randomContestant("b", 2), game.StartFen, 10)
	require.Nil(t, err)
	assert.Equal(t, Illegal, record.Result)
	assert.Equal(t, game.StartFen, record.FinalFen)
}

func TestPlayGameBadFen(t *testing.T) {
	_, err := PlayGame(context.Background(), SilentLogger, randomContestant("a", 1), randomContestant("b", 2), "nope", 10)
	assert.NotNil(t, err)
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Play(ctx, Options{
		Games:    2,
		Threads:  2,
		MaxPlies: 10,

		Contestants: func(i int) (Contestant, Contestant) {
			return randomContestant("a", 1), randomContestant("b", 2)
		},
		Logger: SilentLogger,
	})
	assert.NotNil(t, err)
}

func TestPlay(t *testing.T) {
	var mutex sync.Mutex
	seen := []gamelog.GameRecord{}

	records, err := Play(context.Background(), Options{
		Games:    6,
		Threads:  3,
		MaxPlies: 40,

		Contestants: func(i int) (Contestant, Contestant) {
			return randomContestant("white", int64(i)), randomContestant("black", int64(100+i))
		},
		OnGame: func(record gamelog.GameRecord) {
			mutex.Lock()
			defer mutex.Unlock()
			seen = append(seen, record)
		},
		Logger: SilentLogger,
	})
	require.Nil(t, err)
	assert.Equal(t, 6, len(records))
	assert.Equal(t, 6, len(seen))

	for _, r := range records {
		assert.Equal(t, game.StartFen, r.StartFen)
		assert.LessOrEqual(t, len(r.Moves), 40)
		assert.Contains(t, Results, r.Result)
		assert.NotEqual(t, Illegal, r.Result)

		// every recorded move replays legally
		board := game.StartingPosition()
		for _, m := range r.Moves {
			move, err := game.MoveFromString(m.Move)
			require.Nil(t, err)
			board, err = board.Apply(move)
			require.Nil(t, err)
		}
		assert.Equal(t, r.FinalFen, board.FEN())
	}
}
