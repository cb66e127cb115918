package resolver

import (
	"time"

	"github.com/cricklet/brothfish/internal/backend"
	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
)

// DefaultNodesPerSecond scales elapsed search time into a node estimate.
const DefaultNodesPerSecond = 1000

type MoveProvider interface {
	Provide(p game.Position, depth int) (Resolution, error)
}

// NativeSearchProvider asks a native backend for the best move.
type NativeSearchProvider struct {
	Backend        backend.Backend
	NodesPerSecond int
	Clock          func() time.Time
}

var _ MoveProvider = (*NativeSearchProvider)(nil)

func (n *NativeSearchProvider) Provide(p game.Position, depth int) (Resolution, error) {
	fen := p.FEN()
	start := n.Clock()

	s, err := n.Backend.BestMove(fen, depth)
	if err != nil {
		return Resolution{}, Wrap(err)
	}
	elapsed := n.Clock().Sub(start)

	move, err := game.MoveFromString(s)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{
		Move: Some(move),
		Stats: SearchStats{
			Nodes:   EstimateNodes(elapsed, depth, n.NodesPerSecond),
			Source:  Native,
			Elapsed: elapsed,
		},
	}, nil
}

// EstimateNodes guesses a node count from elapsed time. The backend does
// not report real counts, so this is only a debugging aid.
func EstimateNodes(elapsed time.Duration, depth int, nodesPerSecond int) int {
	return int(elapsed.Seconds() * float64(depth) * float64(nodesPerSecond))
}

// RandomFallbackProvider picks uniformly among the legal moves.
type RandomFallbackProvider struct {
	Generator game.MoveGenerator
	Rand      Rand
	Clock     func() time.Time
}

var _ MoveProvider = (*RandomFallbackProvider)(nil)

func (f *RandomFallbackProvider) Provide(p game.Position, depth int) (Resolution, error) {
	start := f.Clock()

	moves, err := f.Generator.LegalMoves(p)
	if err != nil {
		return Resolution{}, Wrap(err)
	}

	return Resolution{
		Move: Choose(moves, f.Rand),
		Stats: SearchStats{
			Nodes:   0,
			Source:  Fallback,
			Elapsed: f.Clock().Sub(start),
		},
		Verified: true,
	}, nil
}

// provide calls a provider, converting panics into errors.
func provide(provider MoveProvider, p game.Position, depth int) (result Resolution, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = Resolution{}, Recovered(r)
		}
	}()
	return provider.Provide(p, depth)
}
