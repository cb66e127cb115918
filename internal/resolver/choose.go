package resolver

import (
	"lukechampine.com/frand"

	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
)

// Rand is the source used to pick fallback moves. *math/rand.Rand satisfies
// it, which lets tests fix the selection.
type Rand interface {
	Intn(n int) int
}

type frandSource struct{}

func (frandSource) Intn(n int) int {
	return frand.Intn(n)
}

// DefaultRand draws from a fast CSPRNG with no reproducible seed.
var DefaultRand Rand = frandSource{}

// Choose picks one move uniformly at random, or nothing from an empty slice.
func Choose(moves []game.Move, rng Rand) Optional[game.Move] {
	if len(moves) == 0 {
		return Empty[game.Move]()
	}
	return Some(moves[rng.Intn(len(moves))])
}
