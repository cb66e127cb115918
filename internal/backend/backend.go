// Package backend describes the narrow string protocol spoken with a native
// search engine: positions go in as FEN, moves come back in coordinate
// notation.
package backend

import (
	"github.com/rs/zerolog"

	. "github.com/cricklet/brothfish/internal/helpers"
)

type Backend interface {
	BestMove(fen string, depth int) (string, error)
}

// Evaluator is implemented by backends that can score a position, in
// centipawns from the side to move.
type Evaluator interface {
	Evaluate(fen string) (int, error)
}

// Funcs adapts plain functions to Backend and Evaluator. A nil EvaluateFunc
// makes Evaluate fail.
type Funcs struct {
	BestMoveFunc func(fen string, depth int) (string, error)
	EvaluateFunc func(fen string) (int, error)
}

var _ Backend = Funcs{}
var _ Evaluator = Funcs{}

func (f Funcs) BestMove(fen string, depth int) (string, error) {
	if f.BestMoveFunc == nil {
		return "", Errorf("backend has no best move function")
	}
	return f.BestMoveFunc(fen, depth)
}

func (f Funcs) Evaluate(fen string) (int, error) {
	if f.EvaluateFunc == nil {
		return 0, Errorf("backend cannot evaluate")
	}
	return f.EvaluateFunc(fen)
}

// Probe attempts to load the native backend exactly once. Failure is not an
// error: the caller runs without a backend for the rest of the process.
func Probe(logger zerolog.Logger, load func() (Backend, error)) Optional[Backend] {
	b, err := load()
	if err != nil || b == nil {
		logger.Warn().Err(err).Msg("native backend not found, running in fallback-only mode")
		return Empty[Backend]()
	}
	logger.Info().Msg("native backend available")
	return Some(b)
}
