package resolver

import (
	"time"

	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
)

type Source int

const (
	NoSource Source = iota
	Native
	Fallback
)

func (s Source) String() string {
	switch s {
	case Native:
		return "native"
	case Fallback:
		return "fallback"
	default:
		return "none"
	}
}

// SearchStats describes the most recent resolution. Nodes is an estimate
// derived from wall-clock time on the native path and exactly zero on the
// fallback path.
type SearchStats struct {
	Nodes   int
	Source  Source
	Elapsed time.Duration

	// Failure holds the native error that forced a fallback, if any.
	Failure error
}

type Resolution struct {
	Move  Optional[game.Move]
	Stats SearchStats

	// Verified is set when the move was drawn from the legal move list.
	// Native moves are trusted, not checked.
	Verified bool
}
