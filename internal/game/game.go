package game

import (
	"github.com/notnil/chess"
	"github.com/samber/lo"

	. "github.com/cricklet/brothfish/internal/helpers"
)

// Game follows a line of play from a start position. Unlike a Board it keeps
// the history, so repetitions and the fifty-move rule end the game too.
// Draws that could only be claimed are claimed as soon as they are eligible.
type Game struct {
	g *chess.Game
}

var _claimedDraws = []chess.Method{chess.ThreefoldRepetition, chess.FiftyMoveRule}

var _endings = map[chess.Method]string{
	chess.Checkmate:            "checkmate",
	chess.Stalemate:            "stalemate",
	chess.ThreefoldRepetition:  "threefold repetition",
	chess.FivefoldRepetition:   "fivefold repetition",
	chess.FiftyMoveRule:        "fifty-move rule",
	chess.SeventyFiveMoveRule:  "seventy-five-move rule",
	chess.InsufficientMaterial: "insufficient material",
}

func NewGame(fen string) (*Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, Errorf("couldn't read fen %q: %w", fen, err)
	}
	g := &Game{chess.NewGame(opt)}
	g.claimDraws()
	return g, nil
}

func (g *Game) Position() *Board {
	return &Board{g.g.Position()}
}

// Apply plays move, which must be legal in the current position.
func (g *Game) Apply(move Move) error {
	valid, err := findMove(g.g.Position(), move)
	if err != nil {
		return err
	}
	if err := g.g.Move(valid); err != nil {
		return Wrap(err)
	}
	g.claimDraws()
	return nil
}

func (g *Game) claimDraws() {
	for _, method := range _claimedDraws {
		if g.g.Outcome() != chess.NoOutcome {
			return
		}
		if lo.Contains(g.g.EligibleDraws(), method) {
			_ = g.g.Draw(method)
		}
	}
}

// Ending names how the game ended, eg. "checkmate" or "insufficient
// material". It is empty while the game goes on.
func (g *Game) Ending() Optional[string] {
	if g.g.Outcome() != chess.NoOutcome {
		return Some(_endings[g.g.Method()])
	}
	return g.Position().Outcome()
}

// Result is "1-0", "0-1", "1/2-1/2", or "*" while the game goes on.
func (g *Game) Result() string {
	if outcome := g.g.Outcome(); outcome != chess.NoOutcome {
		return string(outcome)
	}

	board := g.Position()
	switch board.Outcome().ValueOr("") {
	case "checkmate":
		if board.Player().Other() == White {
			return string(chess.WhiteWon)
		}
		return string(chess.BlackWon)
	case "stalemate":
		return string(chess.Draw)
	}
	return string(chess.NoOutcome)
}
