package game

import (
	"github.com/notnil/chess"
	"github.com/samber/lo"

	. "github.com/cricklet/brothfish/internal/helpers"
)

const StartFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a complete board snapshot that can be handed to a search
// backend as FEN.
type Position interface {
	FEN() string
}

// Board is an immutable Position backed by notnil/chess.
type Board struct {
	pos *chess.Position
}

var _ Position = (*Board)(nil)

func PositionFromFen(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, Errorf("couldn't read fen %q: %w", fen, err)
	}
	return &Board{chess.NewGame(opt).Position()}, nil
}

func StartingPosition() *Board {
	return &Board{chess.StartingPosition()}
}

func (b *Board) FEN() string {
	return b.pos.String()
}

func (b *Board) Player() Player {
	if b.pos.Turn() == chess.Black {
		return Black
	}
	return White
}

// Apply returns the position after move. The move must be legal.
func (b *Board) Apply(move Move) (*Board, error) {
	valid, err := findMove(b.pos, move)
	if err != nil {
		return nil, err
	}
	return &Board{b.pos.Update(valid)}, nil
}

func findMove(pos *chess.Position, move Move) (*chess.Move, error) {
	from := chess.Square(IndexFromFileRank(move.From))
	to := chess.Square(IndexFromFileRank(move.To))
	promo := chess.NoPieceType
	if move.Promotion.HasValue() {
		var ok bool
		if promo, ok = _promotionToChess[move.Promotion.Value()]; !ok {
			return nil, Errorf("illegal promotion %v", move)
		}
	}

	valid, ok := lo.Find(pos.ValidMoves(), func(m *chess.Move) bool {
		return m.S1() == from && m.S2() == to && m.Promo() == promo
	})
	if !ok {
		return nil, Errorf("illegal move %v in %v", move, pos)
	}
	return valid, nil
}

// Outcome reports checkmate or stalemate, or is empty while moves remain.
// A Board has no history; see Game for draws by repetition or move count.
func (b *Board) Outcome() Optional[string] {
	switch b.pos.Status() {
	case chess.Checkmate:
		return Some("checkmate")
	case chess.Stalemate:
		return Some("stalemate")
	}
	return Empty[string]()
}
