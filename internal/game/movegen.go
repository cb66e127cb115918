package game

import (
	"github.com/notnil/chess"
	"github.com/samber/lo"

	. "github.com/cricklet/brothfish/internal/helpers"
)

// MoveGenerator enumerates the legal moves of a position.
type MoveGenerator interface {
	LegalMoves(p Position) ([]Move, error)
}

// LegalMoveGenerator generates moves with notnil/chess. Positions that are
// not a *Board are decoded from their FEN.
type LegalMoveGenerator struct{}

var _ MoveGenerator = LegalMoveGenerator{}

func (LegalMoveGenerator) LegalMoves(p Position) ([]Move, error) {
	board, ok := p.(*Board)
	if !ok {
		var err error
		board, err = PositionFromFen(p.FEN())
		if err != nil {
			return nil, err
		}
	}
	return lo.Map(board.pos.ValidMoves(), func(m *chess.Move, _ int) Move {
		return moveFromChess(m)
	}), nil
}

func fileRankFromSquare(sq chess.Square) FileRank {
	return FileRankFromIndex(int(sq))
}

var _promotionFromChess = map[chess.PieceType]PieceType{
	chess.Queen:  Queen,
	chess.Rook:   Rook,
	chess.Bishop: Bishop,
	chess.Knight: Knight,
}

var _promotionToChess = lo.Invert(_promotionFromChess)

func moveFromChess(m *chess.Move) Move {
	move := Move{
		From: fileRankFromSquare(m.S1()),
		To:   fileRankFromSquare(m.S2()),
	}
	if piece, ok := _promotionFromChess[m.Promo()]; ok {
		move.Promotion = Some(piece)
	}
	return move
}
