package game

import (
	"errors"

	. "github.com/cricklet/brothfish/internal/helpers"
)

// ErrMalformedMove is returned for move strings that cannot be read as
// coordinate notation.
var ErrMalformedMove = errors.New("malformed move")

type Move struct {
	From      FileRank
	To        FileRank
	Promotion Optional[PieceType]
}

func NewMove(from FileRank, to FileRank) Move {
	return Move{From: from, To: to}
}

func NewPromotion(from FileRank, to FileRank, piece PieceType) Move {
	return Move{From: from, To: to, Promotion: Some(piece)}
}

// MoveFromString reads coordinate notation: two squares and an optional
// promotion letter. An unrecognised fifth character leaves the promotion
// empty rather than failing.
func MoveFromString(s string) (Move, error) {
	if len(s) < 4 {
		return Move{}, Errorf("%w: %q is too short", ErrMalformedMove, s)
	}

	from, err := FileRankFromString(s[0:2])
	if err != nil {
		return Move{}, Errorf("%w: %q: %w", ErrMalformedMove, s, err)
	}
	to, err := FileRankFromString(s[2:4])
	if err != nil {
		return Move{}, Errorf("%w: %q: %w", ErrMalformedMove, s, err)
	}

	move := Move{From: from, To: to}
	if len(s) > 4 {
		if piece := PieceTypeFromString(s[4:5]); piece.IsPromotion() {
			move.Promotion = Some(piece)
		}
	}
	return move, nil
}

func (m Move) String() string {
	if m.Promotion.HasValue() {
		return m.From.String() + m.To.String() + m.Promotion.Value().String()
	}
	return m.From.String() + m.To.String()
}
