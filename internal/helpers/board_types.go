package helpers

import (
	"strings"

	"github.com/samber/lo"
)

type File uint
type Rank uint

type FileRank struct {
	File File
	Rank Rank
}

type Player uint

const (
	White Player = iota
	Black
)

var _playerStrings = [2]string{
	"white", "black",
}

func (p Player) String() string {
	return _playerStrings[p]
}

func (p Player) Other() Player {
	return 1 - p
}

type PieceType uint

const (
	Rook PieceType = iota
	Knight
	Bishop
	King
	Queen
	Pawn
	InvalidPiece
)

func (p PieceType) String() string {
	return [7]string{
		"r", "n", "b", "k", "q", "p", "?",
	}[p]
}

func PieceTypeFromString(s string) PieceType {
	switch strings.ToLower(s) {
	case "r":
		return Rook
	case "n":
		return Knight
	case "b":
		return Bishop
	case "k":
		return King
	case "q":
		return Queen
	case "p":
		return Pawn
	default:
		return InvalidPiece
	}
}

// PromotionPieces are the piece types a pawn may promote to.
var PromotionPieces = [4]PieceType{Queen, Rook, Bishop, Knight}

func (p PieceType) IsPromotion() bool {
	return lo.Contains(PromotionPieces[:], p)
}

func (f File) String() string {
	return [8]string{
		"a", "b", "c", "d", "e", "f", "g", "h",
	}[f]
}
func (r Rank) String() string {
	return [8]string{
		"1", "2", "3", "4", "5", "6", "7", "8",
	}[r]
}

func RankFromChar(c byte) (Rank, error) {
	rank := int(c) - '1'
	if rank < 0 || rank >= 8 {
		return 0, Errorf("rank invalid %q", c)
	}
	return Rank(rank), nil
}

func FileFromChar(c byte) (File, error) {
	file := int(c) - 'a'
	if file < 0 || file >= 8 {
		return 0, Errorf("file invalid %q", c)
	}
	return File(file), nil
}

func (v FileRank) String() string {
	return v.File.String() + v.Rank.String()
}

func FileRankFromString(s string) (FileRank, error) {
	if len(s) != 2 {
		return FileRank{}, Errorf("invalid location %q", s)
	}

	file, err := FileFromChar(s[0])
	if err != nil {
		return FileRank{}, Errorf("invalid location %q: %w", s, err)
	}
	rank, err := RankFromChar(s[1])
	if err != nil {
		return FileRank{}, Errorf("invalid location %q: %w", s, err)
	}

	return FileRank{file, rank}, nil
}

func IndexFromFileRank(location FileRank) int {
	return int(location.Rank)*8 + int(location.File)
}

func FileRankFromIndex(index int) FileRank {
	return FileRank{File(index % 8), Rank(index / 8)}
}

// PlayerFromString reads a side to move as in FEN ("w", "b") or spelled out.
func PlayerFromString(c string) (Player, error) {
	switch strings.ToLower(c) {
	case "b", "black":
		return Black, nil
	case "w", "white":
		return White, nil
	default:
		return White, Errorf("invalid player %q", c)
	}
}
