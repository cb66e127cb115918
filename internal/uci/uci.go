// Package uci exposes a MoveResolver as a UCI engine so chess GUIs can play
// against it.
package uci

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
)

type UciRunner struct {
	Resolver *resolver.MoveResolver

	position *game.Board
}

func NewUciRunner(r *resolver.MoveResolver) *UciRunner {
	return &UciRunner{Resolver: r, position: game.StartingPosition()}
}

type Position struct {
	Fen   string
	Moves []string
}

func parseFen(input string) (string, error) {
	s := strings.TrimPrefix(input, "position ")

	if strings.HasPrefix(s, "fen ") {
		s = strings.TrimPrefix(s, "fen ")
		return strings.TrimSpace(strings.Split(s, " moves")[0]), nil
	} else if strings.HasPrefix(s, "startpos") {
		return game.StartFen, nil
	}

	return "", Errorf("couldn't parse '%v'", s)
}

func parseMoves(input string) []string {
	result := []string{}
	if strings.Contains(input, " moves ") {
		fields := strings.Fields(strings.SplitN(input, " moves ", 2)[1])
		result = append(result, fields...)
	}
	return result
}

func parsePosition(input string) (Position, error) {
	fen, err := parseFen(input)
	if err != nil {
		return Position{}, err
	}
	return Position{Fen: fen, Moves: parseMoves(input)}, nil
}

// parseGoDepth returns the depth of "go depth N", if given.
func parseGoDepth(input string) (Optional[int], error) {
	fields := strings.Fields(input)
	index := lo.IndexOf(fields, "depth")
	if index < 0 {
		return Empty[int](), nil
	}
	if index+1 >= len(fields) {
		return Empty[int](), Errorf("missing depth in '%v'", input)
	}
	depth, err := strconv.Atoi(fields[index+1])
	if err != nil {
		return Empty[int](), Errorf("invalid depth in '%v': %w", input, err)
	}
	return Some(depth), nil
}

// parseSetOption reads "setoption name <name> value <value>".
func parseSetOption(input string) (string, string) {
	s := strings.TrimPrefix(input, "setoption ")
	s = strings.TrimPrefix(s, "name ")
	parts := strings.SplitN(s, " value ", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(parts[0]), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

func (u *UciRunner) SetupPosition(position Position) error {
	board, err := game.PositionFromFen(position.Fen)
	if err != nil {
		return fmt.Errorf("couldn't create game from %v, %w", position, err)
	}

	for _, s := range position.Moves {
		move, err := game.MoveFromString(s)
		if err != nil {
			return err
		}
		board, err = board.Apply(move)
		if err != nil {
			return err
		}
	}

	u.position = board
	return nil
}

func (u *UciRunner) search(depth Optional[int]) []string {
	if depth.HasValue() {
		previous := u.Resolver.Depth()
		u.Resolver.Configure(depth.Value())
		defer u.Resolver.Configure(previous)
	}

	result := u.Resolver.ResolveVerbose(u.position)
	lines := []string{
		fmt.Sprintf("info depth %v nodes %v string %v", u.Resolver.Depth(), result.Stats.Nodes, result.Stats.Source),
	}
	if result.Move.IsEmpty() {
		return append(lines, "bestmove 0000")
	}
	return append(lines, fmt.Sprintf("bestmove %v", result.Move.Value()))
}

func (u *UciRunner) HandleInput(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	result := []string{}
	if input == "uci" {
		result = append(result, "id name brothfish 1")
		result = append(result, "id author Kenrick Rilee")
		result = append(result, fmt.Sprintf("option name Depth type spin default %v min 1 max 64", resolver.DefaultDepth))
		result = append(result, "uciok")
	} else if input == "ucinewgame" {
		u.position = game.StartingPosition()
	} else if input == "isready" {
		result = append(result, "readyok")
	} else if strings.HasPrefix(input, "setoption ") {
		name, value := parseSetOption(input)
		if strings.EqualFold(name, "depth") {
			depth, err := strconv.Atoi(value)
			if err != nil {
				return result, fmt.Errorf("invalid depth %q: %w", value, err)
			}
			u.Resolver.Configure(depth)
		}
	} else if strings.HasPrefix(input, "position ") {
		position, err := parsePosition(input)
		if err != nil {
			return result, err
		}
		err = u.SetupPosition(position)
		if err != nil {
			return result, err
		}
	} else if input == "go" || strings.HasPrefix(input, "go ") {
		depth, err := parseGoDepth(input)
		if err != nil {
			return result, err
		}
		result = append(result, u.search(depth)...)
	} else if input == "d" {
		result = append(result, "Fen: "+u.position.FEN())
	}
	return result, nil
}

func (u *UciRunner) FenString() string {
	return u.position.FEN()
}
