// Package selfplay pits resolvers against each other.
package selfplay

import (
	"context"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cricklet/brothfish/internal/game"
	"github.com/cricklet/brothfish/internal/gamelog"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
)

// Results as recorded in gamelog.GameRecord.Result.
const (
	WhiteWins  = "1-0"
	BlackWins  = "0-1"
	Draw       = "1/2-1/2"
	Unfinished = "*"
	Illegal    = "illegal"
)

// Results lists every result in reporting order.
var Results = []string{WhiteWins, BlackWins, Draw, Unfinished, Illegal}

type Contestant struct {
	Name     string
	Resolver *resolver.MoveResolver
}

type Options struct {
	Games    int
	Threads  int
	MaxPlies int
	StartFen string

	// Contestants returns fresh contestants for the given game index.
	Contestants func(index int) (white Contestant, black Contestant)

	// OnGame is called after every finished game, from the worker that
	// played it.
	OnGame func(gamelog.GameRecord)

	Logger zerolog.Logger
}

// PlayGame plays one game until it ends or maxPlies moves were made.
func PlayGame(ctx context.Context, logger zerolog.Logger, white Contestant, black Contestant, startFen string, maxPlies int) (gamelog.GameRecord, error) {
	g, err := game.NewGame(startFen)
	if err != nil {
		return gamelog.GameRecord{}, err
	}

	record := gamelog.GameRecord{
		StartedAt: time.Now(),
		White:     white.Name,
		Black:     black.Name,
		StartFen:  startFen,
		Result:    Unfinished,
	}

	for ply := 0; ply < maxPlies && g.Ending().IsEmpty(); ply++ {
		if err := ctx.Err(); err != nil {
			return record, err
		}

		board := g.Position()
		contestant := white
		if board.Player() == Black {
			contestant = black
		}

		result := contestant.Resolver.ResolveVerbose(board)
		if result.Move.IsEmpty() {
			break
		}

		move := result.Move.Value()
		failure := ""
		if result.Stats.Failure != nil {
			failure = result.Stats.Failure.Error()
		}
		record.Moves = append(record.Moves, gamelog.MoveRecord{
			Ply:     ply,
			Fen:     board.FEN(),
			Move:    move.String(),
			Source:  result.Stats.Source.String(),
			Nodes:   result.Stats.Nodes,
			Elapsed: result.Stats.Elapsed,
			Failure: failure,
		})

		if err := g.Apply(move); err != nil {
			// native moves are trusted, so an engine bug surfaces here
			logger.Error().Err(err).Str("contestant", contestant.Name).Msg("illegal move")
			logger.Debug().Msg(spew.Sdump(record))
			record.Result = Illegal
			record.Termination = "illegal move by " + contestant.Name
			record.FinalFen = board.FEN()
			return record, nil
		}
	}

	record.FinalFen = g.Position().FEN()
	record.Result = g.Result()
	record.Termination = g.Ending().ValueOr("")
	return record, nil
}

// Play runs opts.Games games on opts.Threads workers and returns them in
// game order.
func Play(ctx context.Context, opts Options) ([]gamelog.GameRecord, error) {
	if opts.StartFen == "" {
		opts.StartFen = game.StartFen
	}
	if opts.Threads <= 0 {
		opts.Threads = 1
	}

	records := make([]gamelog.GameRecord, opts.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Threads)

	for i := 0; i < opts.Games; i++ {
		i := i
		g.Go(func() error {
			white, black := opts.Contestants(i)
			record, err := PlayGame(ctx, opts.Logger, white, black, opts.StartFen, opts.MaxPlies)
			if err != nil {
				return Errorf("game %v: %w", i, err)
			}
			records[i] = record

			opts.Logger.Info().
				Int("game", i).
				Str("white", white.Name).
				Str("black", black.Name).
				Str("result", record.Result).
				Str("termination", record.Termination).
				Int("plies", len(record.Moves)).
				Msg("game finished")

			if opts.OnGame != nil {
				opts.OnGame(record)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
