package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"

	"github.com/cricklet/brothfish/internal/backend"
	"github.com/cricklet/brothfish/internal/config"
	"github.com/cricklet/brothfish/internal/game"
	"github.com/cricklet/brothfish/internal/gamelog"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
	"github.com/cricklet/brothfish/internal/selfplay"
)

func main() {
	args := os.Args[1:]

	if lo.Contains(args, "profile") {
		p := profile.Start(profile.ProfilePath("data/CmdSelfPlayMain"))
		defer p.Stop()
	}
	args = lo.Without(args, "profile")

	c, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	for _, arg := range args {
		if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
			c.SelfPlay.Games = int(parsed)
		}
	}

	// keep the console for the progress bar
	logger := NewLogger(os.Stderr, c.Log.Level)
	if c.Log.Level == "info" {
		logger = NewLogger(os.Stderr, "warn")
	}

	if err := run(c, logger); err != nil {
		fmt.Fprintln(os.Stderr, Trace(err))
		os.Exit(1)
	}
}

func run(c config.Config, logger zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	store, err := gamelog.Open(c.GameLog.Path)
	if err != nil {
		return Wrap(err)
	}
	defer store.Close()

	native, stop := c.Native(logger)
	defer stop()

	bar := progressbar.NewOptions(c.SelfPlay.Games,
		progressbar.OptionSetDescription("self-play"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)

	players := func(index int) (selfplay.Contestant, selfplay.Contestant) {
		engine := selfplay.Contestant{
			Name:     "native",
			Resolver: resolver.New(native, game.LegalMoveGenerator{}, c.ResolverOptions(logger)...),
		}
		random := selfplay.Contestant{
			Name:     "random",
			Resolver: resolver.New(Empty[backend.Backend](), game.LegalMoveGenerator{}, c.ResolverOptions(logger)...),
		}
		if !native.HasValue() {
			engine.Name = "random"
		}
		if index%2 == 0 {
			return engine, random
		}
		return random, engine
	}

	_, err = selfplay.Play(ctx, selfplay.Options{
		Games:       c.SelfPlay.Games,
		Threads:     c.SelfPlay.Threads,
		MaxPlies:    c.SelfPlay.MaxPlies,
		Contestants: players,
		Logger:      logger,
		OnGame: func(record gamelog.GameRecord) {
			if _, err := store.SaveGame(ctx, record); err != nil {
				logger.Error().Err(err).Msg("saving game")
			}
			_ = bar.Add(1)
		},
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		return err
	}
	printSummary(c.GameLog.Path, summary)
	return nil
}

func printSummary(path string, s gamelog.Summary) {
	fmt.Printf("%v games, %v moves in %v\n", humanize.Comma(int64(s.Games)), humanize.Comma(int64(s.Moves)), path)
	if s.Moves > 0 {
		fallback := float64(s.FallbackMoves) / float64(s.Moves) * 100
		fmt.Printf("fallback moves: %v (%v%%)\n", humanize.Comma(int64(s.FallbackMoves)), humanize.FtoaWithDigits(fallback, 1))
	}
	fmt.Printf("estimated nodes: %v\n", humanize.Comma(s.Nodes))

	for _, result := range selfplay.Results {
		if count, ok := s.Results[result]; ok {
			fmt.Printf("  %-8v %v\n", result, humanize.Comma(int64(count)))
		}
	}
}
