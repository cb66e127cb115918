package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/pkg/profile"
	"github.com/samber/lo"

	"github.com/cricklet/brothfish/internal/config"
	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/server"
)

func main() {
	args := os.Args[1:]

	if lo.Contains(args, "profile") {
		p := profile.Start(profile.ProfilePath("data/CmdServerMain"))
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
			c.Server.Port = int(parsed)
		}
	}

	logger := NewLogger(os.Stderr, c.Log.Level)

	native, stop := c.Native(logger)
	defer stop()

	s := server.New(native, game.LegalMoveGenerator{}, logger, c.ResolverOptions(logger)...)

	logger.Info().Int("port", c.Server.Port).Msg("serving")
	err = http.ListenAndServe(fmt.Sprintf(":%v", c.Server.Port), s.Router())
	if err != nil {
		logger.Error().Str("trace", Trace(Wrap(err))).Msg("server stopped")
	}
}
