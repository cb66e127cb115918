package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/samber/lo"

	"github.com/cricklet/brothfish/internal/config"
	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
	"github.com/cricklet/brothfish/internal/uci"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "recover()", r)
		}
	}()

	args := os.Args[1:]

	if lo.Contains(args, "profile") {
		p := profile.Start(profile.ProfilePath("data/CmdUciMain"))
		defer p.Stop()
	}
	args = lo.Without(args, "profile")

	configFile := ""
	if len(args) > 0 {
		configFile = args[0]
	}
	c, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// stdout belongs to the protocol
	logger := NewLogger(os.Stderr, c.Log.Level)

	native, stop := c.Native(logger)
	defer stop()

	r := uci.NewUciRunner(resolver.New(native, game.LegalMoveGenerator{}, c.ResolverOptions(logger)...))

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := scanner.Text()
		if input == "quit" {
			break
		}
		result, err := r.HandleInput(input)
		if err != nil {
			logger.Error().Err(err).Str("input", input).Msg("uci")
			time.Sleep(200 * time.Millisecond)
			break
		}
		for _, v := range result {
			fmt.Println(v)
		}
	}
}
