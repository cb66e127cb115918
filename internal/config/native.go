package config

import (
	"github.com/rs/zerolog"

	"github.com/cricklet/brothfish/internal/backend"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
	"github.com/cricklet/brothfish/internal/stockfish"
)

// Native probes for the configured engine once. The returned func stops the
// engine subprocess, if one was started.
func (c Config) Native(logger zerolog.Logger) (Optional[backend.Backend], func()) {
	var engine *stockfish.Engine
	native := backend.Probe(logger, func() (backend.Backend, error) {
		var err error
		engine, err = stockfish.Load(
			stockfish.WithPath(c.Engine.Path),
			stockfish.WithElo(c.Engine.Elo),
			stockfish.WithAttempts(c.Engine.Attempts),
			stockfish.WithDelay(c.Engine.Delay),
			stockfish.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return engine, nil
	})

	return native, func() {
		if engine != nil {
			engine.Close()
		}
	}
}

func (c Config) ResolverOptions(logger zerolog.Logger) []resolver.Option {
	return []resolver.Option{
		resolver.WithDepth(c.Search.Depth),
		resolver.WithNodesPerSecond(c.Search.NodesPerSecond),
		resolver.WithLogger(logger),
	}
}
