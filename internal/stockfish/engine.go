// Package stockfish runs a UCI engine subprocess as the native search
// backend.
package stockfish

import (
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog"

	"github.com/cricklet/brothfish/internal/backend"
	. "github.com/cricklet/brothfish/internal/helpers"
)

// MateScore is reported by Evaluate for forced mates, signed from the side
// to move.
const MateScore = 100000

type Engine struct {
	logger   zerolog.Logger
	path     string
	elo      Optional[int]
	attempts uint
	delay    time.Duration

	mutex sync.Mutex
	eng   *uci.Engine
}

var _ backend.Backend = (*Engine)(nil)
var _ backend.Evaluator = (*Engine)(nil)

type EngineOption func(*Engine)

func WithPath(path string) EngineOption {
	return func(e *Engine) {
		e.path = path
	}
}

// WithElo limits the engine's strength. Zero or less means full strength.
func WithElo(elo int) EngineOption {
	return func(e *Engine) {
		if elo > 0 {
			e.elo = Some(elo)
		}
	}
}

func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithAttempts(attempts uint) EngineOption {
	return func(e *Engine) {
		e.attempts = attempts
	}
}

func WithDelay(delay time.Duration) EngineOption {
	return func(e *Engine) {
		e.delay = delay
	}
}

// Load starts the engine and completes the UCI handshake. Starting is
// retried, except when the binary does not exist at all.
func Load(options ...EngineOption) (*Engine, error) {
	e := &Engine{
		logger:   SilentLogger,
		path:     "stockfish",
		attempts: 3,
		delay:    200 * time.Millisecond,
	}
	for _, o := range options {
		o(e)
	}
	if e.attempts == 0 {
		e.attempts = 1
	}

	path, err := exec.LookPath(e.path)
	if err != nil {
		return nil, Wrap(err)
	}

	err = retry.Do(
		func() error {
			eng, err := e.start(path)
			if err != nil {
				return err
			}
			e.eng = eng
			return nil
		},
		retry.Attempts(e.attempts),
		retry.Delay(e.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn().Err(err).Uint("attempt", n+1).Str("path", path).Msg("engine failed to start, retrying")
		}),
	)
	if err != nil {
		return nil, Wrap(err)
	}

	e.logger.Info().Str("path", path).Interface("id", e.eng.ID()).Msg("engine ready")
	return e, nil
}

func (e *Engine) start(path string) (*uci.Engine, error) {
	var opts []func(*uci.Engine)
	if e.logger.GetLevel() <= zerolog.DebugLevel {
		opts = append(opts, uci.Debug, uci.Logger(log.New(e.logger, "uci ", 0)))
	}

	eng, err := uci.New(path, opts...)
	if err != nil {
		return nil, err
	}

	cmds := []uci.Cmd{uci.CmdUCI, uci.CmdIsReady}
	if e.elo.HasValue() {
		cmds = append(cmds,
			uci.CmdSetOption{Name: "UCI_LimitStrength", Value: "true"},
			uci.CmdSetOption{Name: "UCI_Elo", Value: strconv.Itoa(e.elo.Value())},
		)
	}
	cmds = append(cmds, uci.CmdUCINewGame, uci.CmdIsReady)

	if err := eng.Run(cmds...); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("uci handshake: %w", err)
	}
	return eng, nil
}

func positionFromFen(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, err
	}
	return chess.NewGame(opt).Position(), nil
}

func (e *Engine) search(fen string, depth int) (uci.SearchResults, error) {
	pos, err := positionFromFen(fen)
	if err != nil {
		return uci.SearchResults{}, Errorf("engine position %q: %w", fen, err)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.eng == nil {
		return uci.SearchResults{}, Errorf("engine closed")
	}

	err = e.eng.Run(uci.CmdPosition{Position: pos}, uci.CmdGo{Depth: depth})
	if err != nil {
		return uci.SearchResults{}, Errorf("engine search: %w", err)
	}
	return e.eng.SearchResults(), nil
}

func (e *Engine) BestMove(fen string, depth int) (string, error) {
	results, err := e.search(fen, depth)
	if err != nil {
		return "", err
	}
	if results.BestMove == nil {
		return "", Errorf("engine returned no move for %q", fen)
	}

	e.logger.Debug().
		Str("fen", fen).
		Int("depth", depth).
		Int("nodes", results.Info.Nodes).
		Str("move", results.BestMove.String()).
		Msg("engine search")

	return results.BestMove.String(), nil
}

func (e *Engine) Evaluate(fen string) (int, error) {
	results, err := e.search(fen, 1)
	if err != nil {
		return 0, err
	}

	score := results.Info.Score
	if score.Mate > 0 {
		return MateScore, nil
	} else if score.Mate < 0 {
		return -MateScore, nil
	}
	return score.CP, nil
}

func (e *Engine) Close() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.eng != nil {
		_ = e.eng.Close()
		e.eng = nil
	}
}
