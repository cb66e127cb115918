// Package resolver turns a position into a single move, preferring a native
// search backend and falling back to a random legal move when the backend
// is missing or fails.
package resolver

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cricklet/brothfish/internal/backend"
	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
)

const DefaultDepth = 3

// MoveResolver is safe for concurrent use. Whether a native backend exists
// is fixed at construction; a failing backend only affects the call it
// failed on.
type MoveResolver struct {
	logger         zerolog.Logger
	rng            Rand
	clock          func() time.Time
	nodesPerSecond int

	backend  Optional[backend.Backend]
	native   Optional[*NativeSearchProvider]
	fallback *RandomFallbackProvider

	mutex sync.Mutex
	depth int
	stats SearchStats
}

type Option func(*MoveResolver)

func WithDepth(depth int) Option {
	return func(r *MoveResolver) {
		r.depth = depth
	}
}

func WithRand(rng Rand) Option {
	return func(r *MoveResolver) {
		r.rng = rng
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *MoveResolver) {
		r.logger = logger
	}
}

func WithClock(clock func() time.Time) Option {
	return func(r *MoveResolver) {
		r.clock = clock
	}
}

func WithNodesPerSecond(nodesPerSecond int) Option {
	return func(r *MoveResolver) {
		r.nodesPerSecond = nodesPerSecond
	}
}

func New(native Optional[backend.Backend], generator game.MoveGenerator, options ...Option) *MoveResolver {
	r := &MoveResolver{
		logger:         SilentLogger,
		rng:            DefaultRand,
		clock:          time.Now,
		nodesPerSecond: DefaultNodesPerSecond,
		backend:        native,
		depth:          DefaultDepth,
	}
	for _, o := range options {
		o(r)
	}

	if native.HasValue() {
		r.native = Some(&NativeSearchProvider{
			Backend:        native.Value(),
			NodesPerSecond: r.nodesPerSecond,
			Clock:          r.clock,
		})
	}
	r.fallback = &RandomFallbackProvider{
		Generator: generator,
		Rand:      r.rng,
		Clock:     r.clock,
	}

	r.logger.Debug().Bool("native", native.HasValue()).Int("depth", r.depth).Msg("resolver created")
	return r
}

// Configure sets the search depth for subsequent calls. The value is not
// validated.
func (r *MoveResolver) Configure(depth int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.depth = depth
	r.logger.Debug().Int("depth", depth).Msg("depth set")
}

func (r *MoveResolver) Depth() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.depth
}

func (r *MoveResolver) HasNative() bool {
	return r.native.HasValue()
}

// Resolve returns a move for p, or nothing when p has no legal moves. It
// never fails: backend errors are logged and answered by the fallback.
func (r *MoveResolver) Resolve(p game.Position) Optional[game.Move] {
	return r.ResolveVerbose(p).Move
}

func (r *MoveResolver) ResolveVerbose(p game.Position) Resolution {
	depth := r.Depth()

	var failure error
	if r.native.HasValue() {
		result, err := provide(r.native.Value(), p, depth)
		if err == nil {
			r.record(result.Stats)
			r.logger.Debug().
				Str("move", result.Move.Value().String()).
				Int("depth", depth).
				Int("nodes", result.Stats.Nodes).
				Dur("elapsed", result.Stats.Elapsed).
				Msg("native move")
			return result
		}
		failure = err
		r.logger.Warn().Err(err).Str("trace", Trace(err)).Msg("native search failed, falling back to a random move")
	}

	result, err := provide(r.fallback, p, depth)
	if err != nil {
		r.logger.Error().Err(err).Str("trace", Trace(err)).Msg("legal move generation failed")
		result = Resolution{Stats: SearchStats{Source: Fallback}}
	}
	result.Stats.Failure = failure
	r.record(result.Stats)

	if result.Move.HasValue() {
		r.logger.Debug().Str("move", result.Move.Value().String()).Msg("fallback move")
	} else {
		r.logger.Debug().Msg("no legal moves")
	}
	return result
}

func (r *MoveResolver) record(stats SearchStats) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.stats = stats
}

// LastNodeCount returns the node estimate of the most recent Resolve, zero
// before the first call.
func (r *MoveResolver) LastNodeCount() int {
	return r.LastStats().Nodes
}

func (r *MoveResolver) LastStats() SearchStats {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.stats
}

// Evaluate scores p with the native backend, when there is one and it can
// evaluate.
func (r *MoveResolver) Evaluate(p game.Position) (score Optional[int]) {
	if r.backend.IsEmpty() {
		return Empty[int]()
	}
	evaluator, ok := r.backend.Value().(backend.Evaluator)
	if !ok {
		return Empty[int]()
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn().Err(Recovered(rec)).Msg("native evaluation panicked")
			score = Empty[int]()
		}
	}()

	value, err := evaluator.Evaluate(p.FEN())
	if err != nil {
		r.logger.Warn().Err(err).Msg("native evaluation failed")
		return Empty[int]()
	}
	return Some(value)
}
