package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
)

type UpdateToWeb struct {
	FenString     string   `json:"fenString"`
	LastMove      string   `json:"lastMove"`
	Selection     string   `json:"selection"`
	PossibleMoves []string `json:"possibleMoves"`
	Player        string   `json:"player"`
	Outcome       string   `json:"outcome"`
	Result        string   `json:"result"`
	Nodes         int      `json:"nodes"`
	Source        string   `json:"source"`
	Error         string   `json:"error,omitempty"`
}

func (u UpdateToWeb) String() string {
	return fmt.Sprint("UpdateToWeb: ", u.FenString, ", ", u.LastMove, ", ", u.Selection, ", ", u.PossibleMoves)
}

type MessageFromWeb struct {
	NewFen        *string `json:"newFen"`
	ComputerPlays *string `json:"computerPlays"`
	Selection     *string `json:"selection"`
	Move          *string `json:"move"`
	Depth         *int    `json:"depth"`
}

func (u MessageFromWeb) String() string {
	if u.NewFen != nil {
		return fmt.Sprint("MessageFromWeb NewFen: ", *u.NewFen)
	}
	if u.ComputerPlays != nil {
		return fmt.Sprint("MessageFromWeb ComputerPlays: ", *u.ComputerPlays)
	}
	if u.Selection != nil {
		return fmt.Sprint("MessageFromWeb Selection: ", *u.Selection)
	}
	if u.Move != nil {
		return fmt.Sprint("MessageFromWeb Move: ", *u.Move)
	}
	if u.Depth != nil {
		return fmt.Sprint("MessageFromWeb Depth: ", *u.Depth)
	}
	return "MessageFromWeb unknown"
}

// logForwarding relays every log line of a session to its client.
type logForwarding struct {
	w io.Writer
}

func (l logForwarding) Run(e *zerolog.Event, level zerolog.Level, message string) {
	fmt.Fprintf(l.w, "%v: %v", level, message)
}

// session is one game between a websocket client and the resolver. The
// computer plays black unless told otherwise.
type session struct {
	conn     *websocket.Conn
	logger   zerolog.Logger
	local    zerolog.Logger
	resolver *resolver.MoveResolver
	game     *game.Game
	computer Player
	lastMove string
	stats    resolver.SearchStats
}

func (s *session) send(v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		s.local.Error().Err(err).Msg("json marshal")
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, bytes); err != nil {
		s.local.Error().Err(err).Msg("websocket write")
	}
}

// sendLog writes a log line to the client as a one element array, which
// the client tells apart from board updates.
func (s *session) sendLog(message string) {
	s.send([]string{message})
}

func (s *session) update(u UpdateToWeb) {
	board := s.game.Position()
	u.FenString = board.FEN()
	u.Player = board.Player().String()
	u.LastMove = s.lastMove
	u.Outcome = s.game.Ending().ValueOr("")
	u.Result = s.game.Result()
	u.Nodes = s.stats.Nodes
	u.Source = s.stats.Source.String()
	s.send(u)
}

func (s *session) movesForSelection(selection string) ([]string, error) {
	from, err := FileRankFromString(selection)
	if err != nil {
		return nil, err
	}
	moves, err := game.LegalMoveGenerator{}.LegalMoves(s.game.Position())
	if err != nil {
		return nil, err
	}
	moves = lo.Filter(moves, func(m game.Move, _ int) bool {
		return m.From == from
	})
	return lo.Map(moves, func(m game.Move, _ int) string {
		return m.String()
	}), nil
}

func (s *session) apply(move game.Move) error {
	if ending := s.game.Ending(); ending.HasValue() {
		return Errorf("game is over by %v", ending.Value())
	}
	if err := s.game.Apply(move); err != nil {
		return err
	}
	s.lastMove = move.String()
	return nil
}

// computerMove lets the resolver move while it is the computer's turn.
func (s *session) computerMove() error {
	board := s.game.Position()
	if board.Player() != s.computer || s.game.Ending().HasValue() {
		return nil
	}

	result := s.resolver.ResolveVerbose(board)
	s.stats = result.Stats
	if result.Move.IsEmpty() {
		return nil
	}
	return s.apply(result.Move.Value())
}

func (s *session) handle(message MessageFromWeb) UpdateToWeb {
	var update UpdateToWeb
	var err error

	if message.NewFen != nil {
		var g *game.Game
		g, err = game.NewGame(*message.NewFen)
		if err == nil {
			s.game = g
			s.lastMove = ""
			err = s.computerMove()
		}
	} else if message.ComputerPlays != nil {
		var player Player
		player, err = PlayerFromString(*message.ComputerPlays)
		if err == nil {
			s.computer = player
			err = s.computerMove()
		}
	} else if message.Selection != nil {
		update.Selection = *message.Selection
		update.PossibleMoves, err = s.movesForSelection(*message.Selection)
	} else if message.Move != nil {
		var move game.Move
		move, err = game.MoveFromString(*message.Move)
		if err == nil {
			err = s.apply(move)
		}
		if err == nil {
			err = s.computerMove()
		}
	} else if message.Depth != nil {
		s.resolver.Configure(*message.Depth)
	}

	if err != nil {
		s.logger.Warn().Err(err).Str("message", message.String()).Msg("message failed")
		update.Error = err.Error()
	}
	return update
}

func (s *Server) ws(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade")
		return
	}
	defer c.Close()

	start, err := game.NewGame(game.StartFen)
	if err != nil {
		s.logger.Error().Err(err).Msg("new game")
		return
	}

	sess := &session{
		conn:     c,
		local:    s.logger.With().Str("remote", r.RemoteAddr).Logger(),
		game:     start,
		computer: Black,
	}
	sess.logger = sess.local.Hook(logForwarding{w: FuncWriter(sess.sendLog)})
	sess.resolver = s.newResolver(sess.logger)

	sess.update(UpdateToWeb{})
	for {
		_, bytes, err := c.ReadMessage()
		if err != nil {
			sess.local.Debug().Err(err).Msg("websocket closed")
			return
		}

		var message MessageFromWeb
		if err := json.Unmarshal(bytes, &message); err != nil {
			sess.logger.Warn().Err(err).Msg("json unmarshal")
			sess.update(UpdateToWeb{Error: err.Error()})
			continue
		}
		sess.logger.Debug().Str("message", message.String()).Msg("received")
		sess.update(sess.handle(message))
	}
}
