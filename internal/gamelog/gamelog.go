// Package gamelog stores finished games and how each move was resolved in a
// sqlite database.
package gamelog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	. "github.com/cricklet/brothfish/internal/helpers"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	white       TEXT NOT NULL,
	black       TEXT NOT NULL,
	start_fen   TEXT NOT NULL,
	final_fen   TEXT NOT NULL,
	result      TEXT NOT NULL,
	termination TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS moves (
	game_id    INTEGER NOT NULL REFERENCES games(id),
	ply        INTEGER NOT NULL,
	fen        TEXT NOT NULL,
	move       TEXT NOT NULL,
	source     TEXT NOT NULL,
	nodes      INTEGER NOT NULL,
	elapsed_ns INTEGER NOT NULL,
	failure    TEXT NOT NULL,
	PRIMARY KEY (game_id, ply)
);
`

type MoveRecord struct {
	Ply     int
	Fen     string
	Move    string
	Source  string
	Nodes   int
	Elapsed time.Duration
	Failure string
}

type GameRecord struct {
	ID        int64
	StartedAt time.Time
	White     string
	Black     string
	StartFen  string
	FinalFen  string
	Result    string

	// Termination names how the game ended, eg. "checkmate" or "threefold
	// repetition". Empty for games cut off by the ply limit.
	Termination string
	Moves       []MoveRecord
}

type Summary struct {
	Games         int
	Moves         int
	FallbackMoves int
	Nodes         int64
	Results       map[string]int
}

type Store struct {
	db *sql.DB
}

// Open creates the database file and its parent directory when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, Wrap(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, Wrap(err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, Errorf("creating schema in %v: %w", path, err)
	}
	return &Store{db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveGame(ctx context.Context, g GameRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, Wrap(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (started_at, white, black, start_fen, final_fen, result, termination) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.StartedAt.UTC().Format(time.RFC3339Nano), g.White, g.Black, g.StartFen, g.FinalFen, g.Result, g.Termination)
	if err != nil {
		return 0, Wrap(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, Wrap(err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO moves (game_id, ply, fen, move, source, nodes, elapsed_ns, failure) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, Wrap(err)
	}
	defer stmt.Close()

	for _, m := range g.Moves {
		_, err := stmt.ExecContext(ctx, id, m.Ply, m.Fen, m.Move, m.Source, m.Nodes, int64(m.Elapsed), m.Failure)
		if err != nil {
			return 0, Errorf("saving ply %v: %w", m.Ply, err)
		}
	}

	return id, Wrap(tx.Commit())
}

func (s *Store) Game(ctx context.Context, id int64) (GameRecord, error) {
	g := GameRecord{ID: id}
	var startedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at, white, black, start_fen, final_fen, result, termination FROM games WHERE id = ?`, id,
	).Scan(&startedAt, &g.White, &g.Black, &g.StartFen, &g.FinalFen, &g.Result, &g.Termination)
	if err != nil {
		return GameRecord{}, Wrap(err)
	}
	g.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return GameRecord{}, Wrap(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ply, fen, move, source, nodes, elapsed_ns, failure FROM moves WHERE game_id = ? ORDER BY ply`, id)
	if err != nil {
		return GameRecord{}, Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		var m MoveRecord
		var elapsed int64
		if err := rows.Scan(&m.Ply, &m.Fen, &m.Move, &m.Source, &m.Nodes, &elapsed, &m.Failure); err != nil {
			return GameRecord{}, Wrap(err)
		}
		m.Elapsed = time.Duration(elapsed)
		g.Moves = append(g.Moves, m)
	}
	return g, Wrap(rows.Err())
}

func (s *Store) Summary(ctx context.Context) (Summary, error) {
	summary := Summary{Results: map[string]int{}}

	rows, err := s.db.QueryContext(ctx, `SELECT result, COUNT(*) FROM games GROUP BY result`)
	if err != nil {
		return summary, Wrap(err)
	}
	defer rows.Close()
	for rows.Next() {
		var result string
		var count int
		if err := rows.Scan(&result, &count); err != nil {
			return summary, Wrap(err)
		}
		summary.Results[result] = count
		summary.Games += count
	}
	if err := rows.Err(); err != nil {
		return summary, Wrap(err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(source = 'fallback'), 0), COALESCE(SUM(nodes), 0) FROM moves`,
	).Scan(&summary.Moves, &summary.FallbackMoves, &summary.Nodes)
	return summary, Wrap(err)
}
