package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const (
	counterGamesPlayed = "games_played"
	counterBestScore   = "best_score"
)

// SQLiteStore keeps stats in a small SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (creating if needed) the stats database at path.
func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SQLiteStore{db: db, log: log.With(slog.String("component", "stats"))}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS counters (
    name TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS learned_words (
    word TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS achievements (
    id TEXT PRIMARY KEY
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("init stats schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (*Lifetime, error) {
	l := NewLifetime()

	query, args, err := sqlBuilder.Select("name", "value").From("counters").
		Where(squirrel.Eq{"name": []string{counterGamesPlayed, counterBestScore}}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query counters: %w", err)
	}
	for rows.Next() {
		var name string
		var value int
		if err := rows.Scan(&name, &value); err != nil {
			rows.Close()
			return nil, err
		}
		switch name {
		case counterGamesPlayed:
			l.GamesPlayed = value
		case counterBestScore:
			l.BestScore = value
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadSet(ctx, "learned_words", "word", l.LearnedWords); err != nil {
		return nil, err
	}
	if err := s.loadSet(ctx, "achievements", "id", l.Achievements); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *SQLiteStore) loadSet(ctx context.Context, table, column string, into map[string]struct{}) error {
	query, args, err := sqlBuilder.Select(column).From(table).OrderBy(column).ToSql()
	if err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		into[v] = struct{}{}
	}
	return rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, l *Lifetime) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	counters := sqlBuilder.Insert("counters").Columns("name", "value").
		Values(counterGamesPlayed, l.GamesPlayed).
		Values(counterBestScore, l.BestScore).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value")
	if err = execBuilder(ctx, tx, counters); err != nil {
		return fmt.Errorf("save counters: %w", err)
	}

	if err = replaceSet(ctx, tx, "learned_words", "word", l.Words()); err != nil {
		return err
	}
	if err = replaceSet(ctx, tx, "achievements", "id", l.EarnedIDs()); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceSet(ctx context.Context, tx *sql.Tx, table, column string, values []string) error {
	if err := execBuilder(ctx, tx, sqlBuilder.Delete(table)); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(values) == 0 {
		return nil
	}
	insert := sqlBuilder.Insert(table).Columns(column)
	for _, v := range values {
		insert = insert.Values(v)
	}
	if err := execBuilder(ctx, tx, insert); err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}

func execBuilder(ctx context.Context, tx *sql.Tx, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
