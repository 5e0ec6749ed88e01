// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/cryptology/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by GetRun for unknown ids.
var ErrNotFound = errors.New("run not found")

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			operation TEXT NOT NULL,
			cipher TEXT NOT NULL,
			key TEXT NOT NULL,
			key_length INTEGER NOT NULL,
			score REAL NOT NULL,
			input_size INTEGER NOT NULL,
			input_digest TEXT NOT NULL,
			output TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_candidates (
			run_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			label TEXT NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (run_id, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_cipher ON runs(cipher);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_input_digest ON runs(input_digest);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a run and the candidates it ranked.
func (s *Store) InsertRun(ctx context.Context, run model.Run, candidates []model.Candidate) (_ int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, operation, cipher, key, key_length, score, input_size, input_digest, output, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.UTC().Format(timeLayout),
		string(run.Operation),
		string(run.Cipher),
		run.Key,
		run.KeyLength,
		run.Score,
		run.InputSize,
		run.InputDigest,
		run.Output,
		run.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(candidates) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_candidates (run_id, rank, label, score) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, c := range candidates {
			if _, err := stmt.ExecContext(ctx, id, c.Rank, c.Label, c.Score); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const runColumns = `id, created_at, operation, cipher, key, key_length, score, input_size, input_digest, output, duration_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.Run, error) {
	var run model.Run
	var createdAt, op, cipher string
	if err := row.Scan(&run.ID, &createdAt, &op, &cipher, &run.Key, &run.KeyLength, &run.Score, &run.InputSize, &run.InputDigest, &run.Output, &run.DurationMs); err != nil {
		return model.Run{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.Run{}, err
	}
	run.CreatedAt = parsed
	run.Operation = model.Operation(op)
	run.Cipher = model.Cipher(cipher)
	return run, nil
}

// ListRuns returns runs matching filter, oldest first. Last keeps only the
// most recent runs.
func (s *Store) ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.Run, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Cipher != "" {
		clauses = append(clauses, "cipher = ?")
		args = append(args, string(filter.Cipher))
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	if filter.InputDigest != "" {
		clauses = append(clauses, "input_digest = ?")
		args = append(args, filter.InputDigest)
	}
	limit := -1
	if filter.Last > 0 {
		limit = filter.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT * FROM (
		SELECT %s FROM runs
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	) ORDER BY created_at ASC, id ASC`, runColumns, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun loads one run with its candidates ordered by rank.
func (s *Store) GetRun(ctx context.Context, id int64) (model.Run, []model.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return model.Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, label, score FROM run_candidates WHERE run_id = ? ORDER BY rank ASC`, id)
	if err != nil {
		return model.Run{}, nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var candidates []model.Candidate
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.Rank, &c.Label, &c.Score); err != nil {
			return model.Run{}, nil, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return model.Run{}, nil, err
	}
	return run, candidates, nil
}

// SummarizeCiphers aggregates run counts and crack scores per cipher.
func (s *Store) SummarizeCiphers(ctx context.Context) ([]model.CipherSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cipher, COUNT(*),
		SUM(CASE WHEN operation = 'crack' THEN 1 ELSE 0 END),
		COALESCE(AVG(CASE WHEN operation = 'crack' THEN score END), 0),
		MAX(created_at)
		FROM runs
		GROUP BY cipher
		ORDER BY cipher ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CipherSummary
	for rows.Next() {
		var sum model.CipherSummary
		var cipher, last string
		if err := rows.Scan(&cipher, &sum.Runs, &sum.Cracks, &sum.AvgScore, &last); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, last)
		if err != nil {
			return nil, err
		}
		sum.Cipher = model.Cipher(cipher)
		sum.LastRun = parsed
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteRuns removes runs created before cutoff and returns how many went.
func (s *Store) DeleteRuns(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	ts := cutoff.UTC().Format(timeLayout)
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM run_candidates WHERE run_id IN (SELECT id FROM runs WHERE created_at < ?)`, ts); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, ts)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}
