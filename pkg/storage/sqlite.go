package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements Archive using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, layout, metric, notified, callout_sent, total_mtd, started_at, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Layout), run.Metric, run.Notified, run.CalloutSent,
		run.TotalMTD, run.StartedAt.UTC(), run.Duration,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, r := range run.Rows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_rows (run_id, position, account_id, description, section, month_to_date, yesterday, last_month, listed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, r.Account.ID, r.Account.Description, r.Section,
			r.MonthToDate, r.Yesterday, r.LastMonth, r.Listed,
		)
		if err != nil {
			return fmt.Errorf("insert run row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, layout, metric, notified, callout_sent, total_mtd, started_at, duration_seconds
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func (s *SQLite) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, layout, metric, notified, callout_sent, total_mtd, started_at, duration_seconds
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	run.Rows, err = s.runRows(ctx, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLite) runRows(ctx context.Context, id string) ([]model.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, description, section, month_to_date, yesterday, last_month, listed
		 FROM run_rows WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query run rows: %w", err)
	}
	defer rows.Close()

	var out []model.Row
	for rows.Next() {
		var r model.Row
		if err := rows.Scan(&r.Account.ID, &r.Account.Description, &r.Section,
			&r.MonthToDate, &r.Yesterday, &r.LastMonth, &r.Listed); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*model.Run, error) {
	var r model.Run
	var layout string
	err := sc.Scan(&r.ID, &layout, &r.Metric, &r.Notified, &r.CalloutSent,
		&r.TotalMTD, &r.StartedAt, &r.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.Layout = model.Layout(layout)
	return &r, nil
}
