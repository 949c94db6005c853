package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"geotag/internal/coords"
	"geotag/internal/faults"
	"geotag/internal/persist"
)

// Store is the SQLite save journal.
type Store struct {
	db   *sql.DB
	path string
}

// Batch summarizes one recorded batch save.
type Batch struct {
	ID        string
	Started   time.Time
	Finished  time.Time
	Saved     int
	Failed    int
	Cancelled int
}

// Entry is one image's recorded outcome.
type Entry struct {
	BatchID   string
	Position  int
	Path      string
	Target    string
	Status    persist.Status
	Latitude  string
	Longitude string
	Elevation string
	Backup    string
	Kind      string
	Message   string
	ExitCode  int
	Duration  time.Duration
}

// Open creates or opens the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?"+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores result and its outcomes in one transaction. It satisfies
// persist.Recorder.
func (s *Store) Record(ctx context.Context, result persist.BatchResult) error {
	if result.ID == "" {
		return errors.New("record batch: missing id")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, started_at, finished_at, saved, failed, cancelled)
         VALUES (?, ?, ?, ?, ?, ?)`,
		result.ID,
		formatTime(result.Started),
		formatTime(result.Finished),
		result.Saved,
		result.Failed,
		result.Cancelled(),
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (
            batch_id, position, path, target, status, latitude, longitude, elevation,
            backup_path, error_kind, error_message, exit_code, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range result.Outcomes {
		var message string
		if o.Err != nil {
			message = o.Err.Error()
		}
		_, err := stmt.ExecContext(ctx,
			result.ID,
			o.Index,
			o.Path,
			o.Target,
			string(o.Status),
			coords.Format(o.Written.Latitude, coords.Latitude),
			coords.Format(o.Written.Longitude, coords.Longitude),
			coords.FormatElevation(o.Written.Elevation),
			o.Backup,
			o.Kind,
			message,
			o.ExitCode,
			o.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert outcome %d: %w", o.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Recent returns up to limit batches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, saved, failed, cancelled
         FROM batches ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			b                 Batch
			started, finished string
		)
		if err := rows.Scan(&b.ID, &started, &finished, &b.Saved, &b.Failed, &b.Cancelled); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.Started = parseTime(started)
		b.Finished = parseTime(finished)
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Outcomes returns the entries of one batch in store order. An unknown batch
// is faults.ErrNotFound.
func (s *Store) Outcomes(ctx context.Context, batchID string) ([]Entry, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM batches WHERE id = ?", batchID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check batch: %w", err)
	}
	if exists == 0 {
		return nil, faults.Wrap(faults.ErrNotFound, "history", "batch "+batchID, nil)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, position, path, target, status, latitude, longitude, elevation,
                backup_path, error_kind, error_message, exit_code, duration_ms
         FROM outcomes WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			status     string
			durationMS int64
		)
		if err := rows.Scan(&e.BatchID, &e.Position, &e.Path, &e.Target, &status,
			&e.Latitude, &e.Longitude, &e.Elevation, &e.Backup, &e.Kind, &e.Message,
			&e.ExitCode, &durationMS); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		e.Status = persist.Status(status)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes batches that started before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM batches WHERE started_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune batches: %w", err)
	}
	return res.RowsAffected()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
