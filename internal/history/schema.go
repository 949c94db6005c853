package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion lives in PRAGMA user_version; 0 means a fresh file. The
// journal only holds diagnostics, so there are no migrations: a file from
// another version must be deleted.
const schemaVersion = 1

// connPragmas are applied by the driver to every new connection.
var connPragmas = url.Values{"_pragma": {
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}}.Encode()

// ErrSchemaMismatch is returned by Open for a journal written by a different
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch version {
	case schemaVersion:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: %s has version %d, want %d (delete it to start a new journal)",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}
