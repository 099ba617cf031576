package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	RegisterFactory("sqlite", newSQLiteStore)
}

// sqliteStore keeps the sent-entries record in a single SQLite file. The
// file is the artifact committed back into the repository between runs,
// so commits go through one transaction and overwrite nothing.
type sqliteStore struct {
	conn *sql.DB
	path string
}

func newSQLiteStore(dbPath string) (Store, error) {
	slog.Info("Initializing SQLite storage", "path", dbPath)

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL", dbPath)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, &CorruptError{Path: dbPath, Err: err}
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, &CorruptError{Path: dbPath, Err: err}
	}

	return &sqliteStore{conn: conn, path: dbPath}, nil
}

func runMigrations(conn *sql.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *sqliteStore) Load(ctx context.Context) (*Record, error) {
	query := `SELECT source_url, entry_id FROM sent_entries`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var key Key
		if err := rows.Scan(&key.SourceURL, &key.EntryID); err != nil {
			return nil, &CorruptError{Path: s.path, Err: err}
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}

	return NewRecordFromKeys(keys), nil
}

func (s *sqliteStore) Commit(ctx context.Context, record *Record) error {
	additions := record.Added()
	if len(additions) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin commit: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sent_entries (source_url, entry_id, link, delivered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_url, entry_id) DO NOTHING
	`

	for _, addition := range additions {
		_, err := tx.ExecContext(ctx, query,
			addition.Key.SourceURL,
			addition.Key.EntryID,
			addition.Link,
			addition.DeliveredAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to record delivery of %s: %w", addition.Key.EntryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record: %w", err)
	}

	return nil
}

func (s *sqliteStore) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	query := `DELETE FROM sent_entries WHERE delivered_at < ?`

	result, err := s.conn.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted entries: %w", err)
	}

	return rows, nil
}

func (s *sqliteStore) Close() error {
	return s.conn.Close()
}
