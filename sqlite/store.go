// Package sqlite provides a persistence.Store backed by a SQLite database. Each
// table instance owns one row holding its encoded filter state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-colfilter/core/filter"
	"github.com/asaidimu/go-colfilter/core/persistence"
	"go.uber.org/zap"
)

// dbRunner abstracts the methods shared by *sql.DB and *sql.Tx so the store
// can run inside a caller's transaction.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// TableName is the SQLite table holding the saved state.
	TableName string

	// DropIfExists drops the table before creating it. Intended for tests and
	// demos.
	DropIfExists bool
}

// DefaultStoreOptions returns the options used when none are given.
func DefaultStoreOptions() *StoreOptions {
	return &StoreOptions{
		TableName: "_filter_state",
	}
}

// Store is a persistence.Store over SQLite.
type Store struct {
	db      *sql.DB
	tx      *sql.Tx
	logger  *zap.Logger
	options *StoreOptions
}

// Ensure Store implements the persistence.Store interface.
var _ persistence.Store = (*Store)(nil)

// NewStore creates a Store and its table if it does not exist yet.
func NewStore(ctx context.Context, db *sql.DB, logger *zap.Logger, options *StoreOptions) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultStoreOptions()
	}
	if options.TableName == "" {
		options.TableName = DefaultStoreOptions().TableName
	}
	s := &Store{db: db, logger: logger, options: options}
	if err := s.createTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// WithTx returns a Store that runs its statements inside tx.
func (s *Store) WithTx(tx *sql.Tx) *Store {
	return &Store{db: s.db, tx: tx, logger: s.logger, options: s.options}
}

func (s *Store) runner() dbRunner {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// quoteIdentifier properly quotes an identifier for SQLite.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (s *Store) createTable(ctx context.Context) error {
	table := quoteIdentifier(s.options.TableName)
	if s.options.DropIfExists {
		dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
		s.logger.Debug("Executing SQL DROP TABLE", zap.String("sql", dropSQL))
		if _, err := s.runner().ExecContext(ctx, dropSQL); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", s.options.TableName, err)
		}
	}

	createSQL := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (table_id TEXT PRIMARY KEY NOT NULL, state TEXT NOT NULL, updated_at INTEGER NOT NULL);",
		table,
	)
	s.logger.Debug("Executing SQL CREATE TABLE", zap.String("sql", createSQL))
	if _, err := s.runner().ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.options.TableName, err)
	}
	return nil
}

// Load implements persistence.Store.
func (s *Store) Load(ctx context.Context, tableID string) (filter.Specs, bool, error) {
	if tableID == "" {
		return nil, false, persistence.ErrEmptyTableID
	}
	selectSQL := fmt.Sprintf("SELECT state FROM %s WHERE table_id = ?;", quoteIdentifier(s.options.TableName))
	s.logger.Debug("Executing SQL SELECT", zap.String("sql", selectSQL), zap.String("table", tableID))

	var blob string
	err := s.runner().QueryRowContext(ctx, selectSQL, tableID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("Failed to load filter state", zap.Error(err), zap.String("table", tableID))
		return nil, false, fmt.Errorf("failed to load filter state of %s: %w", tableID, err)
	}

	specs, err := persistence.Decode([]byte(blob))
	if err != nil {
		return nil, false, err
	}
	return specs, true, nil
}

// Save implements persistence.Store.
func (s *Store) Save(ctx context.Context, tableID string, specs filter.Specs) error {
	if tableID == "" {
		return persistence.ErrEmptyTableID
	}
	blob, err := persistence.Encode(specs)
	if err != nil {
		return err
	}

	upsertSQL := fmt.Sprintf(
		"INSERT INTO %s (table_id, state, updated_at) VALUES (?, ?, ?) ON CONFLICT(table_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at;",
		quoteIdentifier(s.options.TableName),
	)
	s.logger.Debug("Executing SQL UPSERT", zap.String("sql", upsertSQL), zap.String("table", tableID))

	if _, err := s.runner().ExecContext(ctx, upsertSQL, tableID, string(blob), time.Now().UnixMilli()); err != nil {
		s.logger.Error("Failed to save filter state", zap.Error(err), zap.String("table", tableID))
		return fmt.Errorf("failed to save filter state of %s: %w", tableID, err)
	}
	return nil
}

// Delete implements persistence.Store.
func (s *Store) Delete(ctx context.Context, tableID string) error {
	if tableID == "" {
		return persistence.ErrEmptyTableID
	}
	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE table_id = ?;", quoteIdentifier(s.options.TableName))
	s.logger.Debug("Executing SQL DELETE", zap.String("sql", deleteSQL), zap.String("table", tableID))

	if _, err := s.runner().ExecContext(ctx, deleteSQL, tableID); err != nil {
		return fmt.Errorf("failed to delete filter state of %s: %w", tableID, err)
	}
	return nil
}
