// Package storage persists ledger records in a local SQLite file.
//
// Every statement runs on its own short-lived connection and autocommits;
// there are no multi-statement transactions.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"oficina/internal/log"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("record not found")

// Store is the narrow SQL boundary used by the repositories.
type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open creates the database file (and its directory) if needed, applies
// migrations and returns a ready Store.
func Open(dbPath string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// No pooled connections: each statement opens and releases its own.
	db.SetMaxIdleConns(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Debug("SQLite store ready", log.FieldPath, dbPath, log.FieldOperation, log.OpMigrate)
	return &Store{db: db, path: dbPath, logger: logger}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Execute runs a write statement and returns the last inserted row id.
func (s *Store) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	return res, nil
}

// execAffected runs a write statement and fails with ErrNotFound when no row changed.
func (s *Store) execAffected(ctx context.Context, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Query runs a read statement and returns every row as a slice of column values.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Repositories bundles the per-kind repositories sharing one Store.
type Repositories struct {
	Receipts   *ReceiptRepository
	Expenses   *ExpenseRepository
	WorkOrders *WorkOrderRepository
	Employees  *EmployeeRepository
}

func NewRepositories(store *Store) Repositories {
	return Repositories{
		Receipts:   NewReceiptRepository(store),
		Expenses:   NewExpenseRepository(store),
		WorkOrders: NewWorkOrderRepository(store),
		Employees:  NewEmployeeRepository(store),
	}
}
