package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string, opts Options) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn in a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translateError(err)
	}
	return nil
}

// countNamed runs a named COUNT(*) query.
func (s *Store) countNamed(ctx context.Context, query string, args map[string]interface{}) (int, error) {
	q, params, err := sqlx.Named(query, args)
	if err != nil {
		return 0, err
	}
	q = s.db.Rebind(q)

	var count int
	if err := s.db.GetContext(ctx, &count, q, params...); err != nil {
		return 0, err
	}
	return count, nil
}

// selectNamed runs a named SELECT into dest.
func (s *Store) selectNamed(ctx context.Context, dest interface{}, query string, args map[string]interface{}) error {
	q, params, err := sqlx.Named(query, args)
	if err != nil {
		return err
	}
	q = s.db.Rebind(q)
	return s.db.SelectContext(ctx, dest, q, params...)
}

func now() time.Time {
	return time.Now().UTC()
}
