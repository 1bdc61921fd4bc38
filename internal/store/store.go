// Package store persists subscriptions and UI preferences in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when no subscription has the requested ID.
var ErrNotFound = errors.New("subscription not found")

// Store is a SQLite-backed subscription store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Version returns a counter that changes on every write. It is 0 for a
// database that was never written.
func (s *Store) Version(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'version'").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}
	return v, nil
}

// Count returns the number of stored subscriptions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscriptions").Scan(&n)
	return n, err
}

const subscriptionColumns = `id, name, price, currency, cycle, start_day, end_day, color, link, created_at`

// List returns all subscriptions in insertion order.
func (s *Store) List(ctx context.Context) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+subscriptionColumns+" FROM subscriptions ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Get returns the subscription with the given ID.
func (s *Store) Get(ctx context.Context, id string) (model.Subscription, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = ?", id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subscription{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return sub, err
}

// Upsert inserts sub or replaces the stored record with the same ID. A
// replaced record keeps its position.
func (s *Store) Upsert(ctx context.Context, sub model.Subscription) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertTx(ctx, tx, sub); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, bumpVersionSQL); err != nil {
		return fmt.Errorf("bumping version: %w", err)
	}
	return tx.Commit()
}

// Delete removes the subscription with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, bumpVersionSQL); err != nil {
		return fmt.Errorf("bumping version: %w", err)
	}
	return tx.Commit()
}

// ReplaceAll swaps the whole subscription set for subs in one transaction.
func (s *Store) ReplaceAll(ctx context.Context, subs []model.Subscription) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM subscriptions"); err != nil {
		return fmt.Errorf("clearing subscriptions: %w", err)
	}
	for _, sub := range subs {
		if err := upsertTx(ctx, tx, sub); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, bumpVersionSQL); err != nil {
		return fmt.Errorf("bumping version: %w", err)
	}
	return tx.Commit()
}

func upsertTx(ctx context.Context, tx *sql.Tx, sub model.Subscription) error {
	var endDay sql.NullInt64
	if sub.EndDay != nil {
		endDay = sql.NullInt64{Int64: int64(*sub.EndDay), Valid: true}
	}
	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := tx.ExecContext(ctx, `INSERT INTO subscriptions
		(id, position, name, price, currency, cycle, start_day, end_day, color, link, created_at)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM subscriptions), ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    name = excluded.name, price = excluded.price, currency = excluded.currency,
		    cycle = excluded.cycle, start_day = excluded.start_day, end_day = excluded.end_day,
		    color = excluded.color, link = excluded.link, created_at = excluded.created_at`,
		sub.ID, sub.Name, sub.Price, sub.Currency, string(sub.Cycle), int64(sub.StartDay), endDay,
		sub.Color, sub.Link, createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving %s: %w", sub.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(sc scanner) (model.Subscription, error) {
	var (
		sub       model.Subscription
		cycle     string
		startDay  int64
		endDay    sql.NullInt64
		createdAt string
	)
	if err := sc.Scan(&sub.ID, &sub.Name, &sub.Price, &sub.Currency, &cycle,
		&startDay, &endDay, &sub.Color, &sub.Link, &createdAt); err != nil {
		return model.Subscription{}, err
	}
	sub.Cycle = model.Cycle(cycle)
	sub.StartDay = dayindex.Day(startDay)
	if endDay.Valid {
		sub.EndDay = model.DayPtr(dayindex.Day(endDay.Int64))
	}
	sub.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return sub, nil
}
