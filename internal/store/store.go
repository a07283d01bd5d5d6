package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Timestamps are persisted as RFC3339 UTC strings with nanosecond precision.
const timeFormat = time.RFC3339Nano

// SubscriptionStore provides upsert and point-lookup operations for
// subscription records backed by SQLite.
type SubscriptionStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSubscriptionStore opens (or creates) the subscription database in dir.
func NewSubscriptionStore(dir string) (*SubscriptionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	dbPath := filepath.Join(dir, "subscriptions.db")
	dsn := dbPath + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(30000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open subscription db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SubscriptionStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SubscriptionStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS subscriptions (
		user_id                TEXT PRIMARY KEY,
		plan                   TEXT NOT NULL DEFAULT '',
		plan_name              TEXT NOT NULL DEFAULT '',
		status                 TEXT NOT NULL DEFAULT '',
		stripe_customer_id     TEXT NOT NULL DEFAULT '',
		stripe_subscription_id TEXT NOT NULL DEFAULT '',
		stripe_product_id      TEXT NOT NULL DEFAULT '',
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_stripe_subscription_id
		ON subscriptions(stripe_subscription_id) WHERE stripe_subscription_id != '';
	CREATE INDEX IF NOT EXISTS idx_subscriptions_stripe_customer_id
		ON subscriptions(stripe_customer_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init subscription schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity (used for readiness probes).
func (s *SubscriptionStore) Ping() error {
	return s.db.Ping()
}

// Close closes the underlying database connection.
func (s *SubscriptionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Upsert writes the record keyed by UserID in a single atomic statement.
// On first write CreatedAt and UpdatedAt are both set to now; on subsequent
// writes CreatedAt is preserved and everything else is overwritten. Applying
// the same record twice yields the same row apart from UpdatedAt, which is
// what Stripe's at-least-once webhook delivery requires.
func (s *SubscriptionStore) Upsert(rec *SubscriptionRecord) error {
	if rec == nil {
		return fmt.Errorf("subscription record is nil")
	}
	if rec.UserID == "" {
		return fmt.Errorf("subscription record missing user id")
	}

	now := s.now()
	_, err := s.db.Exec(`
		INSERT INTO subscriptions (
			user_id, plan, plan_name, status,
			stripe_customer_id, stripe_subscription_id, stripe_product_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			plan = excluded.plan,
			plan_name = excluded.plan_name,
			status = excluded.status,
			stripe_customer_id = excluded.stripe_customer_id,
			stripe_subscription_id = excluded.stripe_subscription_id,
			stripe_product_id = excluded.stripe_product_id,
			updated_at = excluded.updated_at`,
		rec.UserID, string(rec.Plan), rec.PlanName, string(rec.Status),
		rec.StripeCustomerID, rec.StripeSubscriptionID, rec.StripeProductID,
		now.Format(timeFormat), now.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription for user %q: %w", rec.UserID, err)
	}
	return nil
}

// GetByUserID retrieves a subscription record by user ID.
// Returns (nil, nil) when no record exists.
func (s *SubscriptionStore) GetByUserID(userID string) (*SubscriptionRecord, error) {
	row := s.db.QueryRow(`SELECT
		user_id, plan, plan_name, status,
		stripe_customer_id, stripe_subscription_id, stripe_product_id,
		created_at, updated_at
		FROM subscriptions WHERE user_id = ?`, userID)
	return scanRecord(row)
}

// GetByStripeSubscriptionID retrieves a subscription record by Stripe
// subscription ID. Returns (nil, nil) when no record exists.
func (s *SubscriptionStore) GetByStripeSubscriptionID(subscriptionID string) (*SubscriptionRecord, error) {
	row := s.db.QueryRow(`SELECT
		user_id, plan, plan_name, status,
		stripe_customer_id, stripe_subscription_id, stripe_product_id,
		created_at, updated_at
		FROM subscriptions WHERE stripe_subscription_id = ?`, subscriptionID)
	return scanRecord(row)
}

// List returns all subscription records, newest first.
func (s *SubscriptionStore) List() ([]*SubscriptionRecord, error) {
	rows, err := s.db.Query(`SELECT
		user_id, plan, plan_name, status,
		stripe_customer_id, stripe_subscription_id, stripe_product_id,
		created_at, updated_at
		FROM subscriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var recs []*SubscriptionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Count returns the number of subscription records.
func (s *SubscriptionStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM subscriptions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return n, nil
}

// scanner is an interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*SubscriptionRecord, error) {
	var rec SubscriptionRecord
	var plan, status, createdAt, updatedAt string

	err := s.Scan(
		&rec.UserID, &plan, &rec.PlanName, &status,
		&rec.StripeCustomerID, &rec.StripeSubscriptionID, &rec.StripeProductID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}

	rec.Plan = Plan(plan)
	rec.Status = Status(status)
	if rec.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if rec.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	return &rec, nil
}
