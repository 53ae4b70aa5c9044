package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"ascii-theater/internal/logging"
	"ascii-theater/internal/tier"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// historyLimit caps how many export records a single listing returns.
const historyLimit = 50

// ExportRecord is one row of an account's export history.
type ExportRecord struct {
	ID        int64     `json:"id"`
	Account   string    `json:"account"`
	Format    string    `json:"format"`
	Status    string    `json:"status"`
	Frames    int       `json:"frames"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store manages account entitlements and export history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New opens (creating if needed) the entitlement database at dbPath. The
// parent directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Entitlement database path: %s", dbPath)

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open entitlement database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to entitlement database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize entitlement schema: %w", err)
	}

	logging.Info("Entitlement database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		account_key TEXT PRIMARY KEY,
		tier TEXT NOT NULL DEFAULT 'free',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		last_seen INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_key TEXT NOT NULL,
		format TEXT NOT NULL,
		status TEXT NOT NULL,
		frames INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_exports_account ON exports(account_key, created_at);
	`

	initCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(initCtx, schema)
	return err
}

// Lookup resolves an account key to its entitlement. Unknown or empty keys
// resolve to the free tier, as does any database failure; lookups are on
// the render path and must not block it.
func (s *Store) Lookup(ctx context.Context, accountKey string) tier.Entitlement {
	if accountKey == "" {
		return tier.Free
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var raw string
	err := s.db.QueryRowContext(queryCtx,
		"SELECT tier FROM accounts WHERE account_key = ?", accountKey).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.Warn("Entitlement lookup for %q failed: %v", accountKey, err)
		}
		return tier.Free
	}

	go s.touch(accountKey)

	switch tier.Entitlement(raw) {
	case tier.Premium:
		return tier.Premium
	default:
		return tier.Free
	}
}

// touch updates last_seen outside the request path.
func (s *Store) touch(accountKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET last_seen = strftime('%s', 'now') WHERE account_key = ?", accountKey); err != nil {
		logging.Debug("Entitlement last_seen update failed: %v", err)
	}
}

// Grant sets an account's entitlement, creating the account if needed.
func (s *Store) Grant(ctx context.Context, accountKey string, e tier.Entitlement) error {
	if accountKey == "" {
		return errors.New("account key is required")
	}

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(execCtx, `
		INSERT INTO accounts (account_key, tier) VALUES (?, ?)
		ON CONFLICT(account_key) DO UPDATE SET tier = excluded.tier`,
		accountKey, string(e))
	if err != nil {
		return fmt.Errorf("failed to grant entitlement: %w", err)
	}
	return nil
}

// Revoke returns an account to the free tier.
func (s *Store) Revoke(ctx context.Context, accountKey string) error {
	return s.Grant(ctx, accountKey, tier.Free)
}

// RecordExport appends one export outcome to the account's history.
func (s *Store) RecordExport(ctx context.Context, accountKey, format, status string, frames int) error {
	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(execCtx,
		"INSERT INTO exports (account_key, format, status, frames) VALUES (?, ?, ?, ?)",
		accountKey, format, status, frames)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// History returns the account's most recent exports, newest first.
func (s *Store) History(ctx context.Context, accountKey string) ([]ExportRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, `
		SELECT id, account_key, format, status, frames, created_at
		FROM exports WHERE account_key = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`,
		accountKey, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query export history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Debug("failed to close history rows: %v", closeErr)
		}
	}()

	var records []ExportRecord
	for rows.Next() {
		var r ExportRecord
		var created int64
		if err := rows.Scan(&r.ID, &r.Account, &r.Format, &r.Status, &r.Frames, &created); err != nil {
			return nil, fmt.Errorf("failed to scan export record: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export history: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
