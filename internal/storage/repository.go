package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"smartbills/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the user, session and subscription stores
// on a single SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ UserStore         = (*SQLiteRepository)(nil)
	_ SessionStore      = (*SQLiteRepository)(nil)
	_ SubscriptionStore = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- UserStore ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (?, ?)
		 RETURNING id, email, password_hash, created_at`,
		email, passwordHash,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// --- SessionStore ---

func (r *SQLiteRepository) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, token string) (Session, error) {
	var s Session
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`,
		token,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.InfoContext(ctx, "Expired sessions removed", "count", n)
	}
	return nil
}

// --- SubscriptionStore ---

const subscriptionColumns = `id, name, price, currency, due_date, category, schedule, notes`

func scanSubscription(row interface{ Scan(...any) error }) (core.Subscription, error) {
	var (
		sub     core.Subscription
		dueDate string
	)
	err := row.Scan(&sub.ID, &sub.Name, &sub.Price, &sub.Currency, &dueDate,
		&sub.Category, (*string)(&sub.Schedule), &sub.Notes)
	if err != nil {
		return core.Subscription{}, err
	}
	d, err := core.ParseDate(dueDate)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("parse stored due date %q: %w", dueDate, err)
	}
	sub.DueDate = d
	return sub, nil
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, userID int64, sub core.Subscription) (core.Subscription, error) {
	sub = sub.WithDefaults()
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO subscriptions (user_id, name, price, currency, due_date, category, schedule, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+subscriptionColumns,
		userID, sub.Name, sub.Price, sub.Currency, sub.DueDate.String(),
		sub.Category, string(sub.Schedule), sub.Notes,
	)
	created, err := scanSubscription(row)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	slog.InfoContext(ctx, "Subscription saved",
		"subscription_id", created.ID,
		"subscription_name", created.Name,
		"price", created.Price,
		"schedule", string(created.Schedule))

	return created, nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, userID int64) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE user_id = ? AND deleted_at IS NULL
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, userID, id int64) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// UpdateSubscription replaces the mutable fields wholesale and bumps the
// version so the sync worker picks the row up again.
func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, userID, id int64, sub core.Subscription) (core.Subscription, error) {
	sub = sub.WithDefaults()
	row := r.db.QueryRowContext(ctx,
		`UPDATE subscriptions
		 SET name = ?, price = ?, currency = ?, due_date = ?, category = ?,
		     schedule = ?, notes = ?, version = version + 1,
		     sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL
		 RETURNING `+subscriptionColumns,
		sub.Name, sub.Price, sub.Currency, sub.DueDate.String(),
		sub.Category, string(sub.Schedule), sub.Notes,
		id, userID,
	)
	updated, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	return updated, nil
}

// DeleteSubscription soft deletes so the sync worker can propagate the
// removal to the sheet backup before the row disappears.
func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions
		 SET deleted_at = CURRENT_TIMESTAMP, sync_status = 'pending',
		     version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- renewal worker queries ---

// ListOverdueRecurring returns live recurring subscriptions, any user,
// whose due date is strictly before the given day. One-time records are
// never rolled forward.
func (r *SQLiteRepository) ListOverdueRecurring(ctx context.Context, before core.Date) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE deleted_at IS NULL AND schedule != ? AND due_date < ?
		 ORDER BY due_date`,
		string(core.OneTime), before.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// AdvanceDueDate moves a subscription's due date forward after a renewal
// pass, marking the row for sheet sync.
func (r *SQLiteRepository) AdvanceDueDate(ctx context.Context, id int64, due core.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions
		 SET due_date = ?, version = version + 1, sync_status = 'pending',
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		due.String(), id,
	)
	if err != nil {
		return fmt.Errorf("advance due date: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance due date rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- sync worker queries ---

func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version FROM subscriptions WHERE sync_status = 'pending' ORDER BY updated_at LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get pending sync: %w", err)
	}
	defer rows.Close()

	var pending []PendingSync
	for rows.Next() {
		var p PendingSync
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// SyncRow is the full row the sync worker ships to the sheet backup,
// including soft-deleted rows so deletions propagate.
type SyncRow struct {
	Subscription core.Subscription
	UserID       int64
	Version      int64
	Deleted      bool
}

func (r *SQLiteRepository) GetSyncRow(ctx context.Context, id int64) (SyncRow, error) {
	var (
		row       SyncRow
		dueDate   string
		deletedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, price, currency, due_date, category, schedule, notes, version, deleted_at
		 FROM subscriptions WHERE id = ?`,
		id,
	).Scan(&row.Subscription.ID, &row.UserID, &row.Subscription.Name,
		&row.Subscription.Price, &row.Subscription.Currency, &dueDate,
		&row.Subscription.Category, (*string)(&row.Subscription.Schedule),
		&row.Subscription.Notes, &row.Version, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncRow{}, ErrNotFound
	}
	if err != nil {
		return SyncRow{}, fmt.Errorf("get sync row: %w", err)
	}
	d, err := core.ParseDate(dueDate)
	if err != nil {
		return SyncRow{}, fmt.Errorf("parse stored due date %q: %w", dueDate, err)
	}
	row.Subscription.DueDate = d
	row.Deleted = deletedAt.Valid
	return row, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET sync_status = 'synced' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET sync_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Subscription marked with sync error", "subscription_id", id)
	return nil
}
