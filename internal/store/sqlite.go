package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/truerooha/zakazapp-back/internal/domain"
)

// Fixed-width timestamp layout so created_at sorts lexicographically
// even within the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using an embedded SQLite database.
type SQLiteStore struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) Dishes(ctx context.Context) ([]domain.Dish, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, price, category_id
		FROM dishes
		ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Dish
	for rows.Next() {
		var d domain.Dish
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.CategoryID); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) AllowedUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM allowed_users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) AddAllowedUser(ctx context.Context, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO allowed_users (user_id) VALUES (?)`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateOrder inserts an order with its items in one transaction and
// returns it with dish details joined in.
func (s *SQLiteStore) CreateOrder(ctx context.Context, userID, day string, items []domain.OrderItemInput) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order has no items")
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, order_date, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, userID, day, domain.OrderStatusPlaced, createdAt.Format(timeLayout),
	)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, dish_id, quantity)
			VALUES (?, ?, ?)`,
			id, it.DishID, it.Quantity,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.orderByID(ctx, id)
}

// LatestOrder returns the most recently created order or ErrNotFound.
func (s *SQLiteStore) LatestOrder(ctx context.Context) (*domain.Order, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM orders ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.orderByID(ctx, id)
}

func (s *SQLiteStore) DeleteOrder(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) orderByID(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o         domain.Order
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, order_date, status, created_at
		FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.UserID, &o.Date, &o.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.description, d.price, d.category_id, oi.quantity
		FROM order_items oi
		JOIN dishes d ON d.id = oi.dish_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.Dish.ID, &it.Dish.Name, &it.Dish.Description,
			&it.Dish.Price, &it.Dish.CategoryID, &it.Quantity,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UserTotals returns each participant's raw order total for the day,
// ordered by when the participant first ordered.
func (s *SQLiteStore) UserTotals(ctx context.Context, day string) ([]domain.UserTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.user_id, SUM(d.price * oi.quantity)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN dishes d ON d.id = oi.dish_id
		WHERE o.order_date = ?
		GROUP BY o.user_id
		ORDER BY MIN(o.created_at), o.user_id`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.UserTotal
	for rows.Next() {
		var t domain.UserTotal
		if err := rows.Scan(&t.UserID, &t.BaseTotal); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// DishTotals aggregates the day's orders per dish, for the admin view.
func (s *SQLiteStore) DishTotals(ctx context.Context, day string) ([]domain.DishTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, SUM(oi.quantity), SUM(d.price * oi.quantity)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN dishes d ON d.id = oi.dish_id
		WHERE o.order_date = ?
		GROUP BY d.id, d.name
		ORDER BY d.name`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.DishTotal
	for rows.Next() {
		var t domain.DishTotal
		if err := rows.Scan(&t.DishID, &t.Name, &t.Quantity, &t.Amount); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// Settings reads the shared-order settings, normalized so the settlement
// calculator never sees out-of-range values: negative discount or fee
// become 0, discount above 100 is clamped.
func (s *SQLiteStore) Settings(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT discount_percent, delivery_fee, close_at
		FROM order_settings WHERE id = 1`,
	).Scan(&out.DiscountPercent, &out.DeliveryFee, &out.CloseAt)
	if err != nil {
		return domain.Settings{}, err
	}
	return normalizeSettings(out), nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, in domain.Settings) error {
	in = normalizeSettings(in)
	_, err := s.db.ExecContext(ctx, `
		UPDATE order_settings
		SET discount_percent = ?, delivery_fee = ?, close_at = ?
		WHERE id = 1`,
		in.DiscountPercent, in.DeliveryFee, in.CloseAt,
	)
	return err
}

func normalizeSettings(s domain.Settings) domain.Settings {
	if math.IsNaN(s.DiscountPercent) || s.DiscountPercent < 0 {
		s.DiscountPercent = 0
	}
	if s.DiscountPercent > 100 {
		s.DiscountPercent = 100
	}
	if math.IsNaN(s.DeliveryFee) || s.DeliveryFee < 0 {
		s.DeliveryFee = 0
	}
	return s
}
