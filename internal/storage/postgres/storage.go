package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/chanddari/subbot/internal/domain/errors"
	"github.com/chanddari/subbot/internal/domain/model"
	"github.com/chanddari/subbot/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage uses. Declared as an
// interface so tests can substitute a mock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type planRepository struct {
	storage *Storage
}

type contentRepository struct {
	storage *Storage
}

type sequenceRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Plans() repository.PlanRepository {
	return &planRepository{storage: s}
}

func (s *Storage) Content() repository.ContentRepository {
	return &contentRepository{storage: s}
}

func (s *Storage) Sequences() repository.SequenceRepository {
	return &sequenceRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS config (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS messages (
            key TEXT PRIMARY KEY,
            text TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS ui_labels (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS provinces (
            name TEXT PRIMARY KEY
        )`,
		`CREATE TABLE IF NOT EXISTS plans (
            id TEXT PRIMARY KEY,
            category TEXT NOT NULL,
            tier TEXT NOT NULL,
            duration_days INT NOT NULL,
            price BIGINT NOT NULL DEFAULT 0,
            label TEXT NOT NULL DEFAULT '',
            active BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS counters (
            key TEXT PRIMARY KEY,
            value BIGINT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            chat_id BIGINT NOT NULL,
            kind TEXT NOT NULL,
            full_name TEXT NOT NULL DEFAULT '',
            company TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            province TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            plan_key TEXT NOT NULL,
            plan_label TEXT NOT NULL DEFAULT '',
            amount BIGINT NOT NULL DEFAULT 0,
            duration_days INT NOT NULL,
            status TEXT NOT NULL,
            receipt_status TEXT NOT NULL,
            receipt_ref TEXT NOT NULL DEFAULT '',
            start_date DATE,
            end_date DATE,
            days_left INT NOT NULL DEFAULT 0,
            warned BOOLEAN NOT NULL DEFAULT FALSE,
            paid_order_count INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_chat ON orders(chat_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_trial_once ON orders(chat_id) WHERE kind = 'trial'`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, chat_id, kind, full_name, company, phone, province, email,
        plan_key, plan_label, amount, duration_days, status, receipt_status, receipt_ref,
        start_date, end_date, days_left, warned, paid_order_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.ChatID, &o.Kind,
		&o.Form.FullName, &o.Form.Company, &o.Form.Phone, &o.Form.Province, &o.Form.Email,
		&o.PlanKey, &o.PlanLabel, &o.Amount, &o.DurationDays,
		&o.Status, &o.ReceiptStatus, &o.ReceiptRef,
		&o.StartDate, &o.EndDate, &o.DaysLeft, &o.Warned, &o.PaidOrderCount,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders
        (id, chat_id, kind, full_name, company, phone, province, email,
         plan_key, plan_label, amount, duration_days, status, receipt_status, receipt_ref,
         start_date, end_date, days_left, warned, paid_order_count)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        RETURNING created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, query,
		order.ID, order.ChatID, order.Kind,
		order.Form.FullName, order.Form.Company, order.Form.Phone, order.Form.Province, order.Form.Email,
		order.PlanKey, order.PlanLabel, order.Amount, order.DurationDays,
		order.Status, order.ReceiptStatus, order.ReceiptRef,
		order.StartDate, order.EndDate, order.DaysLeft, order.Warned, order.PaidOrderCount,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "uq_orders_trial_once" {
				return domainErrors.ErrTrialAlreadyUsed
			}
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) LatestByChat(ctx context.Context, chatID int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE chat_id=$1 ORDER BY created_at DESC LIMIT 1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) LatestActiveByChat(ctx context.Context, chatID int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE chat_id=$1 AND status='active' ORDER BY created_at DESC LIMIT 1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListActive(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status='active' ORDER BY created_at`
	return r.listOrders(ctx, query)
}

func (r *orderRepository) ListByReceiptStatus(ctx context.Context, status model.ReceiptStatus, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE receipt_status=$1 ORDER BY created_at DESC LIMIT $2`
	return r.listOrders(ctx, query, status, limit)
}

func (r *orderRepository) CountPaidByChat(ctx context.Context, chatID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE chat_id=$1 AND kind<>'trial'`
	var count int
	if err := r.storage.pool.QueryRow(ctx, query, chatID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) TrialUsed(ctx context.Context, chatID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM orders WHERE chat_id=$1 AND kind='trial')`
	var used bool
	if err := r.storage.pool.QueryRow(ctx, query, chatID).Scan(&used); err != nil {
		return false, err
	}
	return used, nil
}

func (r *orderRepository) AttachReceipt(ctx context.Context, id, receiptRef string) error {
	const query = `UPDATE orders SET receipt_ref=$2, receipt_status='Pending', updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, receiptRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) Approve(ctx context.Context, id string, start, end time.Time, daysLeft int) error {
	const query = `UPDATE orders
        SET status='active', receipt_status='Successful',
            start_date=$2, end_date=$3, days_left=$4, updated_at=NOW()
        WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, start, end, daysLeft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) Reject(ctx context.Context, id string) error {
	const query = `UPDATE orders SET receipt_status='Failed', status='pending', updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) ApplySweep(ctx context.Context, id string, patch model.SweepPatch) error {
	if patch.Empty() {
		return nil
	}
	// COALESCE keeps untouched columns as-is so the sweep never clobbers
	// fields owned by other writers.
	const query = `UPDATE orders
        SET days_left = COALESCE($2, days_left),
            warned = COALESCE($3, warned),
            status = COALESCE($4, status),
            updated_at = NOW()
        WHERE id=$1`
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	tag, err := r.storage.pool.Exec(ctx, query, id, patch.DaysLeft, patch.Warned, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- PlanRepository implementation ---

func (r *planRepository) ListActive(ctx context.Context, category model.PlanCategory, tier model.PlanTier) ([]model.Plan, error) {
	const query = `SELECT id, category, tier, duration_days, price, label, active
                   FROM plans WHERE category=$1 AND tier=$2 AND active
                   ORDER BY duration_days`
	rows, err := r.storage.pool.Query(ctx, query, category, tier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Plan
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.Category, &p.Tier, &p.DurationDays, &p.Price, &p.Label, &p.Active); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *planRepository) GetByID(ctx context.Context, category model.PlanCategory, id string) (*model.Plan, error) {
	const query = `SELECT id, category, tier, duration_days, price, label, active
                   FROM plans WHERE id=$1 AND category=$2`
	var p model.Plan
	err := r.storage.pool.QueryRow(ctx, query, id, category).Scan(
		&p.ID, &p.Category, &p.Tier, &p.DurationDays, &p.Price, &p.Label, &p.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- ContentRepository implementation ---

func (r *contentRepository) ConfigValue(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM config WHERE key=$1`
	var value string
	err := r.storage.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domainErrors.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *contentRepository) MessageText(ctx context.Context, key string) (string, error) {
	const query = `SELECT text FROM messages WHERE key=$1`
	var text string
	err := r.storage.pool.QueryRow(ctx, query, key).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domainErrors.ErrNotFound
		}
		return "", err
	}
	return text, nil
}

func (r *contentRepository) UILabels(ctx context.Context) (map[string]string, error) {
	const query = `SELECT key, value FROM ui_labels ORDER BY key`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		labels[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *contentRepository) Provinces(ctx context.Context) ([]string, error) {
	const query = `SELECT name FROM provinces ORDER BY name`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// --- SequenceRepository implementation ---

func (r *sequenceRepository) Next(ctx context.Context, key string, start int64) (int64, error) {
	// Single-statement upsert increment keeps the counter race-free under
	// concurrent order creation.
	const query = `INSERT INTO counters (key, value) VALUES ($1, $2 + 1)
                   ON CONFLICT (key) DO UPDATE SET value = counters.value + 1
                   RETURNING value`
	var value int64
	if err := r.storage.pool.QueryRow(ctx, query, key, start).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
