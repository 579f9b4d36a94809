package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
)

// Schema for the local order mirror. The table is a cache of the remote
// collection plus the two client-only flags, so everything is keyed by
// the remote-assigned id.
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	id                   BIGINT PRIMARY KEY,
	number               TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL,
	date_created         TIMESTAMPTZ NOT NULL,
	customer_name        TEXT NOT NULL DEFAULT '',
	contact_info         TEXT NOT NULL DEFAULT '',
	billing_address      TEXT NOT NULL DEFAULT '',
	shipping_address     TEXT NOT NULL DEFAULT '',
	payment_method       TEXT NOT NULL DEFAULT '',
	payment_method_title TEXT NOT NULL DEFAULT '',
	total                TEXT NOT NULL DEFAULT '',
	subtotal             TEXT NOT NULL DEFAULT '',
	total_tax            TEXT NOT NULL DEFAULT '',
	discount_total       TEXT NOT NULL DEFAULT '',
	customer_note        TEXT NOT NULL DEFAULT '',
	items                JSONB NOT NULL DEFAULT '[]',
	fee_lines            JSONB NOT NULL DEFAULT '[]',
	tax_lines            JSONB NOT NULL DEFAULT '[]',
	delivery             JSONB,
	is_printed           BOOLEAN NOT NULL DEFAULT FALSE,
	is_read              BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);
CREATE INDEX IF NOT EXISTS idx_orders_date_created ON orders (date_created DESC);
`

const orderColumns = `id, number, status, date_created, customer_name, contact_info,
	billing_address, shipping_address, payment_method, payment_method_title,
	total, subtotal, total_tax, discount_total, customer_note,
	items, fee_lines, tax_lines, delivery, is_printed, is_read`

type orderStore struct {
	db *pgxpool.Pool
}

// NewOrderStore creates the pgx-backed local order store.
func NewOrderStore(db *pgxpool.Pool) domain.OrderStore {
	return &orderStore{db: db}
}

// EnsureSchema creates the orders table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, Schema)
	return err
}

func (s *orderStore) GetAll(ctx context.Context) ([]domain.Order, error) {
	return s.query(ctx, fmt.Sprintf(`SELECT %s FROM orders ORDER BY date_created DESC, id DESC`, orderColumns))
}

func (s *orderStore) GetByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	return s.query(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE status = $1 ORDER BY date_created DESC, id DESC`, orderColumns), status)
}

func (s *orderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns), id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (s *orderStore) GetByIDs(ctx context.Context, ids []int64) ([]domain.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.query(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE id = ANY($1) ORDER BY date_created DESC, id DESC`, orderColumns), ids)
}

func (s *orderStore) GetAllIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, `SELECT id FROM orders`)
}

func (s *orderStore) GetUnreadIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, `SELECT id FROM orders WHERE is_read = FALSE`)
}

func (s *orderStore) UpsertAll(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, o := range orders {
		r, err := rowFromDomain(o)
		if err != nil {
			return fmt.Errorf("encode order %d: %w", o.ID, err)
		}
		batch.Queue(`
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
			ON CONFLICT (id) DO UPDATE SET
				number = EXCLUDED.number,
				status = EXCLUDED.status,
				date_created = EXCLUDED.date_created,
				customer_name = EXCLUDED.customer_name,
				contact_info = EXCLUDED.contact_info,
				billing_address = EXCLUDED.billing_address,
				shipping_address = EXCLUDED.shipping_address,
				payment_method = EXCLUDED.payment_method,
				payment_method_title = EXCLUDED.payment_method_title,
				total = EXCLUDED.total,
				subtotal = EXCLUDED.subtotal,
				total_tax = EXCLUDED.total_tax,
				discount_total = EXCLUDED.discount_total,
				customer_note = EXCLUDED.customer_note,
				items = EXCLUDED.items,
				fee_lines = EXCLUDED.fee_lines,
				tax_lines = EXCLUDED.tax_lines,
				delivery = EXCLUDED.delivery,
				is_printed = EXCLUDED.is_printed,
				is_read = EXCLUDED.is_read`,
			r.ID, r.Number, r.Status, r.DateCreated, r.CustomerName, r.ContactInfo,
			r.BillingAddress, r.ShippingAddress, r.PaymentMethod, r.PaymentMethodTitle,
			r.Total, r.Subtotal, r.TotalTax, r.DiscountTotal, r.CustomerNote,
			r.Items, r.FeeLines, r.TaxLines, r.Delivery, r.IsPrinted, r.IsRead)
	}

	return s.db.SendBatch(ctx, batch).Close()
}

func (s *orderStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func (s *orderStore) DeleteByStatus(ctx context.Context, status string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM orders WHERE status = $1`, status)
	return err
}

func (s *orderStore) SetPrinted(ctx context.Context, id int64, printed bool) error {
	_, err := s.db.Exec(ctx, `UPDATE orders SET is_printed = $2 WHERE id = $1`, id, printed)
	return err
}

func (s *orderStore) MarkRead(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `UPDATE orders SET is_read = TRUE WHERE id = $1`, id)
	return err
}

func (s *orderStore) MarkManyRead(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `UPDATE orders SET is_read = TRUE WHERE id = ANY($1)`, ids)
	return err
}

func (s *orderStore) MarkAllRead(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `UPDATE orders SET is_read = TRUE WHERE is_read = FALSE`)
	return err
}

// --- helpers ---

func (s *orderStore) query(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *orderStore) queryIDs(ctx context.Context, sql string) ([]int64, error) {
	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var r orderRow
	err := row.Scan(
		&r.ID, &r.Number, &r.Status, &r.DateCreated, &r.CustomerName, &r.ContactInfo,
		&r.BillingAddress, &r.ShippingAddress, &r.PaymentMethod, &r.PaymentMethodTitle,
		&r.Total, &r.Subtotal, &r.TotalTax, &r.DiscountTotal, &r.CustomerNote,
		&r.Items, &r.FeeLines, &r.TaxLines, &r.Delivery, &r.IsPrinted, &r.IsRead)
	if err != nil {
		return domain.Order{}, err
	}
	return rowToDomain(r), nil
}
