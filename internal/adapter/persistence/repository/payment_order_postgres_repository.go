package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase/interfaces"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

const paymentOrdersSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id                 TEXT PRIMARY KEY,
	parent_id          TEXT,
	provider           TEXT NOT NULL,
	gateway_order_id   TEXT NOT NULL DEFAULT '',
	charge_id          TEXT NOT NULL DEFAULT '',
	transaction_id     TEXT NOT NULL DEFAULT '',
	method             TEXT NOT NULL,
	amount_minor_units BIGINT NOT NULL CHECK (amount_minor_units > 0),
	status             TEXT NOT NULL,
	qr_payload         TEXT NOT NULL DEFAULT '',
	qr_image_url       TEXT NOT NULL DEFAULT '',
	payment_url        TEXT NOT NULL DEFAULT '',
	barcode            TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL,
	expires_at         TIMESTAMPTZ NOT NULL,
	expiry_degraded    BOOLEAN NOT NULL DEFAULT FALSE,
	paid_at            TIMESTAMPTZ,
	customer           JSONB NOT NULL,
	line_items         JSONB NOT NULL,
	last_error         JSONB,
	retry_count        INT NOT NULL DEFAULT 0
);
ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS requested_ttl_seconds BIGINT NOT NULL DEFAULT 0;
ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS requested_provider TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS %[1]s_parent_id_idx ON %[1]s (parent_id);`

const paymentOrderColumns = `id, parent_id, provider, gateway_order_id, charge_id, transaction_id, method,
	amount_minor_units, status, qr_payload, qr_image_url, payment_url, barcode,
	created_at, updated_at, expires_at, expiry_degraded, paid_at,
	customer, line_items, last_error, retry_count,
	requested_ttl_seconds, requested_provider`

type paymentOrderRow struct {
	ID             string         `db:"id"`
	ParentID       sql.NullString `db:"parent_id"`
	Provider       string         `db:"provider"`
	GatewayOrderID string         `db:"gateway_order_id"`
	ChargeID       string         `db:"charge_id"`
	TransactionID  string         `db:"transaction_id"`
	Method         string         `db:"method"`

	AmountMinorUnits int64  `db:"amount_minor_units"`
	Status           string `db:"status"`

	QRPayload  string `db:"qr_payload"`
	QRImageURL string `db:"qr_image_url"`
	PaymentURL string `db:"payment_url"`
	Barcode    string `db:"barcode"`

	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
	ExpiresAt      time.Time    `db:"expires_at"`
	ExpiryDegraded bool         `db:"expiry_degraded"`
	PaidAt         sql.NullTime `db:"paid_at"`

	Customer   types.JSONText     `db:"customer"`
	LineItems  types.JSONText     `db:"line_items"`
	LastError  types.NullJSONText `db:"last_error"`
	RetryCount int                `db:"retry_count"`

	RequestedTTLSeconds int64  `db:"requested_ttl_seconds"`
	RequestedProvider   string `db:"requested_provider"`
}

// PaymentOrderPostgresRepository persists PaymentOrder snapshots in Postgres.
// Save upserts on id, so replaying the same transition is harmless.
type PaymentOrderPostgresRepository struct {
	db        *sqlx.DB
	tableName string
}

var _ interfaces.IPaymentOrderRepository = (*PaymentOrderPostgresRepository)(nil)

func NewPaymentOrderPostgresRepository(db *sqlx.DB, tableName string) *PaymentOrderPostgresRepository {
	if tableName == "" {
		tableName = defaultOrdersTableName
	}
	return &PaymentOrderPostgresRepository{db: db, tableName: tableName}
}

// EnsureSchema creates the table and the parent_id index when missing.
func (r *PaymentOrderPostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(paymentOrdersSchema, r.tableName))
	return err
}

func (r *PaymentOrderPostgresRepository) Save(ctx context.Context, o entities.PaymentOrder) error {
	row, err := toPaymentOrderRow(o)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (
		:id, :parent_id, :provider, :gateway_order_id, :charge_id, :transaction_id, :method,
		:amount_minor_units, :status, :qr_payload, :qr_image_url, :payment_url, :barcode,
		:created_at, :updated_at, :expires_at, :expiry_degraded, :paid_at,
		:customer, :line_items, :last_error, :retry_count,
		:requested_ttl_seconds, :requested_provider)
	ON CONFLICT (id) DO UPDATE SET
		gateway_order_id = EXCLUDED.gateway_order_id,
		charge_id = EXCLUDED.charge_id,
		transaction_id = EXCLUDED.transaction_id,
		status = EXCLUDED.status,
		qr_payload = EXCLUDED.qr_payload,
		qr_image_url = EXCLUDED.qr_image_url,
		payment_url = EXCLUDED.payment_url,
		barcode = EXCLUDED.barcode,
		updated_at = EXCLUDED.updated_at,
		expires_at = EXCLUDED.expires_at,
		expiry_degraded = EXCLUDED.expiry_degraded,
		paid_at = EXCLUDED.paid_at,
		last_error = EXCLUDED.last_error`, r.tableName, paymentOrderColumns)

	_, err = r.db.NamedExecContext(ctx, query, row)
	return err
}

func (r *PaymentOrderPostgresRepository) GetByID(ctx context.Context, id string) (entities.PaymentOrder, error) {
	var row paymentOrderRow
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", paymentOrderColumns, r.tableName)
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.PaymentOrder{}, nil
		}
		return entities.PaymentOrder{}, err
	}
	return fromPaymentOrderRow(row)
}

func (r *PaymentOrderPostgresRepository) ListByParentID(ctx context.Context, parentID string) ([]entities.PaymentOrder, error) {
	var rows []paymentOrderRow
	q := fmt.Sprintf("SELECT %s FROM %s WHERE parent_id = $1 ORDER BY created_at", paymentOrderColumns, r.tableName)
	if err := r.db.SelectContext(ctx, &rows, q, parentID); err != nil {
		return nil, err
	}

	orders := make([]entities.PaymentOrder, 0, len(rows))
	for _, row := range rows {
		o, err := fromPaymentOrderRow(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func toPaymentOrderRow(o entities.PaymentOrder) (paymentOrderRow, error) {
	customer, err := json.Marshal(o.CustomerSnapshot)
	if err != nil {
		return paymentOrderRow{}, err
	}
	items := o.LineItems
	if items == nil {
		items = []entities.LineItem{}
	}
	lineItems, err := json.Marshal(items)
	if err != nil {
		return paymentOrderRow{}, err
	}

	row := paymentOrderRow{
		ID:               o.ID,
		ParentID:         sql.NullString{String: o.ParentID, Valid: o.ParentID != ""},
		Provider:         o.Provider,
		GatewayOrderID:   o.GatewayOrderID,
		ChargeID:         o.ChargeID,
		TransactionID:    o.TransactionID,
		Method:           string(o.Method),
		AmountMinorUnits: o.AmountMinorUnits,
		Status:           string(o.Status),
		QRPayload:        o.QRPayload,
		QRImageURL:       o.QRImageURL,
		PaymentURL:       o.PaymentURL,
		Barcode:          o.Barcode,
		CreatedAt:        o.CreatedAt.UTC(),
		UpdatedAt:        o.UpdatedAt.UTC(),
		ExpiresAt:        o.ExpiresAt.UTC(),
		ExpiryDegraded:   o.ExpiryDegraded,
		Customer:         customer,
		LineItems:        lineItems,
		RetryCount:       o.RetryCount,

		RequestedTTLSeconds: o.RequestedTTLSeconds,
		RequestedProvider:   o.RequestedProvider,
	}
	if o.PaidAt != nil {
		row.PaidAt = sql.NullTime{Time: o.PaidAt.UTC(), Valid: true}
	}
	if rec := toErrorDetailRecord(o.LastError); rec != nil {
		b, err := json.Marshal(rec)
		if err != nil {
			return paymentOrderRow{}, err
		}
		row.LastError = types.NullJSONText{JSONText: b, Valid: true}
	}
	return row, nil
}

func fromPaymentOrderRow(row paymentOrderRow) (entities.PaymentOrder, error) {
	o := entities.PaymentOrder{
		ID:               row.ID,
		ParentID:         row.ParentID.String,
		Provider:         row.Provider,
		GatewayOrderID:   row.GatewayOrderID,
		ChargeID:         row.ChargeID,
		TransactionID:    row.TransactionID,
		Method:           entities.PaymentMethod(row.Method),
		AmountMinorUnits: row.AmountMinorUnits,
		Status:           entities.OrderStatus(row.Status),
		QRPayload:        row.QRPayload,
		QRImageURL:       row.QRImageURL,
		PaymentURL:       row.PaymentURL,
		Barcode:          row.Barcode,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
		ExpiresAt:        row.ExpiresAt.UTC(),
		ExpiryDegraded:   row.ExpiryDegraded,
		RetryCount:       row.RetryCount,

		RequestedTTLSeconds: row.RequestedTTLSeconds,
		RequestedProvider:   row.RequestedProvider,
	}
	if row.PaidAt.Valid {
		t := row.PaidAt.Time.UTC()
		o.PaidAt = &t
	}
	if err := row.Customer.Unmarshal(&o.CustomerSnapshot); err != nil {
		return entities.PaymentOrder{}, fmt.Errorf("customer column: %w", err)
	}
	if err := row.LineItems.Unmarshal(&o.LineItems); err != nil {
		return entities.PaymentOrder{}, fmt.Errorf("line_items column: %w", err)
	}
	if row.LastError.Valid {
		var rec errorDetailRecord
		if err := row.LastError.Unmarshal(&rec); err != nil {
			return entities.PaymentOrder{}, fmt.Errorf("last_error column: %w", err)
		}
		o.LastError = fromErrorDetailRecord(&rec)
	}
	return o, nil
}
