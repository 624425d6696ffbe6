package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"oficina/internal/core"
	"oficina/internal/log"
)

const receiptColumns = "id, amount_cents, occurred_on, payment_method, receipt_path"

// ReceiptRepository persists receipts.
type ReceiptRepository struct {
	store *Store
}

func NewReceiptRepository(store *Store) *ReceiptRepository {
	return &ReceiptRepository{store: store}
}

// Create inserts r and returns its new id.
func (r *ReceiptRepository) Create(ctx context.Context, rc core.Receipt) (int64, error) {
	id, err := r.store.Execute(ctx,
		`INSERT INTO receipts (amount_cents, occurred_on, payment_method, receipt_path) VALUES (?, ?, ?, ?)`,
		centsArg(rc.Amount), dateArg(rc.OccurredOn), string(rc.Method), stringArg(rc.ReceiptPath))
	if err != nil {
		return 0, fmt.Errorf("create receipt: %w", err)
	}

	r.store.logger.InfoContext(ctx, "Receipt saved to SQLite",
		log.NewFields().WithOperation(log.OpCreate).WithRecord(string(core.KindReceipt), id).WithAmount(rc.Amount).ToSlice()...)
	return id, nil
}

// Update overwrites every column of an existing receipt.
func (r *ReceiptRepository) Update(ctx context.Context, rc core.Receipt) error {
	if rc.ID == 0 {
		return core.ErrIdentityRequired
	}
	err := r.store.execAffected(ctx,
		`UPDATE receipts SET amount_cents = ?, occurred_on = ?, payment_method = ?, receipt_path = ? WHERE id = ?`,
		centsArg(rc.Amount), dateArg(rc.OccurredOn), string(rc.Method), stringArg(rc.ReceiptPath), rc.ID)
	if err != nil {
		return fmt.Errorf("update receipt %d: %w", rc.ID, err)
	}
	return nil
}

// List returns every receipt in ascending id order.
func (r *ReceiptRepository) List(ctx context.Context) ([]core.Receipt, error) {
	rows, err := r.store.Query(ctx, `SELECT `+receiptColumns+` FROM receipts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	out := make([]core.Receipt, 0, len(rows))
	for _, row := range rows {
		rc, err := decodeReceipt(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, nil
}

// Get loads one receipt by id.
func (r *ReceiptRepository) Get(ctx context.Context, id int64) (core.Receipt, error) {
	rows, err := r.store.Query(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = ?`, id)
	if err != nil {
		return core.Receipt{}, fmt.Errorf("get receipt %d: %w", id, err)
	}
	if len(rows) == 0 {
		return core.Receipt{}, fmt.Errorf("receipt %d: %w", id, ErrNotFound)
	}
	return decodeReceipt(rows[0])
}

// Total sums every receipt amount.
func (r *ReceiptRepository) Total(ctx context.Context) (decimal.Decimal, error) {
	return sumCents(ctx, r.store, `SELECT COALESCE(SUM(amount_cents), 0) FROM receipts`)
}

func decodeReceipt(row []any) (core.Receipt, error) {
	d := newRowDecoder(row)
	rc := core.Receipt{
		ID:          d.i64(),
		Amount:      d.money(),
		OccurredOn:  d.day(),
		Method:      d.payment(),
		ReceiptPath: d.text(),
	}
	if d.err != nil {
		return core.Receipt{}, fmt.Errorf("decode receipt: %w", d.err)
	}
	return rc, nil
}

func sumCents(ctx context.Context, store *Store, query string) (decimal.Decimal, error) {
	rows, err := store.Query(ctx, query)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return decimal.Zero, nil
	}
	return asAmount(rows[0][0])
}
