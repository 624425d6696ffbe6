package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"oficina/internal/core"
	"oficina/internal/log"
)

const expenseColumns = "id, amount_cents, occurred_on, payment_method, description, is_deferred, due_on, receipt_path"

// ExpenseRepository persists expenses.
type ExpenseRepository struct {
	store *Store
}

func NewExpenseRepository(store *Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

func (r *ExpenseRepository) Create(ctx context.Context, e core.Expense) (int64, error) {
	id, err := r.store.Execute(ctx,
		`INSERT INTO expenses (amount_cents, occurred_on, payment_method, description, is_deferred, due_on, receipt_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		centsArg(e.Amount), dateArg(e.OccurredOn), string(e.Method), e.Description,
		boolArg(e.IsDeferred), dateArg(e.DueOn), stringArg(e.ReceiptPath))
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	r.store.logger.InfoContext(ctx, "Expense saved to SQLite",
		log.NewFields().WithOperation(log.OpCreate).WithRecord(string(core.KindExpense), id).WithAmount(e.Amount).ToSlice()...)
	return id, nil
}

// Update overwrites every column, so clearing IsDeferred also clears due_on.
func (r *ExpenseRepository) Update(ctx context.Context, e core.Expense) error {
	if e.ID == 0 {
		return core.ErrIdentityRequired
	}
	err := r.store.execAffected(ctx,
		`UPDATE expenses SET amount_cents = ?, occurred_on = ?, payment_method = ?, description = ?,
		 is_deferred = ?, due_on = ?, receipt_path = ? WHERE id = ?`,
		centsArg(e.Amount), dateArg(e.OccurredOn), string(e.Method), e.Description,
		boolArg(e.IsDeferred), dateArg(e.DueOn), stringArg(e.ReceiptPath), e.ID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return nil
}

// List returns every expense in ascending id order.
func (r *ExpenseRepository) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.store.Query(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := decodeExpense(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id int64) (core.Expense, error) {
	rows, err := r.store.Query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	if len(rows) == 0 {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	return decodeExpense(rows[0])
}

// Total sums every expense amount.
func (r *ExpenseRepository) Total(ctx context.Context) (decimal.Decimal, error) {
	return sumCents(ctx, r.store, `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses`)
}

func decodeExpense(row []any) (core.Expense, error) {
	d := newRowDecoder(row)
	e := core.Expense{
		ID:          d.i64(),
		Amount:      d.money(),
		OccurredOn:  d.day(),
		Method:      d.payment(),
		Description: d.text(),
		IsDeferred:  d.flag(),
		DueOn:       d.day(),
		ReceiptPath: d.text(),
	}
	if d.err != nil {
		return core.Expense{}, fmt.Errorf("decode expense: %w", d.err)
	}
	return e, nil
}
