package storage

import (
	"context"
	"fmt"

	"oficina/internal/core"
	"oficina/internal/log"
)

const workOrderColumns = "id, client_name, description, total_cents, occurred_on, is_paid, payment_method"

// WorkOrderRepository persists service notes (work orders).
type WorkOrderRepository struct {
	store *Store
}

func NewWorkOrderRepository(store *Store) *WorkOrderRepository {
	return &WorkOrderRepository{store: store}
}

func (r *WorkOrderRepository) Create(ctx context.Context, w core.WorkOrder) (int64, error) {
	id, err := r.store.Execute(ctx,
		`INSERT INTO work_orders (client_name, description, total_cents, occurred_on, is_paid, payment_method)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ClientName, w.Description, centsArg(w.TotalAmount), dateArg(w.OccurredOn),
		boolArg(w.IsPaid), stringArg(string(w.Method)))
	if err != nil {
		return 0, fmt.Errorf("create work order: %w", err)
	}

	r.store.logger.InfoContext(ctx, "Work order saved to SQLite",
		log.NewFields().WithOperation(log.OpCreate).WithRecord(string(core.KindWorkOrder), id).WithAmount(w.TotalAmount).ToSlice()...)
	return id, nil
}

func (r *WorkOrderRepository) Update(ctx context.Context, w core.WorkOrder) error {
	if w.ID == 0 {
		return core.ErrIdentityRequired
	}
	err := r.store.execAffected(ctx,
		`UPDATE work_orders SET client_name = ?, description = ?, total_cents = ?, occurred_on = ?,
		 is_paid = ?, payment_method = ? WHERE id = ?`,
		w.ClientName, w.Description, centsArg(w.TotalAmount), dateArg(w.OccurredOn),
		boolArg(w.IsPaid), stringArg(string(w.Method)), w.ID)
	if err != nil {
		return fmt.Errorf("update work order %d: %w", w.ID, err)
	}
	return nil
}

// MarkPaid flags a work order as paid with the given method.
func (r *WorkOrderRepository) MarkPaid(ctx context.Context, id int64, method core.PaymentMethod) error {
	if id == 0 {
		return core.ErrIdentityRequired
	}
	err := r.store.execAffected(ctx,
		`UPDATE work_orders SET is_paid = 1, payment_method = ? WHERE id = ?`, string(method), id)
	if err != nil {
		return fmt.Errorf("mark work order %d paid: %w", id, err)
	}
	return nil
}

// List returns every work order in ascending id order.
func (r *WorkOrderRepository) List(ctx context.Context) ([]core.WorkOrder, error) {
	rows, err := r.store.Query(ctx, `SELECT `+workOrderColumns+` FROM work_orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	out := make([]core.WorkOrder, 0, len(rows))
	for _, row := range rows {
		w, err := decodeWorkOrder(row)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *WorkOrderRepository) Get(ctx context.Context, id int64) (core.WorkOrder, error) {
	rows, err := r.store.Query(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = ?`, id)
	if err != nil {
		return core.WorkOrder{}, fmt.Errorf("get work order %d: %w", id, err)
	}
	if len(rows) == 0 {
		return core.WorkOrder{}, fmt.Errorf("work order %d: %w", id, ErrNotFound)
	}
	return decodeWorkOrder(rows[0])
}

func decodeWorkOrder(row []any) (core.WorkOrder, error) {
	d := newRowDecoder(row)
	w := core.WorkOrder{
		ID:          d.i64(),
		ClientName:  d.text(),
		Description: d.text(),
		TotalAmount: d.money(),
		OccurredOn:  d.day(),
		IsPaid:      d.flag(),
		Method:      d.payment(),
	}
	if d.err != nil {
		return core.WorkOrder{}, fmt.Errorf("decode work order: %w", d.err)
	}
	return w, nil
}
