// Package worker mirrors persisted records into the external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"

	"oficina/internal/amqp"
	"oficina/internal/core"
	"oficina/internal/log"
	"oficina/internal/sheets"
	"oficina/internal/storage"
)

// RecordSource loads records by id. storage.Repositories satisfies it
// through NewRecordSource.
type RecordSource interface {
	Receipt(ctx context.Context, id int64) (core.Receipt, error)
	Expense(ctx context.Context, id int64) (core.Expense, error)
	WorkOrder(ctx context.Context, id int64) (core.WorkOrder, error)
	Employee(ctx context.Context, id int64) (core.Employee, error)

	Receipts(ctx context.Context) ([]core.Receipt, error)
	Expenses(ctx context.Context) ([]core.Expense, error)
	WorkOrders(ctx context.Context) ([]core.WorkOrder, error)
	Employees(ctx context.Context) ([]core.Employee, error)
}

type repoSource struct {
	repos storage.Repositories
}

// NewRecordSource adapts the SQLite repositories to RecordSource.
func NewRecordSource(repos storage.Repositories) RecordSource {
	return repoSource{repos: repos}
}

func (s repoSource) Receipt(ctx context.Context, id int64) (core.Receipt, error) {
	return s.repos.Receipts.Get(ctx, id)
}

func (s repoSource) Expense(ctx context.Context, id int64) (core.Expense, error) {
	return s.repos.Expenses.Get(ctx, id)
}

func (s repoSource) WorkOrder(ctx context.Context, id int64) (core.WorkOrder, error) {
	return s.repos.WorkOrders.Get(ctx, id)
}

func (s repoSource) Employee(ctx context.Context, id int64) (core.Employee, error) {
	return s.repos.Employees.Get(ctx, id)
}

func (s repoSource) Receipts(ctx context.Context) ([]core.Receipt, error) {
	return s.repos.Receipts.List(ctx)
}

func (s repoSource) Expenses(ctx context.Context) ([]core.Expense, error) {
	return s.repos.Expenses.List(ctx)
}

func (s repoSource) WorkOrders(ctx context.Context) ([]core.WorkOrder, error) {
	return s.repos.WorkOrders.List(ctx)
}

func (s repoSource) Employees(ctx context.Context) ([]core.Employee, error) {
	return s.repos.Employees.List(ctx)
}

// MirrorWorker turns record events into ledger rows.
type MirrorWorker struct {
	source RecordSource
	ledger sheets.LedgerWriter
	logger *log.Logger
}

func NewMirrorWorker(source RecordSource, ledger sheets.LedgerWriter, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		source: source,
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent loads the current state of the record and writes its row.
//
// Events for records that no longer exist, or of unknown kind, are dropped
// with a warning: retrying them can never succeed.
func (w *MirrorWorker) HandleRecordEvent(ctx context.Context, ev amqp.RecordEvent) error {
	fields := log.NewFields().WithOperation(log.OpSync).WithRecord(string(ev.Kind), ev.RecordID)
	w.logger.InfoContext(ctx, "Processing record event", fields.ToSlice()...)

	row, err := w.loadRow(ctx, ev.Kind, ev.RecordID)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, errUnknownKind):
		w.logger.WarnContext(ctx, "Dropping record event", fields.WithError(err).ToSlice()...)
		return nil
	case err != nil:
		return fmt.Errorf("load %s %d: %w", ev.Kind, ev.RecordID, err)
	}

	if _, err := w.ledger.UpsertRow(ctx, ev.Kind, ev.RecordID, row); err != nil {
		return fmt.Errorf("mirror %s %d: %w", ev.Kind, ev.RecordID, err)
	}
	return nil
}

var errUnknownKind = errors.New("unknown record kind")

func (w *MirrorWorker) loadRow(ctx context.Context, kind core.Kind, id int64) ([]string, error) {
	switch kind {
	case core.KindReceipt:
		r, err := w.source.Receipt(ctx, id)
		if err != nil {
			return nil, err
		}
		return sheets.ReceiptRow(r), nil
	case core.KindExpense:
		e, err := w.source.Expense(ctx, id)
		if err != nil {
			return nil, err
		}
		return sheets.ExpenseRow(e), nil
	case core.KindWorkOrder:
		o, err := w.source.WorkOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		return sheets.WorkOrderRow(o), nil
	case core.KindEmployee:
		e, err := w.source.Employee(ctx, id)
		if err != nil {
			return nil, err
		}
		return sheets.EmployeeRow(e), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, kind)
	}
}

// Backfill writes every persisted record to the ledger. It recovers from
// events lost while the worker was down. Individual failures are logged and
// counted; the first one is returned after the pass completes.
func (w *MirrorWorker) Backfill(ctx context.Context) (int, error) {
	var (
		written  int
		firstErr error
	)
	upsert := func(kind core.Kind, id int64, row []string) {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.ledger.UpsertRow(ctx, kind, id, row); err != nil {
			w.logger.ErrorContext(ctx, "Backfill write failed",
				log.NewFields().WithRecord(string(kind), id).WithError(err).ToSlice()...)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		written++
	}

	rs, err := w.source.Receipts(ctx)
	if err != nil {
		return written, fmt.Errorf("list receipts: %w", err)
	}
	for _, r := range rs {
		upsert(core.KindReceipt, r.ID, sheets.ReceiptRow(r))
	}

	es, err := w.source.Expenses(ctx)
	if err != nil {
		return written, fmt.Errorf("list expenses: %w", err)
	}
	for _, e := range es {
		upsert(core.KindExpense, e.ID, sheets.ExpenseRow(e))
	}

	ws, err := w.source.WorkOrders(ctx)
	if err != nil {
		return written, fmt.Errorf("list work orders: %w", err)
	}
	for _, o := range ws {
		upsert(core.KindWorkOrder, o.ID, sheets.WorkOrderRow(o))
	}

	emps, err := w.source.Employees(ctx)
	if err != nil {
		return written, fmt.Errorf("list employees: %w", err)
	}
	for _, e := range emps {
		upsert(core.KindEmployee, e.ID, sheets.EmployeeRow(e))
	}

	if err := ctx.Err(); err != nil {
		return written, err
	}
	w.logger.InfoContext(ctx, "Backfill complete", log.FieldRows, written)
	return written, firstErr
}
