// Package services provides business logic and orchestration services.
//
// Services validate input, persist through the storage repositories and,
// when a publisher is configured, announce each successful write as a
// record event. Publication failures never fail the write.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"oficina/internal/amqp"
	"oficina/internal/core"
	"oficina/internal/log"
	"oficina/internal/period"
	"oficina/internal/report"
)

type ReceiptStore interface {
	Create(ctx context.Context, r core.Receipt) (int64, error)
	Update(ctx context.Context, r core.Receipt) error
	List(ctx context.Context) ([]core.Receipt, error)
	Total(ctx context.Context) (decimal.Decimal, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, e core.Expense) (int64, error)
	Update(ctx context.Context, e core.Expense) error
	List(ctx context.Context) ([]core.Expense, error)
	Total(ctx context.Context) (decimal.Decimal, error)
}

type WorkOrderStore interface {
	Create(ctx context.Context, w core.WorkOrder) (int64, error)
	Update(ctx context.Context, w core.WorkOrder) error
	MarkPaid(ctx context.Context, id int64, method core.PaymentMethod) error
	List(ctx context.Context) ([]core.WorkOrder, error)
}

// EventPublisher announces record changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev amqp.RecordEvent) error
}

// FinanceService orchestrates receipts, expenses and work orders.
type FinanceService struct {
	receipts   ReceiptStore
	expenses   ExpenseStore
	workOrders WorkOrderStore
	publisher  EventPublisher
	logger     *log.Logger
	now        func() time.Time
}

// NewFinanceService wires the repositories. publisher may be nil.
func NewFinanceService(receipts ReceiptStore, expenses ExpenseStore, workOrders WorkOrderStore, publisher EventPublisher, logger *log.Logger) *FinanceService {
	if logger == nil {
		logger = log.Discard()
	}
	return &FinanceService{
		receipts:   receipts,
		expenses:   expenses,
		workOrders: workOrders,
		publisher:  publisher,
		logger:     logger.WithComponent(log.ComponentFinance),
		now:        time.Now,
	}
}

// WithClock replaces the clock used to default record dates to today.
func (s *FinanceService) WithClock(now func() time.Time) *FinanceService {
	s.now = now
	return s
}

func (s *FinanceService) today() core.Date {
	return core.DateOf(s.now())
}

// RegisterReceipt records money received. A zero date means today.
func (s *FinanceService) RegisterReceipt(ctx context.Context, amount decimal.Decimal, method core.PaymentMethod, date core.Date, receiptPath string) (int64, error) {
	if date.IsEmpty() {
		date = s.today()
	}
	r := core.Receipt{Amount: amount, OccurredOn: date, Method: method, ReceiptPath: receiptPath}
	if err := r.Validate(); err != nil {
		return 0, fmt.Errorf("validate receipt: %w", err)
	}

	id, err := s.receipts.Create(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("save receipt: %w", err)
	}
	s.publish(ctx, core.KindReceipt, id, amqp.OpCreated)
	return id, nil
}

// RegisterExpense records an immediate (non-deferred) expense. A zero date means today.
func (s *FinanceService) RegisterExpense(ctx context.Context, amount decimal.Decimal, description string, method core.PaymentMethod, date core.Date, receiptPath string) (int64, error) {
	if date.IsEmpty() {
		date = s.today()
	}
	return s.createExpense(ctx, core.Expense{
		Amount:      amount,
		OccurredOn:  date,
		Method:      method,
		Description: description,
		ReceiptPath: receiptPath,
	})
}

// RegisterDeferredExpense records an expense payable on dueDate. A zero
// launchDate means today; a zero dueDate is rejected.
func (s *FinanceService) RegisterDeferredExpense(ctx context.Context, amount decimal.Decimal, description string, method core.PaymentMethod, dueDate, launchDate core.Date, receiptPath string) (int64, error) {
	if launchDate.IsEmpty() {
		launchDate = s.today()
	}
	return s.createExpense(ctx, core.Expense{
		Amount:      amount,
		OccurredOn:  launchDate,
		Method:      method,
		Description: description,
		IsDeferred:  true,
		DueOn:       dueDate,
		ReceiptPath: receiptPath,
	})
}

func (s *FinanceService) createExpense(ctx context.Context, e core.Expense) (int64, error) {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validate expense: %w", err)
	}

	id, err := s.expenses.Create(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	s.publish(ctx, core.KindExpense, id, amqp.OpCreated)
	return id, nil
}

// CreateWorkOrder records a service note. A paid work order needs a method.
func (s *FinanceService) CreateWorkOrder(ctx context.Context, client, description string, total decimal.Decimal, date core.Date, isPaid bool, method core.PaymentMethod) (int64, error) {
	if date.IsEmpty() {
		date = s.today()
	}
	w := core.WorkOrder{
		ClientName:  client,
		Description: description,
		TotalAmount: total,
		OccurredOn:  date,
		IsPaid:      isPaid,
		Method:      method,
	}
	if err := w.Validate(); err != nil {
		return 0, fmt.Errorf("validate work order: %w", err)
	}

	id, err := s.workOrders.Create(ctx, w)
	if err != nil {
		return 0, fmt.Errorf("save work order: %w", err)
	}
	s.publish(ctx, core.KindWorkOrder, id, amqp.OpCreated)
	return id, nil
}

// UpdateReceipt overwrites a persisted receipt.
func (s *FinanceService) UpdateReceipt(ctx context.Context, r core.Receipt) error {
	if r.ID == 0 {
		return core.ErrIdentityRequired
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validate receipt: %w", err)
	}
	if err := s.receipts.Update(ctx, r); err != nil {
		return err
	}
	s.publish(ctx, core.KindReceipt, r.ID, amqp.OpUpdated)
	return nil
}

// UpdateExpense overwrites a persisted expense. Clearing IsDeferred drops the due date.
func (s *FinanceService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if e.ID == 0 {
		return core.ErrIdentityRequired
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate expense: %w", err)
	}
	if err := s.expenses.Update(ctx, e); err != nil {
		return err
	}
	s.publish(ctx, core.KindExpense, e.ID, amqp.OpUpdated)
	return nil
}

// UpdateWorkOrder overwrites a persisted work order.
func (s *FinanceService) UpdateWorkOrder(ctx context.Context, w core.WorkOrder) error {
	if w.ID == 0 {
		return core.ErrIdentityRequired
	}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("validate work order: %w", err)
	}
	if err := s.workOrders.Update(ctx, w); err != nil {
		return err
	}
	s.publish(ctx, core.KindWorkOrder, w.ID, amqp.OpUpdated)
	return nil
}

// MarkWorkOrderPaid settles a work order with the given method.
func (s *FinanceService) MarkWorkOrderPaid(ctx context.Context, id int64, method core.PaymentMethod) error {
	if id == 0 {
		return core.ErrIdentityRequired
	}
	if method == "" {
		return core.ErrMissingPaymentMethod
	}
	if !method.IsValid() {
		return core.ErrInvalidMethod
	}
	if err := s.workOrders.MarkPaid(ctx, id, method); err != nil {
		return err
	}
	s.publish(ctx, core.KindWorkOrder, id, amqp.OpUpdated)
	return nil
}

func (s *FinanceService) ListReceipts(ctx context.Context) ([]core.Receipt, error) {
	return s.receipts.List(ctx)
}

func (s *FinanceService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.expenses.List(ctx)
}

func (s *FinanceService) ListWorkOrders(ctx context.Context) ([]core.WorkOrder, error) {
	return s.workOrders.List(ctx)
}

// ListReceiptsInRange returns receipts dated inside r, bounds included.
func (s *FinanceService) ListReceiptsInRange(ctx context.Context, r period.Range) ([]core.Receipt, error) {
	all, err := s.receipts.List(ctx)
	if err != nil {
		return nil, err
	}
	return report.FilterByRange(all, report.ReceiptDate, r), nil
}

// ListExpensesInRange returns expenses launched inside r, bounds included.
func (s *FinanceService) ListExpensesInRange(ctx context.Context, r period.Range) ([]core.Expense, error) {
	all, err := s.expenses.List(ctx)
	if err != nil {
		return nil, err
	}
	return report.FilterByRange(all, report.ExpenseDate, r), nil
}

// ListWorkOrdersInRange returns work orders dated inside r, bounds included.
func (s *FinanceService) ListWorkOrdersInRange(ctx context.Context, r period.Range) ([]core.WorkOrder, error) {
	all, err := s.workOrders.List(ctx)
	if err != nil {
		return nil, err
	}
	return report.FilterByRange(all, report.WorkOrderDate, r), nil
}

// ComputeBalance returns all receipts minus all expenses, ignoring any filter.
func (s *FinanceService) ComputeBalance(ctx context.Context) (decimal.Decimal, error) {
	b, err := s.Balance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Net(), nil
}

// Balance returns the global totals behind ComputeBalance.
func (s *FinanceService) Balance(ctx context.Context) (core.Balance, error) {
	in, err := s.receipts.Total(ctx)
	if err != nil {
		return core.Balance{}, fmt.Errorf("total receipts: %w", err)
	}
	out, err := s.expenses.Total(ctx)
	if err != nil {
		return core.Balance{}, fmt.Errorf("total expenses: %w", err)
	}
	return core.Balance{Receipts: in, Expenses: out}, nil
}

func (s *FinanceService) publish(ctx context.Context, kind core.Kind, id int64, op amqp.Operation) {
	publish(ctx, s.publisher, s.logger, kind, id, op)
}

// publish sends a record event if a publisher is configured. Errors are
// logged only: the record is already saved locally.
func publish(ctx context.Context, p EventPublisher, logger *log.Logger, kind core.Kind, id int64, op amqp.Operation) {
	fields := log.NewFields().WithOperation(string(op)).WithRecord(string(kind), id)
	if p == nil {
		logger.DebugContext(ctx, "No event publisher configured, skipping record event", fields.ToSlice()...)
		return
	}
	if err := p.PublishRecordEvent(ctx, amqp.NewRecordEvent(kind, id, op)); err != nil {
		logger.ErrorContext(ctx, "Failed to publish record event", fields.WithError(err).ToSlice()...)
		return
	}
	logger.InfoContext(ctx, "Record event published", fields.ToSlice()...)
}
