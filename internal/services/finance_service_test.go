package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"oficina/internal/amqp"
	"oficina/internal/core"
	"oficina/internal/period"
	"oficina/internal/storage"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []amqp.RecordEvent
	err    error
}

func (p *fakePublisher) PublishRecordEvent(_ context.Context, ev amqp.RecordEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func newTestRepositories(t *testing.T) storage.Repositories {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "oficina.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return storage.NewRepositories(store)
}

func newTestFinance(t *testing.T, pub EventPublisher) (*FinanceService, storage.Repositories) {
	t.Helper()
	repos := newTestRepositories(t)
	svc := NewFinanceService(repos.Receipts, repos.Expenses, repos.WorkOrders, pub, nil).
		WithClock(func() time.Time { return fixedNow })
	return svc, repos
}

func TestFinanceService_RegisterReceipt(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, repos := newTestFinance(t, pub)

	id, err := svc.RegisterReceipt(ctx, core.MustParseAmount("150,00"), core.Pix, core.Date{}, "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := repos.Receipts.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !got.OccurredOn.Equal(core.NewDate(2024, 3, 15)) {
		t.Errorf("zero date should default to today, got %s", got.OccurredOn)
	}
	if pub.count() != 1 || pub.events[0].Kind != core.KindReceipt || pub.events[0].RecordID != id || pub.events[0].Operation != amqp.OpCreated {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestFinanceService_ValidationRejectsBeforeWrite(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, repos := newTestFinance(t, pub)
	march := core.NewDate(2024, 3, 10)

	tests := []struct {
		name string
		fn   func() error
		want error
	}{
		{"zero receipt", func() error {
			_, err := svc.RegisterReceipt(ctx, core.MustParseAmount("0"), core.Pix, march, "")
			return err
		}, core.ErrInvalidAmount},
		{"unknown method", func() error {
			_, err := svc.RegisterReceipt(ctx, core.MustParseAmount("10"), core.PaymentMethod("Bitcoin"), march, "")
			return err
		}, core.ErrInvalidMethod},
		{"blank description", func() error {
			_, err := svc.RegisterExpense(ctx, core.MustParseAmount("10"), "   ", core.Cash, march, "")
			return err
		}, core.ErrEmptyDescription},
		{"deferred without due date", func() error {
			_, err := svc.RegisterDeferredExpense(ctx, core.MustParseAmount("10"), "Aço", core.BankSlip, core.Date{}, march, "")
			return err
		}, core.ErrMissingDueDate},
		{"work order without client", func() error {
			_, err := svc.CreateWorkOrder(ctx, "", "Solda", core.MustParseAmount("90"), march, false, "")
			return err
		}, core.ErrEmptyClient},
		{"paid work order without method", func() error {
			_, err := svc.CreateWorkOrder(ctx, "Oficina Lima", "Solda", core.MustParseAmount("90"), march, true, "")
			return err
		}, core.ErrMissingPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	rs, _ := repos.Receipts.List(ctx)
	es, _ := repos.Expenses.List(ctx)
	ws, _ := repos.WorkOrders.List(ctx)
	if len(rs)+len(es)+len(ws) != 0 || pub.count() != 0 {
		t.Fatalf("rejected input left state behind: %d receipts, %d expenses, %d work orders, %d events", len(rs), len(es), len(ws), pub.count())
	}
}

func TestFinanceService_DeferredExpense(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestFinance(t, nil)

	id, err := svc.RegisterDeferredExpense(ctx, core.MustParseAmount("40"), " Conta de luz ", core.BankSlip, core.NewDate(2024, 4, 5), core.Date{}, "")
	if err != nil {
		t.Fatal(err)
	}
	e, _ := repos.Expenses.Get(ctx, id)
	if !e.IsDeferred || !e.DueOn.Equal(core.NewDate(2024, 4, 5)) || !e.OccurredOn.Equal(core.NewDate(2024, 3, 15)) {
		t.Fatalf("deferred expense = %+v", e)
	}
	if e.Description != "Conta de luz" {
		t.Errorf("description should be trimmed, got %q", e.Description)
	}

	e.IsDeferred = false
	if err := svc.UpdateExpense(ctx, e); err != nil {
		t.Fatal(err)
	}
	e, _ = repos.Expenses.Get(ctx, id)
	if e.IsDeferred || !e.DueOn.IsEmpty() {
		t.Fatalf("clearing deferred should drop the due date: %+v", e)
	}
}

func TestFinanceService_UpdateWithoutIdentity(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _ := newTestFinance(t, pub)

	r := core.Receipt{Amount: core.MustParseAmount("10"), OccurredOn: core.NewDate(2024, 3, 1), Method: core.Cash}
	if err := svc.UpdateReceipt(ctx, r); !errors.Is(err, core.ErrIdentityRequired) {
		t.Errorf("UpdateReceipt err = %v", err)
	}
	if err := svc.UpdateExpense(ctx, core.Expense{}); !errors.Is(err, core.ErrIdentityRequired) {
		t.Errorf("UpdateExpense err = %v", err)
	}
	if err := svc.UpdateWorkOrder(ctx, core.WorkOrder{}); !errors.Is(err, core.ErrIdentityRequired) {
		t.Errorf("UpdateWorkOrder err = %v", err)
	}
	if err := svc.MarkWorkOrderPaid(ctx, 0, core.Pix); !errors.Is(err, core.ErrIdentityRequired) {
		t.Errorf("MarkWorkOrderPaid err = %v", err)
	}
	if pub.count() != 0 {
		t.Errorf("no event expected, got %d", pub.count())
	}
}

func TestFinanceService_UpdateMissingRecord(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFinance(t, nil)

	r := core.Receipt{ID: 99, Amount: core.MustParseAmount("10"), OccurredOn: core.NewDate(2024, 3, 1), Method: core.Cash}
	if err := svc.UpdateReceipt(ctx, r); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFinanceService_PublishFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("connection refused")}
	svc, repos := newTestFinance(t, pub)

	id, err := svc.CreateWorkOrder(ctx, "Oficina Lima", "Retífica", core.MustParseAmount("320"), core.NewDate(2024, 3, 2), false, "")
	if err != nil {
		t.Fatalf("publish failure should not fail the write: %v", err)
	}
	if _, err := repos.WorkOrders.Get(ctx, id); err != nil {
		t.Fatal(err)
	}

	pub.err = nil
	if err := svc.MarkWorkOrderPaid(ctx, id, core.DebitCard); err != nil {
		t.Fatal(err)
	}
	w, _ := repos.WorkOrders.Get(ctx, id)
	if !w.IsPaid || w.Method != core.DebitCard {
		t.Fatalf("work order = %+v", w)
	}
	if pub.count() != 1 || pub.events[0].Operation != amqp.OpUpdated {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestFinanceService_RangeAndBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFinance(t, nil)

	mustID := func(id int64, err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	mustID(svc.RegisterReceipt(ctx, core.MustParseAmount("150"), core.Pix, core.NewDate(2024, 3, 10), ""))
	mustID(svc.RegisterReceipt(ctx, core.MustParseAmount("500"), core.Cash, core.NewDate(2024, 2, 29), ""))
	mustID(svc.RegisterReceipt(ctx, core.MustParseAmount("20"), core.Cash, core.NewDate(2024, 3, 31), ""))
	mustID(svc.RegisterExpense(ctx, core.MustParseAmount("40"), "Energia", core.BankSlip, core.NewDate(2024, 3, 12), ""))

	march, err := period.Resolve(period.Month, core.NewDate(2024, 3, 1))
	if err != nil {
		t.Fatal(err)
	}
	rs, err := svc.ListReceiptsInRange(ctx, march)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 2 {
		t.Fatalf("march receipts = %d, want 2 (bounds inclusive)", len(rs))
	}

	feb, _ := period.Resolve(period.Month, core.NewDate(2024, 2, 1))
	febRs, _ := svc.ListReceiptsInRange(ctx, feb)
	if len(febRs) != 1 {
		t.Fatalf("february receipts = %d, want 1", len(febRs))
	}

	balance, err := svc.ComputeBalance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(core.MustParseAmount("630")) {
		t.Fatalf("balance = %s, want 630", balance)
	}
}
