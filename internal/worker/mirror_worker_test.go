package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"oficina/internal/amqp"
	"oficina/internal/core"
	"oficina/internal/sheets/memory"
	"oficina/internal/storage"
)

func newTestWorker(t *testing.T) (*MirrorWorker, storage.Repositories, *memory.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "oficina.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	repos := storage.NewRepositories(store)
	ledger := memory.New()
	return NewMirrorWorker(NewRecordSource(repos), ledger, nil), repos, ledger
}

func TestMirrorWorker_HandleRecordEvent(t *testing.T) {
	ctx := context.Background()
	w, repos, ledger := newTestWorker(t)

	id, err := repos.Receipts.Create(ctx, core.Receipt{Amount: core.MustParseAmount("150"), OccurredOn: core.NewDate(2024, 3, 10), Method: core.Pix})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.HandleRecordEvent(ctx, amqp.NewRecordEvent(core.KindReceipt, id, amqp.OpCreated)); err != nil {
		t.Fatal(err)
	}
	row, ok := ledger.Row(core.KindReceipt, id)
	if !ok || row[2] != "150,00" {
		t.Fatalf("row = %v, %v", row, ok)
	}

	r, _ := repos.Receipts.Get(ctx, id)
	r.Amount = core.MustParseAmount("175,50")
	if err := repos.Receipts.Update(ctx, r); err != nil {
		t.Fatal(err)
	}
	// a duplicate or stale event still mirrors the current state
	if err := w.HandleRecordEvent(ctx, amqp.NewRecordEvent(core.KindReceipt, id, amqp.OpCreated)); err != nil {
		t.Fatal(err)
	}
	row, _ = ledger.Row(core.KindReceipt, id)
	if row[2] != "175,50" {
		t.Fatalf("row = %v", row)
	}
	if n := len(ledger.Rows(core.KindReceipt)); n != 1 {
		t.Fatalf("ledger has %d receipt rows, want 1", n)
	}
}

func TestMirrorWorker_DropsUnrecoverableEvents(t *testing.T) {
	ctx := context.Background()
	w, _, ledger := newTestWorker(t)

	tests := []amqp.RecordEvent{
		amqp.NewRecordEvent(core.KindExpense, 404, amqp.OpUpdated),
		amqp.NewRecordEvent(core.Kind("invoice"), 1, amqp.OpCreated),
	}
	for _, ev := range tests {
		if err := w.HandleRecordEvent(ctx, ev); err != nil {
			t.Errorf("event %+v should be dropped, got %v", ev, err)
		}
	}
	if ledger.Writes() != 0 {
		t.Errorf("nothing should be written, got %d writes", ledger.Writes())
	}
}

type failingLedger struct{}

func (failingLedger) UpsertRow(context.Context, core.Kind, int64, []string) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestMirrorWorker_LedgerFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	_, repos, _ := newTestWorker(t)
	w := NewMirrorWorker(NewRecordSource(repos), failingLedger{}, nil)

	id, err := repos.WorkOrders.Create(ctx, core.WorkOrder{ClientName: "Oficina Lima", Description: "Solda", TotalAmount: core.MustParseAmount("90"), OccurredOn: core.NewDate(2024, 3, 2)})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.HandleRecordEvent(ctx, amqp.NewRecordEvent(core.KindWorkOrder, id, amqp.OpCreated)); err == nil {
		t.Fatal("ledger errors must surface so the delivery is requeued")
	}
}

func TestMirrorWorker_Backfill(t *testing.T) {
	ctx := context.Background()
	w, repos, ledger := newTestWorker(t)

	if _, err := repos.Receipts.Create(ctx, core.Receipt{Amount: core.MustParseAmount("10"), OccurredOn: core.NewDate(2024, 1, 1), Method: core.Cash}); err != nil {
		t.Fatal(err)
	}
	if _, err := repos.Expenses.Create(ctx, core.Expense{Amount: core.MustParseAmount("5"), OccurredOn: core.NewDate(2024, 1, 2), Method: core.Pix, Description: "Lixa"}); err != nil {
		t.Fatal(err)
	}
	if _, err := repos.Employees.Create(ctx, core.Employee{FullName: "Ana", TaxID: "1", HiredOn: core.NewDate(2023, 1, 1), PaymentDay: 5}); err != nil {
		t.Fatal(err)
	}

	n, err := w.Backfill(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || ledger.Writes() != 3 {
		t.Fatalf("backfill wrote %d rows (%d ledger writes), want 3", n, ledger.Writes())
	}
	if len(ledger.Rows(core.KindEmployee)) != 1 {
		t.Error("employee row missing")
	}
}
