package memory

import (
	"context"
	"errors"
	"testing"

	"oficina/internal/core"
)

func TestStore_UpsertReplacesRow(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.UpsertRow(ctx, core.KindReceipt, 2, []string{"2", "10/03/2024", "150,00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertRow(ctx, core.KindReceipt, 1, []string{"1", "01/03/2024", "10,00"}); err != nil {
		t.Fatal(err)
	}
	ref, err := s.UpsertRow(ctx, core.KindReceipt, 2, []string{"2", "10/03/2024", "175,50"})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "mem:receipt:2" {
		t.Errorf("ref = %q", ref)
	}

	rows := s.Rows(core.KindReceipt)
	if len(rows) != 2 || rows[0][0] != "1" || rows[1][2] != "175,50" {
		t.Fatalf("rows = %v", rows)
	}
	if s.Writes() != 3 {
		t.Errorf("writes = %d", s.Writes())
	}
	if _, ok := s.Row(core.KindExpense, 2); ok {
		t.Error("kinds must not share rows")
	}
}

func TestStore_Rejects(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.UpsertRow(ctx, core.Kind("invoice"), 1, nil); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := s.UpsertRow(ctx, core.KindExpense, 0, nil); !errors.Is(err, core.ErrIdentityRequired) {
		t.Errorf("err = %v", err)
	}
}
