package google

import (
	"testing"
)

func TestColumnName(t *testing.T) {
	tests := map[int]string{1: "A", 5: "E", 10: "J", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for n, want := range tests {
		if got := columnName(n); got != want {
			t.Errorf("columnName(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestA1QuotesSheetName(t *testing.T) {
	if got := a1("Notas de serviço", "A:A"); got != "'Notas de serviço'!A:A" {
		t.Errorf("got %q", got)
	}
	if got := a1("Caixa d'água", "A1:B1"); got != "'Caixa d''água'!A1:B1" {
		t.Errorf("got %q", got)
	}
}

func TestFindRow(t *testing.T) {
	values := [][]interface{}{
		{"ID"},
		{},
		{"4"},
		{float64(9)},
		{" 12 "},
	}
	tests := []struct {
		id    int64
		line  int
		found bool
	}{
		{4, 3, true},
		{9, 4, true},
		{12, 5, true},
		{5, 0, false},
	}
	for _, tt := range tests {
		line, found := findRow(values, tt.id)
		if line != tt.line || found != tt.found {
			t.Errorf("findRow(%d) = %d, %v; want %d, %v", tt.id, line, found, tt.line, tt.found)
		}
	}
	if next := nextRow(values); next != 6 {
		t.Errorf("nextRow = %d, want 6", next)
	}
	if next := nextRow(nil); next != 2 {
		t.Errorf("nextRow(empty) = %d, want 2 (line 1 is the header)", next)
	}
}
