package google

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"oficina/internal/core"
)

// fakeSheets keeps a grid per sheet and understands the ranges the client sends.
type fakeSheets struct {
	grids     map[string][][]any
	reads     int
	updateErr error
}

func newFakeSheets(titles ...string) *fakeSheets {
	f := &fakeSheets{grids: map[string][][]any{}}
	for _, t := range titles {
		f.grids[t] = nil
	}
	return f
}

var rangePattern = regexp.MustCompile(`^'(.+)'!([A-Z]+)(\d*):([A-Z]+)(\d*)$`)

func splitRange(t *testing.T, rng string) (sheet string, line int) {
	m := rangePattern.FindStringSubmatch(rng)
	if m == nil {
		t.Fatalf("unexpected range %q", rng)
	}
	sheet = strings.ReplaceAll(m[1], "''", "'")
	if m[3] != "" {
		line, _ = strconv.Atoi(m[3])
	}
	return sheet, line
}

type fakeAPI struct {
	t *testing.T
	*fakeSheets
}

func (f fakeAPI) sheetTitles(context.Context, string) ([]string, error) {
	var out []string
	for k := range f.grids {
		out = append(out, k)
	}
	return out, nil
}

func (f fakeAPI) addSheet(_ context.Context, _ string, title string) error {
	f.grids[title] = nil
	return nil
}

func (f fakeAPI) column(_ context.Context, _ string, rng string) ([][]any, error) {
	f.reads++
	sheet, line := splitRange(f.t, rng)
	grid := f.grids[sheet]
	var out [][]any
	for i, row := range grid {
		if line > 0 && i+1 != line {
			continue
		}
		if len(row) == 0 {
			out = append(out, []any{})
			continue
		}
		out = append(out, []any{row[0]})
	}
	return out, nil
}

func (f fakeAPI) update(_ context.Context, _ string, rng string, values [][]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	sheet, line := splitRange(f.t, rng)
	grid := f.grids[sheet]
	for len(grid) < line {
		grid = append(grid, nil)
	}
	grid[line-1] = values[0]
	f.grids[sheet] = grid
	return nil
}

func newTestClient(t *testing.T, sheets *fakeSheets) *Client {
	return newClient(fakeAPI{t: t, fakeSheets: sheets}, Config{SpreadsheetID: "test"}, nil)
}

func TestClient_UpsertRow_AppendsThenReplaces(t *testing.T) {
	ctx := context.Background()
	sheets := newFakeSheets()
	c := newTestClient(t, sheets)

	ref, err := c.UpsertRow(ctx, core.KindReceipt, 7, []string{"7", "10/03/2024", "150,00", "Pix", ""})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "'Receitas'!A2:E2" {
		t.Errorf("ref = %q", ref)
	}
	if _, err := c.UpsertRow(ctx, core.KindReceipt, 9, []string{"9", "11/03/2024", "20,00", "Dinheiro", ""}); err != nil {
		t.Fatal(err)
	}
	ref, err = c.UpsertRow(ctx, core.KindReceipt, 7, []string{"7", "10/03/2024", "175,50", "Pix", ""})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "'Receitas'!A2:E2" {
		t.Errorf("update should reuse the record's line, got %q", ref)
	}

	grid := sheets.grids["Receitas"]
	if len(grid) != 3 {
		t.Fatalf("grid has %d lines, want header + 2", len(grid))
	}
	if grid[0][0] != "ID" || grid[1][2] != "175,50" || grid[2][0] != "9" {
		t.Errorf("grid = %v", grid)
	}
}

func TestClient_UpsertRow_FindsExistingLine(t *testing.T) {
	ctx := context.Background()
	sheets := newFakeSheets("Despesas")
	sheets.grids["Despesas"] = [][]any{
		{"ID", "Data"},
		{"3", "01/03/2024"},
		{"12", "02/03/2024"},
	}
	c := newTestClient(t, sheets)

	ref, err := c.UpsertRow(ctx, core.KindExpense, 12, []string{"12", "05/03/2024"})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "'Despesas'!A3:B3" {
		t.Errorf("ref = %q", ref)
	}
	if sheets.grids["Despesas"][2][1] != "05/03/2024" {
		t.Errorf("grid = %v", sheets.grids["Despesas"])
	}
}

func TestClient_RowCacheAvoidsRereads(t *testing.T) {
	ctx := context.Background()
	sheets := newFakeSheets()
	c := newTestClient(t, sheets)

	if _, err := c.UpsertRow(ctx, core.KindWorkOrder, 1, []string{"1"}); err != nil {
		t.Fatal(err)
	}
	reads := sheets.reads
	if _, err := c.UpsertRow(ctx, core.KindWorkOrder, 1, []string{"1"}); err != nil {
		t.Fatal(err)
	}
	if sheets.reads != reads {
		t.Errorf("cached row should skip the id scan: %d reads, want %d", sheets.reads, reads)
	}
	if _, ok := c.rows.Get(rowKey(core.KindWorkOrder, 1)); !ok {
		t.Error("row index should be cached")
	}
}

func TestClient_UpsertRow_WriteFailureDropsCache(t *testing.T) {
	ctx := context.Background()
	sheets := newFakeSheets()
	c := newTestClient(t, sheets)

	if _, err := c.UpsertRow(ctx, core.KindEmployee, 4, []string{"4"}); err != nil {
		t.Fatal(err)
	}
	sheets.updateErr = errors.New("quota exceeded")
	if _, err := c.UpsertRow(ctx, core.KindEmployee, 4, []string{"4"}); err == nil {
		t.Fatal("expected write error")
	}
	if _, ok := c.rows.Get(rowKey(core.KindEmployee, 4)); ok {
		t.Error("failed write should invalidate the cached line")
	}
}

func TestClient_UpsertRow_Rejects(t *testing.T) {
	c := newTestClient(t, newFakeSheets())
	if _, err := c.UpsertRow(context.Background(), core.Kind("invoice"), 1, nil); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := c.UpsertRow(context.Background(), core.KindReceipt, 0, nil); !errors.Is(err, core.ErrIdentityRequired) {
		t.Errorf("err = %v", err)
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("err = %v", err)
	}
}

func TestNew_InvalidCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "test", CredentialsJSON: "invalid-json"}, nil)
	if err == nil {
		t.Fatal("expected error with invalid JSON")
	}
}
