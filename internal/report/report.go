// Package report builds presentation-neutral report tables from records.
//
// A Table carries typed cells (decimal amounts, dates, strings) so that each
// exporter can render them natively. Rows respect the active period filter;
// the combined report's headline balance does not.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"oficina/internal/core"
	"oficina/internal/period"
)

const (
	TitleReceipts   = "Relatório de Receitas"
	TitleExpenses   = "Relatório de Despesas"
	TitleWorkOrders = "Relatório de Notas de Serviço"
	TitleCombined   = "Relatório Geral"
)

// Table is a titled, typed grid ready for export.
//
// Cells hold decimal.Decimal, core.Date, time.Time, int64, string or nil.
type Table struct {
	Title     string
	Period    string
	Summary   string
	Columns   []string
	Rows      [][]any
	Details   []Detail // parallel to Rows
	Subtotals Subtotals
}

// Subtotals are sums over the filtered rows, per included kind.
type Subtotals struct {
	Receipts   decimal.Decimal
	Expenses   decimal.Decimal
	WorkOrders decimal.Decimal
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Detail is the full record behind a row.
type Detail interface {
	Kind() core.Kind
	RecordID() int64
	OccurredOn() core.Date
}

type ReceiptDetail struct{ Receipt core.Receipt }
type ExpenseDetail struct{ Expense core.Expense }
type WorkOrderDetail struct{ WorkOrder core.WorkOrder }

func (d ReceiptDetail) Kind() core.Kind { return core.KindReceipt }
func (d ReceiptDetail) RecordID() int64 { return d.Receipt.ID }
func (d ReceiptDetail) OccurredOn() core.Date { return d.Receipt.OccurredOn }
func (d ExpenseDetail) Kind() core.Kind { return core.KindExpense }
func (d ExpenseDetail) RecordID() int64 { return d.Expense.ID }
func (d ExpenseDetail) OccurredOn() core.Date { return d.Expense.OccurredOn }
func (d WorkOrderDetail) Kind() core.Kind { return core.KindWorkOrder }
func (d WorkOrderDetail) RecordID() int64 { return d.WorkOrder.ID }
func (d WorkOrderDetail) OccurredOn() core.Date { return d.WorkOrder.OccurredOn }

// FilterByRange keeps the items whose date falls inside r, preserving order.
func FilterByRange[T any](items []T, dateOf func(T) core.Date, r period.Range) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if r.Contains(dateOf(it)) {
			out = append(out, it)
		}
	}
	return out
}

func ReceiptDate(r core.Receipt) core.Date { return r.OccurredOn }
func ExpenseDate(e core.Expense) core.Date { return e.OccurredOn }
func WorkOrderDate(w core.WorkOrder) core.Date { return w.OccurredOn }

// SortByDate reorders rows (and their details) by record date, stable on ties.
func SortByDate(t *Table) {
	idx := make([]int, len(t.Rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return t.Details[idx[a]].OccurredOn().Before(t.Details[idx[b]].OccurredOn())
	})
	rows := make([][]any, len(idx))
	details := make([]Detail, len(idx))
	for i, j := range idx {
		rows[i] = t.Rows[j]
		details[i] = t.Details[j]
	}
	t.Rows, t.Details = rows, details
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
