package report

import (
	"github.com/shopspring/decimal"

	"oficina/internal/core"
)

// Receipts builds the receipts report from already filtered records.
func Receipts(rs []core.Receipt, periodLabel string) Table {
	t := Table{
		Title:   TitleReceipts,
		Period:  periodLabel,
		Columns: []string{"Data", "Valor", "Forma de Pagamento"},
	}
	for _, r := range rs {
		t.Rows = append(t.Rows, []any{r.OccurredOn, r.Amount, r.Method.String()})
		t.Details = append(t.Details, ReceiptDetail{Receipt: r})
	}
	t.Subtotals.Receipts = core.SumReceipts(rs)
	t.Summary = "Total das receitas: " + core.FormatBRL(t.Subtotals.Receipts)
	return t
}

// Expenses builds the expenses report from already filtered records.
func Expenses(es []core.Expense, periodLabel string) Table {
	t := Table{
		Title:   TitleExpenses,
		Period:  periodLabel,
		Columns: []string{"Data", "Descrição", "Valor", "Forma Pagamento", "A prazo?"},
	}
	for _, e := range es {
		t.Rows = append(t.Rows, []any{e.OccurredOn, e.Description, e.Amount, e.Method.String(), yesNo(e.IsDeferred)})
		t.Details = append(t.Details, ExpenseDetail{Expense: e})
	}
	t.Subtotals.Expenses = core.SumExpenses(es)
	t.Summary = "Total das despesas: " + core.FormatBRL(t.Subtotals.Expenses)
	return t
}

// WorkOrders builds the work orders report from already filtered records.
func WorkOrders(ws []core.WorkOrder, periodLabel string) Table {
	t := Table{
		Title:   TitleWorkOrders,
		Period:  periodLabel,
		Columns: []string{"Cliente", "Valor", "Situação", "Data"},
	}
	for _, w := range ws {
		t.Rows = append(t.Rows, []any{w.ClientName, w.TotalAmount, w.Status(), w.OccurredOn})
		t.Details = append(t.Details, WorkOrderDetail{WorkOrder: w})
	}
	t.Subtotals.WorkOrders = core.SumWorkOrders(ws)
	t.Summary = "Total das notas de serviço: " + core.FormatBRL(t.Subtotals.WorkOrders)
	return t
}

// Selection toggles the kinds included in the combined report.
type Selection struct {
	Receipts   bool
	Expenses   bool
	WorkOrders bool
}

// SelectAll includes every kind.
var SelectAll = Selection{Receipts: true, Expenses: true, WorkOrders: true}

// CombinedInput holds filtered records plus the global balance for the headline.
type CombinedInput struct {
	Receipts   []core.Receipt
	Expenses   []core.Expense
	WorkOrders []core.WorkOrder
	Include    Selection
	Period     string
	Balance    decimal.Decimal
}

// Combined builds the general report: receipts, then expenses, then work
// orders, each section in store order. Expense amounts are sign-flipped for
// display. The summary shows the global balance given in the input, not a
// figure derived from the listed rows.
func Combined(in CombinedInput) Table {
	t := Table{
		Title:   TitleCombined,
		Period:  in.Period,
		Columns: []string{"Tipo", "ID", "Data / Situação", "Descrição", "Valor"},
		Summary: "Saldo (Receitas - Despesas): " + core.FormatBRL(in.Balance),
	}

	if in.Include.Receipts {
		for _, r := range in.Receipts {
			t.Rows = append(t.Rows, []any{
				core.KindReceipt.Label(), r.ID, r.OccurredOn,
				"Recebimento (" + r.Method.String() + ")", r.Amount,
			})
			t.Details = append(t.Details, ReceiptDetail{Receipt: r})
		}
		t.Subtotals.Receipts = core.SumReceipts(in.Receipts)
	}

	if in.Include.Expenses {
		for _, e := range in.Expenses {
			t.Rows = append(t.Rows, []any{
				core.KindExpense.Label(), e.ID, e.OccurredOn,
				e.Description, e.Amount.Abs().Neg(),
			})
			t.Details = append(t.Details, ExpenseDetail{Expense: e})
		}
		t.Subtotals.Expenses = core.SumExpenses(in.Expenses)
	}

	if in.Include.WorkOrders {
		for _, w := range in.WorkOrders {
			t.Rows = append(t.Rows, []any{
				core.KindWorkOrder.Label(), w.ID, workOrderSituation(w),
				w.Description, w.TotalAmount,
			})
			t.Details = append(t.Details, WorkOrderDetail{WorkOrder: w})
		}
		t.Subtotals.WorkOrders = core.SumWorkOrders(in.WorkOrders)
	}

	return t
}

func workOrderSituation(w core.WorkOrder) string {
	if w.IsPaid {
		return w.OccurredOn.BR() + " - Paga"
	}
	return w.OccurredOn.BR() + " - Em aberto"
}
