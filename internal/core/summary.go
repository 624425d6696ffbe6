package core

import "github.com/shopspring/decimal"

// Balance is the global financial position: all receipts minus all expenses.
type Balance struct {
	Receipts decimal.Decimal
	Expenses decimal.Decimal
}

// Net returns receipts minus expenses.
func (b Balance) Net() decimal.Decimal {
	return b.Receipts.Sub(b.Expenses)
}

// SumReceipts totals receipt amounts.
func SumReceipts(rs []Receipt) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rs {
		total = total.Add(r.Amount)
	}
	return total
}

// SumExpenses totals expense amounts.
func SumExpenses(es []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range es {
		total = total.Add(e.Amount)
	}
	return total
}

// SumWorkOrders totals work order amounts regardless of payment status.
func SumWorkOrders(ws []WorkOrder) decimal.Decimal {
	total := decimal.Zero
	for _, w := range ws {
		total = total.Add(w.TotalAmount)
	}
	return total
}

// ComputeBalance derives the balance from complete record sets.
func ComputeBalance(rs []Receipt, es []Expense) Balance {
	return Balance{Receipts: SumReceipts(rs), Expenses: SumExpenses(es)}
}
