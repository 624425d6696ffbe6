// Package sheets defines the ledger mirror port and the row layout shared
// by its adapters.
package sheets

import (
	"context"
	"strconv"

	"oficina/internal/core"
)

// LedgerWriter writes one row per record, keyed by kind and record id.
// Writing the same record twice replaces the previous row.
type LedgerWriter interface {
	UpsertRow(ctx context.Context, kind core.Kind, recordID int64, row []string) (rowRef string, err error)
}

var sheetNames = map[core.Kind]string{
	core.KindReceipt:   "Receitas",
	core.KindExpense:   "Despesas",
	core.KindWorkOrder: "Notas de serviço",
	core.KindEmployee:  "Funcionários",
}

var headers = map[core.Kind][]string{
	core.KindReceipt:   {"ID", "Data", "Valor", "Forma de Pagamento", "Comprovante"},
	core.KindExpense:   {"ID", "Data", "Descrição", "Valor", "Forma de Pagamento", "A prazo?", "Vencimento", "Comprovante"},
	core.KindWorkOrder: {"ID", "Data", "Cliente", "Descrição", "Valor", "Situação", "Forma de Pagamento"},
	core.KindEmployee:  {"ID", "Nome", "CPF", "Telefone", "Função", "Admissão", "Dia de Pagamento", "Mês do 13º", "Mês de Férias", "Demissão"},
}

// SheetName returns the ledger sheet holding records of kind.
func SheetName(kind core.Kind) string {
	return sheetNames[kind]
}

// Header returns the column titles of kind's sheet. Column A is always the record id.
func Header(kind core.Kind) []string {
	return append([]string(nil), headers[kind]...)
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

func month(m int) string {
	if m == 0 {
		return ""
	}
	return strconv.Itoa(m)
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

func ReceiptRow(r core.Receipt) []string {
	return []string{id(r.ID), r.OccurredOn.BR(), core.FormatDecimalComma(r.Amount), r.Method.String(), r.ReceiptPath}
}

func ExpenseRow(e core.Expense) []string {
	return []string{
		id(e.ID), e.OccurredOn.BR(), e.Description, core.FormatDecimalComma(e.Amount),
		e.Method.String(), yesNo(e.IsDeferred), e.DueOn.BR(), e.ReceiptPath,
	}
}

func WorkOrderRow(w core.WorkOrder) []string {
	return []string{
		id(w.ID), w.OccurredOn.BR(), w.ClientName, w.Description,
		core.FormatDecimalComma(w.TotalAmount), w.Status(), w.Method.String(),
	}
}

func EmployeeRow(e core.Employee) []string {
	return []string{
		id(e.ID), e.FullName, e.TaxID, e.Phone, e.Role, e.HiredOn.BR(),
		strconv.Itoa(e.PaymentDay), month(e.ThirteenthSalaryMonth), month(e.VacationMonth), e.TerminatedOn.BR(),
	}
}
