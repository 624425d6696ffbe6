package core

import "strings"

// Kind names a record type. It travels in events and selects report sections.
type Kind string

const (
	KindReceipt   Kind = "receipt"
	KindExpense   Kind = "expense"
	KindWorkOrder Kind = "work_order"
	KindEmployee  Kind = "employee"
)

// Label returns the Portuguese label used in combined reports.
func (k Kind) Label() string {
	switch k {
	case KindReceipt:
		return "Receita"
	case KindExpense:
		return "Despesa"
	case KindWorkOrder:
		return "Nota de serviço"
	case KindEmployee:
		return "Funcionário"
	default:
		return string(k)
	}
}

var kindAliases = map[string]Kind{
	"receipt":     KindReceipt,
	"receipts":    KindReceipt,
	"receita":     KindReceipt,
	"receitas":    KindReceipt,
	"expense":     KindExpense,
	"expenses":    KindExpense,
	"despesa":     KindExpense,
	"despesas":    KindExpense,
	"work_order":  KindWorkOrder,
	"work_orders": KindWorkOrder,
	"workorder":   KindWorkOrder,
	"nota":        KindWorkOrder,
	"notas":       KindWorkOrder,
	"employee":    KindEmployee,
	"employees":   KindEmployee,
	"funcionario": KindEmployee,
}

// ParseKind maps a kind name, English or Portuguese, singular or plural.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}
