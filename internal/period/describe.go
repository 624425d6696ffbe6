package period

import (
	"fmt"

	"oficina/internal/core"
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthName returns the Portuguese name of month m (1-12).
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// Describe renders a period selection the way report headers show it.
func Describe(mode Mode, ref core.Date) string {
	switch mode {
	case Day:
		return "Exato: " + ref.BR()
	case Month:
		return fmt.Sprintf("Todo o mês: %s %d", MonthName(ref.Month()), ref.Year())
	case Year:
		return fmt.Sprintf("Todo o ano: %d", ref.Year())
	default:
		return "Todos os registros"
	}
}
