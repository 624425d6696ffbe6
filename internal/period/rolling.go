package period

import (
	"strings"

	"oficina/internal/core"
)

// ResolveRolling maps a rolling-window label to a range ending today.
//
// Labels are matched by substring, case-insensitively: "diário" or "daily"
// is today only, "semanal" or "weekly" the last 7 days, "mensal" or
// "monthly" the last 30 days. Anything else is unbounded.
func ResolveRolling(window string, today core.Date) Range {
	w := strings.ToLower(window)
	switch {
	case containsAny(w, "diário", "diario", "daily"):
		return Range{Start: today, End: today}
	case containsAny(w, "semanal", "weekly"):
		return Range{Start: today.AddDays(-6), End: today}
	case containsAny(w, "mensal", "monthly"):
		return Range{Start: today.AddDays(-29), End: today}
	default:
		return Unbounded
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
