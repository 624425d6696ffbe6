// Package period turns a period selection into an inclusive date range.
//
// Each selection mode (day, month, year, all) has its own strategy that
// encapsulates how a reference date maps to a range.
package period

import (
	"errors"
	"fmt"
	"strings"

	"oficina/internal/core"
)

const (
	Day   Mode = "day"
	Month Mode = "month"
	Year  Mode = "year"
	All   Mode = "all"
)

var ErrUnknownMode = errors.New("unknown period mode")

// Mode is the user's period selection.
type Mode string

// Range is an inclusive [Start, End] interval. A zero bound is unbounded.
type Range struct {
	Start core.Date
	End   core.Date
}

// Unbounded matches every date.
var Unbounded = Range{}

// IsUnbounded reports whether neither bound is set.
func (r Range) IsUnbounded() bool {
	return r.Start.IsEmpty() && r.End.IsEmpty()
}

// Contains reports whether d falls inside the range, bounds included.
func (r Range) Contains(d core.Date) bool {
	if !r.Start.IsEmpty() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsEmpty() && d.After(r.End) {
		return false
	}
	return true
}

// String renders the range for report headers.
func (r Range) String() string {
	switch {
	case r.IsUnbounded():
		return "Todos os registros"
	case r.Start.IsEmpty():
		return "até " + r.End.BR()
	case r.End.IsEmpty():
		return "a partir de " + r.Start.BR()
	default:
		return r.Start.BR() + " a " + r.End.BR()
	}
}

var modeAliases = map[string]Mode{
	"day":   Day,
	"dia":   Day,
	"month": Month,
	"mes":   Month,
	"mês":   Month,
	"year":  Year,
	"ano":   Year,
	"all":   All,
	"tudo":  All,
	"todos": All,
}

// ParseMode maps a mode name, English or Portuguese, to a Mode.
func ParseMode(s string) (Mode, error) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Resolve maps a mode and reference date to the inclusive range it selects.
func Resolve(mode Mode, ref core.Date) (Range, error) {
	resolver, err := GetResolver(mode)
	if err != nil {
		return Range{}, err
	}
	return resolver.Resolve(ref), nil
}
