package period

import (
	"fmt"
	"time"

	"oficina/internal/core"
)

// Resolver is the strategy interface for turning a reference date into a range.
type Resolver interface {
	Resolve(ref core.Date) Range
}

// DayResolver selects exactly the reference day.
type DayResolver struct{}

func (DayResolver) Resolve(ref core.Date) Range {
	return Range{Start: ref, End: ref}
}

// MonthResolver selects the whole calendar month of the reference date.
type MonthResolver struct{}

// Resolve returns the first and last day of ref's month, leap years included.
func (MonthResolver) Resolve(ref core.Date) Range {
	start := core.NewDate(ref.Year(), ref.Month(), 1)
	if ref.Month() == 12 {
		return Range{Start: start, End: core.NewDate(ref.Year(), 12, 31)}
	}
	// day 0 of the next month is the last day of this one
	last := time.Date(ref.Year(), time.Month(ref.Month()+1), 0, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: core.DateOf(last)}
}

// YearResolver selects the whole calendar year of the reference date.
type YearResolver struct{}

func (YearResolver) Resolve(ref core.Date) Range {
	return Range{Start: core.NewDate(ref.Year(), 1, 1), End: core.NewDate(ref.Year(), 12, 31)}
}

// AllResolver ignores the reference date and selects everything.
type AllResolver struct{}

func (AllResolver) Resolve(core.Date) Range {
	return Unbounded
}

// resolvers maps modes to their strategies.
var resolvers = map[Mode]Resolver{
	Day:   DayResolver{},
	Month: MonthResolver{},
	Year:  YearResolver{},
	All:   AllResolver{},
}

// GetResolver returns the resolver registered for a mode.
func GetResolver(mode Mode) (Resolver, error) {
	r, ok := resolvers[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	return r, nil
}

// RegisterResolver installs a resolver for a new or existing mode.
func RegisterResolver(mode Mode, r Resolver) {
	resolvers[mode] = r
}
