package storage

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"oficina/internal/core"
)

// Column codecs between domain values and SQLite storage classes.
// Dates are ISO-8601 text, booleans 0/1, amounts integer cents and
// absent optional values NULL.

func dateArg(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.ISO()
}

func stringArg(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func monthArg(m int) any {
	if m == 0 {
		return nil
	}
	return m
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}

func centsArg(d decimal.Decimal) int64 {
	return core.ToCents(d)
}

func asInt64(v any) (int64, error) {
	switch c := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return c, nil
	case int:
		return int64(c), nil
	case float64:
		return int64(c), nil
	case []byte:
		return strconv.ParseInt(string(c), 10, 64)
	case string:
		return strconv.ParseInt(c, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected integer column type %T", v)
	}
}

func asString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []byte:
		return string(c)
	default:
		return fmt.Sprint(c)
	}
}

func asDate(v any) (core.Date, error) {
	s := asString(v)
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseISODate(s)
}

func asBool(v any) (bool, error) {
	n, err := asInt64(v)
	return n != 0, err
}

func asAmount(v any) (decimal.Decimal, error) {
	n, err := asInt64(v)
	if err != nil {
		return decimal.Zero, err
	}
	return core.FromCents(n), nil
}

// rowDecoder walks one row left to right and keeps the first error.
type rowDecoder struct {
	row []any
	i   int
	err error
}

func newRowDecoder(row []any) *rowDecoder {
	return &rowDecoder{row: row}
}

func (d *rowDecoder) next() any {
	if d.i >= len(d.row) {
		if d.err == nil {
			d.err = fmt.Errorf("row has only %d columns", len(d.row))
		}
		return nil
	}
	v := d.row[d.i]
	d.i++
	return v
}

func (d *rowDecoder) i64() int64 {
	n, err := asInt64(d.next())
	if err != nil && d.err == nil {
		d.err = err
	}
	return n
}

func (d *rowDecoder) integer() int {
	return int(d.i64())
}

func (d *rowDecoder) text() string {
	return asString(d.next())
}

func (d *rowDecoder) day() core.Date {
	v, err := asDate(d.next())
	if err != nil && d.err == nil {
		d.err = err
	}
	return v
}

func (d *rowDecoder) flag() bool {
	v, err := asBool(d.next())
	if err != nil && d.err == nil {
		d.err = err
	}
	return v
}

func (d *rowDecoder) money() decimal.Decimal {
	v, err := asAmount(d.next())
	if err != nil && d.err == nil {
		d.err = err
	}
	return v
}

func (d *rowDecoder) payment() core.PaymentMethod {
	return core.PaymentMethod(d.text())
}
