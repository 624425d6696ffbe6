package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1,23", "1.23", true},
		{"1.23", "1.23", true},
		{"1.5", "1.5", true},
		{"1.500", "1500", true},
		{"12.000", "12000", true},
		{"R$ 1.234", "1234", true},
		{"R$ 1.500", "1500", true},
		{"1234.56", "1234.56", true},
		{"R$ 1.234,56", "1234.56", true},
		{"r$1.234,56", "1234.56", true},
		{"1.234,56", "1234.56", true},
		{"1234,56", "1234.56", true},
		{"1.234.567", "1234567", true},
		{"1,005", "1.01", true}, // half-up rounding
		{" 2,50 ", "2.5", true},
		{"-40,00", "-40", true},
		{"R$", "", false},
		{"abc", "", false},
		{"1,2,3", "", false},
		{"", "", false},
		{".", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if !tc.ok {
				if err == nil {
					t.Fatalf("%q expected error, got %s", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("%q unexpected error: %v", tc.in, err)
			}
			if !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s", tc.in, tc.out, got)
			}
		})
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"0", "R$ 0,00"},
		{"1.5", "R$ 1,50"},
		{"999.99", "R$ 999,99"},
		{"1000", "R$ 1.000,00"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.8", "R$ 1.234.567,80"},
		{"-40", "R$ -40,00"},
		{"-0.001", "R$ 0,00"},
	}
	for _, tc := range cases {
		if got := FormatBRL(decimal.RequireFromString(tc.in)); got != tc.out {
			t.Errorf("FormatBRL(%s) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestCurrencyRoundTrip(t *testing.T) {
	for _, s := range []string{"R$ 1.234,56", "R$ 0,01", "R$ 150,00", "R$ 12.345.678,90"} {
		d, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got := FormatBRL(d); got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	}
}

func TestFormatDecimalComma(t *testing.T) {
	cases := map[string]string{
		"150":    "150,00",
		"1234.5": "1234,50",
		"-40":    "-40,00",
		"0.004":  "0,00",
		"10.125": "10,13",
	}
	for in, want := range cases {
		if got := FormatDecimalComma(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatDecimalComma(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskCurrencyInput(t *testing.T) {
	cases := []struct{ in, out string }{
		{"", ""},
		{"abc", ""},
		{"5", "R$ 0,05"},
		{"1234", "R$ 12,34"},
		{"R$ 12,345", "R$ 123,45"},
		{"123456789", "R$ 1.234.567,89"},
	}
	for _, tc := range cases {
		if got := MaskCurrencyInput(tc.in); got != tc.out {
			t.Errorf("MaskCurrencyInput(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestCentsConversion(t *testing.T) {
	d := MustParseAmount("1.234,56")
	if c := ToCents(d); c != 123456 {
		t.Fatalf("ToCents = %d", c)
	}
	if !FromCents(123456).Equal(d) {
		t.Fatalf("FromCents = %s", FromCents(123456))
	}
}

func TestComputeBalance(t *testing.T) {
	rs := []Receipt{{Amount: MustParseAmount("100")}, {Amount: MustParseAmount("50")}}
	es := []Expense{{Amount: MustParseAmount("40")}}
	b := ComputeBalance(rs, es)
	if !b.Net().Equal(MustParseAmount("110")) {
		t.Fatalf("net = %s", b.Net())
	}
}
