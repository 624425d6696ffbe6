package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Cash       PaymentMethod = "Dinheiro"
	Pix        PaymentMethod = "Pix"
	DebitCard  PaymentMethod = "Debito"
	CreditCard PaymentMethod = "Credito"
	BankSlip   PaymentMethod = "Boleto"
	Check      PaymentMethod = "Cheque"
)

const (
	isoLayout = "2006-01-02"
	brLayout  = "02/01/2006"
)

type (
	// PaymentMethod is a categorical tag stored as its canonical label.
	PaymentMethod string

	// Date is a calendar day at UTC midnight. The zero value means "no date".
	Date struct {
		time.Time
	}

	Receipt struct {
		ID          int64 // zero until first persisted
		Amount      decimal.Decimal
		OccurredOn  Date
		Method      PaymentMethod
		ReceiptPath string
	}

	Expense struct {
		ID          int64
		Amount      decimal.Decimal
		OccurredOn  Date
		Method      PaymentMethod
		Description string
		IsDeferred  bool
		DueOn       Date // set iff IsDeferred
		ReceiptPath string
	}

	WorkOrder struct {
		ID          int64
		ClientName  string
		Description string
		TotalAmount decimal.Decimal
		OccurredOn  Date
		IsPaid      bool
		Method      PaymentMethod // empty while undefined
	}

	Employee struct {
		ID                    int64
		FullName              string
		TaxID                 string // CPF
		Phone                 string
		Role                  string
		PhotoPath             string
		HiredOn               Date
		PaymentDay            int
		ThirteenthSalaryMonth int // 0 when not planned
		VacationMonth         int // 0 when not planned
		TerminatedOn          Date
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidMethod        = errors.New("invalid payment method")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyClient          = errors.New("empty client name")
	ErrMissingDueDate       = errors.New("deferred expense requires a due date")
	ErrMissingPaymentMethod = errors.New("paid work order requires a payment method")
	ErrEmptyName            = errors.New("empty employee name")
	ErrEmptyTaxID           = errors.New("empty tax id")
	ErrInvalidPaymentDay    = errors.New("invalid payment day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrIdentityRequired     = errors.New("record has no identity; persist it before updating")
)

// paymentMethods maps lowercase labels, with and without accents, to the variant.
var paymentMethods = map[string]PaymentMethod{
	"dinheiro": Cash,
	"pix":      Pix,
	"debito":   DebitCard,
	"débito":   DebitCard,
	"credito":  CreditCard,
	"crédito":  CreditCard,
	"boleto":   BankSlip,
	"cheque":   Check,
}

// PaymentMethods returns every variant in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{Cash, Pix, DebitCard, CreditCard, BankSlip, Check}
}

// ParsePaymentMethod maps user-facing text to a PaymentMethod.
// The boolean is false when the text names no known method.
func ParsePaymentMethod(text string) (PaymentMethod, bool) {
	m, ok := paymentMethods[strings.ToLower(strings.TrimSpace(text))]
	return m, ok
}

func (m PaymentMethod) IsValid() bool {
	_, ok := paymentMethods[strings.ToLower(string(m))]
	return ok && m == paymentMethods[strings.ToLower(string(m))]
}

func (m PaymentMethod) String() string {
	return string(m)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ParseDate accepts either YYYY-MM-DD or dd/mm/yyyy.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(brLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	return ParseISODate(s)
}

// ISO formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoLayout)
}

// BR formats the date as dd/mm/yyyy, or "" for the zero date.
func (d Date) BR() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(brLayout)
}

func (d Date) String() string {
	return d.ISO()
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// validateAmount requires at least one cent once rounded for storage.
func validateAmount(a decimal.Decimal) error {
	if ToCents(a) <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Receipt) Validate() error {
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if r.OccurredOn.IsZero() {
		return ErrInvalidDate
	}
	if !r.Method.IsValid() {
		return ErrInvalidMethod
	}
	return nil
}

// Normalize enforces the deferred/due-date coupling: a non-deferred
// expense never carries a due date.
func (e *Expense) Normalize() {
	e.Description = strings.TrimSpace(e.Description)
	if !e.IsDeferred {
		e.DueOn = Date{}
	}
}

func (e Expense) Validate() error {
	if err := validateAmount(e.Amount); err != nil {
		return err
	}
	if e.OccurredOn.IsZero() {
		return ErrInvalidDate
	}
	if !e.Method.IsValid() {
		return ErrInvalidMethod
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.IsDeferred && e.DueOn.IsZero() {
		return ErrMissingDueDate
	}
	if !e.IsDeferred && !e.DueOn.IsZero() {
		return errors.New("due date set on a non-deferred expense")
	}
	return nil
}

func (w WorkOrder) Validate() error {
	if strings.TrimSpace(w.ClientName) == "" {
		return ErrEmptyClient
	}
	if strings.TrimSpace(w.Description) == "" {
		return ErrEmptyDescription
	}
	if w.TotalAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if w.OccurredOn.IsZero() {
		return ErrInvalidDate
	}
	if w.Method != "" && !w.Method.IsValid() {
		return ErrInvalidMethod
	}
	if w.IsPaid && w.Method == "" {
		return ErrMissingPaymentMethod
	}
	return nil
}

// Status returns the display status used by reports.
func (w WorkOrder) Status() string {
	if w.IsPaid {
		return "Paga"
	}
	return "Não paga"
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.FullName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(e.TaxID) == "" {
		return ErrEmptyTaxID
	}
	if e.HiredOn.IsZero() {
		return ErrInvalidDate
	}
	if e.PaymentDay < 1 || e.PaymentDay > 31 {
		return ErrInvalidPaymentDay
	}
	if e.ThirteenthSalaryMonth < 0 || e.ThirteenthSalaryMonth > 12 {
		return ErrInvalidMonth
	}
	if e.VacationMonth < 0 || e.VacationMonth > 12 {
		return ErrInvalidMonth
	}
	if !e.TerminatedOn.IsZero() && e.TerminatedOn.Before(e.HiredOn) {
		return errors.New("termination date before hire date")
	}
	return nil
}

// IsActive reports whether the employee is still employed on the given day.
func (e Employee) IsActive(on Date) bool {
	if e.HiredOn.After(on) {
		return false
	}
	return e.TerminatedOn.IsZero() || e.TerminatedOn.After(on)
}
