package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"oficina/internal/core"
	"oficina/internal/export"
	"oficina/internal/log"
	"oficina/internal/period"
	"oficina/internal/report"
)

// ReportKind selects which report to build.
type ReportKind string

const (
	ReportReceipts   ReportKind = "receipts"
	ReportExpenses   ReportKind = "expenses"
	ReportWorkOrders ReportKind = "work_orders"
	ReportCombined   ReportKind = "combined"
)

var reportAliases = map[string]ReportKind{
	"receipts":    ReportReceipts,
	"receitas":    ReportReceipts,
	"expenses":    ReportExpenses,
	"despesas":    ReportExpenses,
	"work_orders": ReportWorkOrders,
	"workorders":  ReportWorkOrders,
	"notas":       ReportWorkOrders,
	"combined":    ReportCombined,
	"geral":       ReportCombined,
}

// ParseReportKind maps a report name, English or Portuguese, to a ReportKind.
func ParseReportKind(s string) (ReportKind, error) {
	k, ok := reportAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown report %q", s)
	}
	return k, nil
}

// DefaultFileName is the suggested export file name for a report.
func (k ReportKind) DefaultFileName(format export.Format) string {
	base := map[ReportKind]string{
		ReportReceipts:   "relatorio_receitas",
		ReportExpenses:   "relatorio_despesas",
		ReportWorkOrders: "relatorio_notas_servico",
		ReportCombined:   "relatorio_geral",
	}[k]
	if base == "" {
		base = "relatorio"
	}
	return base + "." + string(format)
}

// ReportRequest describes one report. Window, when set, selects a legacy
// rolling window ending today instead of Mode and Reference.
type ReportRequest struct {
	Kind       ReportKind
	Mode       period.Mode
	Reference  core.Date
	Window     string
	Include    report.Selection
	SortByDate bool
}

// ReportService builds report tables from the finance records and exports them.
type ReportService struct {
	finance *FinanceService
	opts    export.Options
	logger  *log.Logger
	now     func() time.Time
}

func NewReportService(finance *FinanceService, opts export.Options, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &ReportService{
		finance: finance,
		opts:    opts,
		logger:  logger.WithComponent(log.ComponentReport),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for the default reference date and rolling windows.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	s.opts.Now = now
	return s
}

// selection resolves the request into a range and its header label.
func (s *ReportService) selection(req ReportRequest) (period.Range, string, error) {
	today := core.DateOf(s.now())
	if req.Window != "" {
		r := period.ResolveRolling(req.Window, today)
		return r, r.String(), nil
	}

	mode := req.Mode
	if mode == "" {
		mode = period.All
	}
	ref := req.Reference
	if ref.IsEmpty() {
		ref = today
	}
	r, err := period.Resolve(mode, ref)
	if err != nil {
		return period.Range{}, "", err
	}
	return r, period.Describe(mode, ref), nil
}

// Build assembles the requested report table.
func (s *ReportService) Build(ctx context.Context, req ReportRequest) (report.Table, error) {
	rng, label, err := s.selection(req)
	if err != nil {
		return report.Table{}, err
	}

	var t report.Table
	switch req.Kind {
	case ReportReceipts:
		rs, err := s.finance.ListReceiptsInRange(ctx, rng)
		if err != nil {
			return report.Table{}, err
		}
		t = report.Receipts(rs, label)
	case ReportExpenses:
		es, err := s.finance.ListExpensesInRange(ctx, rng)
		if err != nil {
			return report.Table{}, err
		}
		t = report.Expenses(es, label)
	case ReportWorkOrders:
		ws, err := s.finance.ListWorkOrdersInRange(ctx, rng)
		if err != nil {
			return report.Table{}, err
		}
		t = report.WorkOrders(ws, label)
	case ReportCombined, "":
		t, err = s.buildCombined(ctx, req, rng, label)
		if err != nil {
			return report.Table{}, err
		}
	default:
		return report.Table{}, fmt.Errorf("unknown report %q", req.Kind)
	}

	if req.SortByDate {
		report.SortByDate(&t)
	}
	s.logger.DebugContext(ctx, "Report built", "title", t.Title, log.FieldPeriod, label, log.FieldRows, t.Len())
	return t, nil
}

func (s *ReportService) buildCombined(ctx context.Context, req ReportRequest, rng period.Range, label string) (report.Table, error) {
	include := req.Include
	if include == (report.Selection{}) {
		include = report.SelectAll
	}

	in := report.CombinedInput{Include: include, Period: label}
	var err error
	if include.Receipts {
		if in.Receipts, err = s.finance.ListReceiptsInRange(ctx, rng); err != nil {
			return report.Table{}, err
		}
	}
	if include.Expenses {
		if in.Expenses, err = s.finance.ListExpensesInRange(ctx, rng); err != nil {
			return report.Table{}, err
		}
	}
	if include.WorkOrders {
		if in.WorkOrders, err = s.finance.ListWorkOrdersInRange(ctx, rng); err != nil {
			return report.Table{}, err
		}
	}
	if in.Balance, err = s.finance.ComputeBalance(ctx); err != nil {
		return report.Table{}, err
	}
	return report.Combined(in), nil
}

// Export builds the report and writes it to path, picking the exporter from
// the file extension. It returns false when the file could not be written.
func (s *ReportService) Export(ctx context.Context, req ReportRequest, path string) (bool, error) {
	t, err := s.Build(ctx, req)
	if err != nil {
		return false, err
	}
	exporter, err := export.ForPath(path, s.opts)
	if err != nil {
		return false, err
	}
	return exporter.Export(path, t), nil
}
