package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"oficina/internal/core"
	"oficina/internal/export"
	"oficina/internal/period"
	"oficina/internal/report"
	"oficina/internal/services"
	"oficina/internal/sheets"
	"oficina/internal/storage"
)

const dateHelp = "dd/mm/aaaa ou aaaa-mm-dd"

var errMissingID = errors.New("-id is required")

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func subcommand(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%s: missing action", cmd)
	}
	return args[0], args[1:], nil
}

// visited returns the names of the flags set on the command line, so that
// updates only touch the fields the operator named.
func visited(fs *flag.FlagSet) map[string]bool {
	seen := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

// values converts flag text into domain values, keeping the first error.
type values struct{ err error }

func (v *values) amount(name, s string) decimal.Decimal {
	d, err := core.ParseAmount(s)
	if err != nil && v.err == nil {
		v.err = fmt.Errorf("-%s: %w", name, err)
	}
	return d
}

// date parses an optional date; empty text is the zero Date.
func (v *values) date(name, s string) core.Date {
	if strings.TrimSpace(s) == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(s)
	if err != nil && v.err == nil {
		v.err = fmt.Errorf("-%s: %w", name, err)
	}
	return d
}

// method maps known labels to their variant. Unknown text is passed through
// so that record validation reports it.
func method(s string) core.PaymentMethod {
	if m, ok := core.ParsePaymentMethod(s); ok {
		return m
	}
	return core.PaymentMethod(strings.TrimSpace(s))
}

func findByID[T any](items []T, id int64, idOf func(T) int64) (T, error) {
	for _, it := range items {
		if idOf(it) == id {
			return it, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("id %d: %w", id, storage.ErrNotFound)
}

func (a *app) receipt(ctx context.Context, args []string) error {
	action, args, err := subcommand("receipt", args)
	if err != nil {
		return err
	}
	if action == "list" {
		return a.listReport(ctx, services.ReportReceipts, args)
	}

	fs := a.flagSet("receipt " + action)
	id := fs.Int64("id", 0, "id da receita (update)")
	amount := fs.String("amount", "", "valor, ex. 1.234,56")
	pay := fs.String("method", "", "forma de pagamento")
	date := fs.String("date", "", "data ("+dateHelp+"); padrão hoje")
	file := fs.String("file", "", "caminho do comprovante")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var v values
	switch action {
	case "add":
		amt, d := v.amount("amount", *amount), v.date("date", *date)
		if v.err != nil {
			return v.err
		}
		newID, err := a.finance.RegisterReceipt(ctx, amt, method(*pay), d, *file)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Receita #%d registrada\n", newID)
		return nil
	case "update":
		if *id == 0 {
			return errMissingID
		}
		all, err := a.finance.ListReceipts(ctx)
		if err != nil {
			return err
		}
		r, err := findByID(all, *id, func(r core.Receipt) int64 { return r.ID })
		if err != nil {
			return err
		}
		set := visited(fs)
		if set["amount"] {
			r.Amount = v.amount("amount", *amount)
		}
		if set["method"] {
			r.Method = method(*pay)
		}
		if set["date"] {
			r.OccurredOn = v.date("date", *date)
		}
		if set["file"] {
			r.ReceiptPath = *file
		}
		if v.err != nil {
			return v.err
		}
		if err := a.finance.UpdateReceipt(ctx, r); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Receita #%d atualizada\n", r.ID)
		return nil
	default:
		return fmt.Errorf("receipt: unknown action %q", action)
	}
}

func (a *app) expense(ctx context.Context, args []string) error {
	action, args, err := subcommand("expense", args)
	if err != nil {
		return err
	}
	if action == "list" {
		return a.listReport(ctx, services.ReportExpenses, args)
	}

	fs := a.flagSet("expense " + action)
	id := fs.Int64("id", 0, "id da despesa (update)")
	amount := fs.String("amount", "", "valor, ex. 1.234,56")
	desc := fs.String("desc", "", "descrição")
	pay := fs.String("method", "", "forma de pagamento")
	date := fs.String("date", "", "data de lançamento ("+dateHelp+"); padrão hoje")
	due := fs.String("due", "", "vencimento; torna a despesa a prazo")
	cash := fs.Bool("cash", false, "marca a despesa como à vista (update)")
	file := fs.String("file", "", "caminho do comprovante")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var v values
	switch action {
	case "add":
		amt, d, dueOn := v.amount("amount", *amount), v.date("date", *date), v.date("due", *due)
		if v.err != nil {
			return v.err
		}
		var newID int64
		if *due != "" {
			newID, err = a.finance.RegisterDeferredExpense(ctx, amt, *desc, method(*pay), dueOn, d, *file)
		} else {
			newID, err = a.finance.RegisterExpense(ctx, amt, *desc, method(*pay), d, *file)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Despesa #%d registrada\n", newID)
		return nil
	case "update":
		if *id == 0 {
			return errMissingID
		}
		all, err := a.finance.ListExpenses(ctx)
		if err != nil {
			return err
		}
		e, err := findByID(all, *id, func(e core.Expense) int64 { return e.ID })
		if err != nil {
			return err
		}
		set := visited(fs)
		if set["amount"] {
			e.Amount = v.amount("amount", *amount)
		}
		if set["desc"] {
			e.Description = *desc
		}
		if set["method"] {
			e.Method = method(*pay)
		}
		if set["date"] {
			e.OccurredOn = v.date("date", *date)
		}
		if set["due"] {
			e.IsDeferred = true
			e.DueOn = v.date("due", *due)
		}
		if set["cash"] && *cash {
			e.IsDeferred = false
		}
		if set["file"] {
			e.ReceiptPath = *file
		}
		if v.err != nil {
			return v.err
		}
		if err := a.finance.UpdateExpense(ctx, e); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Despesa #%d atualizada\n", e.ID)
		return nil
	default:
		return fmt.Errorf("expense: unknown action %q", action)
	}
}

func (a *app) workOrder(ctx context.Context, args []string) error {
	action, args, err := subcommand("workorder", args)
	if err != nil {
		return err
	}
	if action == "list" {
		return a.listReport(ctx, services.ReportWorkOrders, args)
	}

	fs := a.flagSet("workorder " + action)
	id := fs.Int64("id", 0, "id da nota (update, pay)")
	client := fs.String("client", "", "nome do cliente")
	desc := fs.String("desc", "", "descrição do serviço")
	total := fs.String("total", "", "valor total")
	date := fs.String("date", "", "data ("+dateHelp+"); padrão hoje")
	paid := fs.Bool("paid", false, "nota já paga")
	pay := fs.String("method", "", "forma de pagamento")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var v values
	switch action {
	case "add":
		amt, d := v.amount("total", *total), v.date("date", *date)
		if v.err != nil {
			return v.err
		}
		var m core.PaymentMethod
		if *pay != "" {
			m = method(*pay)
		}
		newID, err := a.finance.CreateWorkOrder(ctx, *client, *desc, amt, d, *paid, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Nota de serviço #%d registrada\n", newID)
		return nil
	case "pay":
		if *id == 0 {
			return errMissingID
		}
		if err := a.finance.MarkWorkOrderPaid(ctx, *id, method(*pay)); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Nota de serviço #%d paga\n", *id)
		return nil
	case "update":
		if *id == 0 {
			return errMissingID
		}
		all, err := a.finance.ListWorkOrders(ctx)
		if err != nil {
			return err
		}
		w, err := findByID(all, *id, func(w core.WorkOrder) int64 { return w.ID })
		if err != nil {
			return err
		}
		set := visited(fs)
		if set["client"] {
			w.ClientName = *client
		}
		if set["desc"] {
			w.Description = *desc
		}
		if set["total"] {
			w.TotalAmount = v.amount("total", *total)
		}
		if set["date"] {
			w.OccurredOn = v.date("date", *date)
		}
		if set["paid"] {
			w.IsPaid = *paid
		}
		if set["method"] {
			w.Method = method(*pay)
		}
		if v.err != nil {
			return v.err
		}
		if err := a.finance.UpdateWorkOrder(ctx, w); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Nota de serviço #%d atualizada\n", w.ID)
		return nil
	default:
		return fmt.Errorf("workorder: unknown action %q", action)
	}
}

func (a *app) employee(ctx context.Context, args []string) error {
	action, args, err := subcommand("employee", args)
	if err != nil {
		return err
	}

	fs := a.flagSet("employee " + action)
	id := fs.Int64("id", 0, "id do funcionário (update, terminate)")
	name := fs.String("name", "", "nome completo")
	taxID := fs.String("cpf", "", "CPF")
	phone := fs.String("phone", "", "telefone")
	role := fs.String("role", "", "função")
	photo := fs.String("photo", "", "caminho da foto")
	hired := fs.String("hired", "", "data de admissão ("+dateHelp+")")
	payDay := fs.Int("payday", 0, "dia de pagamento (1-31)")
	thirteenth := fs.Int("thirteenth", 0, "mês do 13º salário (1-12)")
	vacation := fs.Int("vacation", 0, "mês de férias (1-12)")
	date := fs.String("date", "", "data de demissão ou de referência; padrão hoje")
	active := fs.Bool("active", false, "lista só funcionários ativos")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var v values
	switch action {
	case "add":
		e := core.Employee{
			FullName:              *name,
			TaxID:                 *taxID,
			Phone:                 *phone,
			Role:                  *role,
			PhotoPath:             *photo,
			HiredOn:               v.date("hired", *hired),
			PaymentDay:            *payDay,
			ThirteenthSalaryMonth: *thirteenth,
			VacationMonth:         *vacation,
		}
		if v.err != nil {
			return v.err
		}
		newID, err := a.employees.RegisterEmployee(ctx, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Funcionário #%d registrado\n", newID)
		return nil
	case "update":
		if *id == 0 {
			return errMissingID
		}
		all, err := a.employees.ListEmployees(ctx)
		if err != nil {
			return err
		}
		e, err := findByID(all, *id, func(e core.Employee) int64 { return e.ID })
		if err != nil {
			return err
		}
		set := visited(fs)
		if set["name"] {
			e.FullName = *name
		}
		if set["cpf"] {
			e.TaxID = *taxID
		}
		if set["phone"] {
			e.Phone = *phone
		}
		if set["role"] {
			e.Role = *role
		}
		if set["photo"] {
			e.PhotoPath = *photo
		}
		if set["hired"] {
			e.HiredOn = v.date("hired", *hired)
		}
		if set["payday"] {
			e.PaymentDay = *payDay
		}
		if set["thirteenth"] {
			e.ThirteenthSalaryMonth = *thirteenth
		}
		if set["vacation"] {
			e.VacationMonth = *vacation
		}
		if v.err != nil {
			return v.err
		}
		if err := a.employees.UpdateEmployee(ctx, e); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Funcionário #%d atualizado\n", e.ID)
		return nil
	case "terminate":
		if *id == 0 {
			return errMissingID
		}
		on := v.date("date", *date)
		if v.err != nil {
			return v.err
		}
		if err := a.employees.TerminateEmployee(ctx, *id, on); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Funcionário #%d desligado\n", *id)
		return nil
	case "list":
		on := v.date("date", *date)
		if v.err != nil {
			return v.err
		}
		var list []core.Employee
		if *active {
			list, err = a.employees.ListActiveEmployees(ctx, on)
		} else {
			list, err = a.employees.ListEmployees(ctx)
		}
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(list))
		for _, e := range list {
			rows = append(rows, sheets.EmployeeRow(e))
		}
		return writeGrid(a.out, sheets.Header(core.KindEmployee), rows)
	default:
		return fmt.Errorf("employee: unknown action %q", action)
	}
}

func (a *app) balance(ctx context.Context) error {
	b, err := a.finance.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Receitas: %s\n", core.FormatBRL(b.Receipts))
	fmt.Fprintf(a.out, "Despesas: %s\n", core.FormatBRL(b.Expenses))
	fmt.Fprintf(a.out, "Saldo:    %s\n", core.FormatBRL(b.Net()))
	return nil
}

func (a *app) period(args []string) error {
	fs := a.flagSet("period")
	sel := addSelectionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	today := core.DateOf(a.now())
	if *sel.window != "" {
		fmt.Fprintln(a.out, period.ResolveRolling(*sel.window, today).String())
		return nil
	}
	mode, err := period.ParseMode(*sel.mode)
	if err != nil {
		return err
	}
	var v values
	ref := v.date("ref", *sel.ref)
	if v.err != nil {
		return v.err
	}
	if ref.IsEmpty() {
		ref = today
	}
	r, err := period.Resolve(mode, ref)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, period.Describe(mode, ref))
	fmt.Fprintln(a.out, r.String())
	return nil
}

// selectionFlags are the period flags shared by list, report and export.
type selectionFlags struct {
	mode   *string
	ref    *string
	window *string
	sort   *bool
}

func addSelectionFlags(fs *flag.FlagSet) selectionFlags {
	return selectionFlags{
		mode:   fs.String("mode", "all", "período: day, month, year ou all"),
		ref:    fs.String("ref", "", "data de referência ("+dateHelp+"); padrão hoje"),
		window: fs.String("window", "", "janela móvel: diário, semanal ou mensal"),
		sort:   fs.Bool("sort", false, "ordena as linhas por data"),
	}
}

func (s selectionFlags) request(kind services.ReportKind) (services.ReportRequest, error) {
	req := services.ReportRequest{Kind: kind, Window: *s.window, SortByDate: *s.sort}
	if req.Window != "" {
		return req, nil
	}
	mode, err := period.ParseMode(*s.mode)
	if err != nil {
		return req, err
	}
	var v values
	req.Mode = mode
	req.Reference = v.date("ref", *s.ref)
	return req, v.err
}

func parseSelection(s string) (report.Selection, error) {
	var sel report.Selection
	if strings.TrimSpace(s) == "" {
		return sel, nil
	}
	for _, part := range strings.Split(s, ",") {
		kind, ok := core.ParseKind(part)
		switch {
		case !ok:
			return sel, fmt.Errorf("-include: unknown kind %q", part)
		case kind == core.KindReceipt:
			sel.Receipts = true
		case kind == core.KindExpense:
			sel.Expenses = true
		case kind == core.KindWorkOrder:
			sel.WorkOrders = true
		default:
			return sel, fmt.Errorf("-include: %s is not part of the combined report", kind)
		}
	}
	return sel, nil
}

func (a *app) listReport(ctx context.Context, kind services.ReportKind, args []string) error {
	fs := a.flagSet(string(kind) + " list")
	sel := addSelectionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := sel.request(kind)
	if err != nil {
		return err
	}
	t, err := a.reports.Build(ctx, req)
	if err != nil {
		return err
	}
	return printTable(a.out, t)
}

// reportRequest parses the flags shared by report and export.
func (a *app) reportRequest(fs *flag.FlagSet, args []string) (services.ReportRequest, *string, error) {
	kind := fs.String("kind", "combined", "relatório: receipts, expenses, work_orders ou combined")
	include := fs.String("include", "", "tipos no relatório geral, ex. receitas,despesas")
	sel := addSelectionFlags(fs)
	out := fs.String("out", "", "arquivo de saída .csv ou .xlsx (export)")
	if err := fs.Parse(args); err != nil {
		return services.ReportRequest{}, nil, err
	}

	k, err := services.ParseReportKind(*kind)
	if err != nil {
		return services.ReportRequest{}, nil, err
	}
	req, err := sel.request(k)
	if err != nil {
		return req, nil, err
	}
	if req.Include, err = parseSelection(*include); err != nil {
		return req, nil, err
	}
	return req, out, nil
}

func (a *app) report(ctx context.Context, args []string) error {
	req, _, err := a.reportRequest(a.flagSet("report"), args)
	if err != nil {
		return err
	}
	t, err := a.reports.Build(ctx, req)
	if err != nil {
		return err
	}
	return printTable(a.out, t)
}

func (a *app) export(ctx context.Context, args []string) error {
	req, out, err := a.reportRequest(a.flagSet("export"), args)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = filepath.Join(a.exportDir, req.Kind.DefaultFileName(export.FormatCSV))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	ok, err := a.reports.Export(ctx, req, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("could not write %s", path)
	}
	fmt.Fprintf(a.out, "Relatório exportado: %s\n", path)
	return nil
}

func printTable(w io.Writer, t report.Table) error {
	fmt.Fprintln(w, t.Title)
	if t.Period != "" {
		fmt.Fprintf(w, "Período: %s\n", t.Period)
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = export.CellText(c)
		}
		rows = append(rows, cells)
	}
	if err := writeGrid(w, t.Columns, rows); err != nil {
		return err
	}
	if t.Summary != "" {
		fmt.Fprintln(w, t.Summary)
	}
	fmt.Fprintf(w, "Total de registros: %d\n", t.Len())
	return nil
}

func writeGrid(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
