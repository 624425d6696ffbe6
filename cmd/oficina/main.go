package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"oficina/internal/cli"
	"oficina/internal/config"
	"oficina/internal/export"
	"oficina/internal/log"
	"oficina/internal/services"
	"oficina/internal/storage"
)

const usage = `Usage: oficina <command> [flags]

Records:
  receipt   add | update | list
  expense   add | update | list
  workorder add | update | pay | list
  employee  add | update | terminate | list

Reports:
  balance                 global balance (receipts - expenses)
  period                  show the date range a period selects
  report                  print a report table
  export                  write a report to .csv or .xlsx

Run "oficina <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp, stderr)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// A nil *amqp.Client must not become a non-nil interface.
	var publisher services.EventPublisher
	if client := cli.InitPublisher(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}

	a := newApp(storage.NewRepositories(store), publisher, cfg, logger, stdout)
	a.errOut = stderr
	if err := a.run(context.Background(), args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(stderr, "erro:", err)
		return 1
	}
	return 0
}

// app holds the services behind every command.
type app struct {
	finance   *services.FinanceService
	employees *services.EmployeeService
	reports   *services.ReportService
	exportDir string
	out       io.Writer
	errOut    io.Writer
	now       func() time.Time
}

func newApp(repos storage.Repositories, publisher services.EventPublisher, cfg *config.Config, logger *log.Logger, out io.Writer) *app {
	finance := services.NewFinanceService(repos.Receipts, repos.Expenses, repos.WorkOrders, publisher, logger)
	return &app{
		finance:   finance,
		employees: services.NewEmployeeService(repos.Employees, publisher, logger),
		reports:   services.NewReportService(finance, export.Options{SystemName: cfg.SystemName, Logger: logger}, logger),
		exportDir: cfg.ExportDir,
		out:       out,
		errOut:    io.Discard,
		now:       time.Now,
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "receipt", "receita":
		return a.receipt(ctx, rest)
	case "expense", "despesa":
		return a.expense(ctx, rest)
	case "workorder", "nota":
		return a.workOrder(ctx, rest)
	case "employee", "funcionario":
		return a.employee(ctx, rest)
	case "balance", "saldo":
		return a.balance(ctx)
	case "period", "periodo":
		return a.period(rest)
	case "report", "relatorio":
		return a.report(ctx, rest)
	case "export", "exportar":
		return a.export(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
