// Package export writes report tables to files.
//
// Every exporter honours the same contract: Export returns true when the
// file was written completely and false otherwise. Failures are logged and
// never propagated, and the output file is closed on every path.
package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oficina/internal/core"
	"oficina/internal/log"
	"oficina/internal/report"
)

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	DefaultSystemName = "Sistema Financeiro - Torneadora"
	timestampLayout   = "02/01/2006 15:04"
)

// Format identifies an output file type.
type Format string

// Exporter renders a report table to a file at path.
type Exporter interface {
	Export(path string, t report.Table) bool
	Format() Format
}

// Options tune exporter output. Zero values fall back to defaults.
type Options struct {
	SystemName string
	Now        func() time.Time
	Logger     *log.Logger
}

func (o Options) withDefaults() Options {
	if o.SystemName == "" {
		o.SystemName = DefaultSystemName
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.Discard()
	}
	o.Logger = o.Logger.WithComponent(log.ComponentExport)
	return o
}

// FormatFromPath infers the export format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export extension %q", filepath.Ext(path))
	}
}

// New returns the exporter for a format.
func New(format Format, opts Options) (Exporter, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter(opts), nil
	case FormatXLSX:
		return NewXLSXExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ForPath picks the exporter matching path's extension.
func ForPath(path string, opts Options) (Exporter, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return New(f, opts)
}

// CellText renders a typed cell as plain text, as in delimited output.
func CellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return core.FormatDecimalComma(c)
	case core.Date:
		return c.BR()
	case time.Time:
		if c.IsZero() {
			return ""
		}
		return c.Format(timestampLayout)
	case int64:
		return strconv.FormatInt(c, 10)
	case int:
		return strconv.Itoa(c)
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

func logFailure(logger *log.Logger, path string, format Format, rows int, err error) {
	fields := log.NewFields().
		WithOperation(log.OpExport).
		WithExport(path, string(format), rows).
		WithError(err)
	logger.Error("Report export failed", fields.ToSlice()...)
}

func logSuccess(logger *log.Logger, path string, format Format, rows int) {
	fields := log.NewFields().
		WithOperation(log.OpExport).
		WithExport(path, string(format), rows)
	logger.Info("Report exported", fields.ToSlice()...)
}
