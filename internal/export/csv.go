package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"oficina/internal/report"
)

// utf8BOM lets spreadsheet tools detect the encoding.
const utf8BOM = "\ufeff"

// CSVExporter writes semicolon-delimited text with a short header block.
type CSVExporter struct {
	opts Options
}

func NewCSVExporter(opts Options) *CSVExporter {
	return &CSVExporter{opts: opts.withDefaults()}
}

func (e *CSVExporter) Format() Format { return FormatCSV }

// Export writes t to path, replacing any existing file.
func (e *CSVExporter) Export(path string, t report.Table) bool {
	if err := e.writeFile(path, t); err != nil {
		logFailure(e.opts.Logger, path, FormatCSV, t.Len(), err)
		return false
	}
	logSuccess(e.opts.Logger, path, FormatCSV, t.Len())
	return true
}

func (e *CSVExporter) writeFile(path string, t report.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WriteCSV(f, t)
}

// WriteCSV renders t as CSV into w.
//
// Layout: title, "Período: ...", summary, "Total de registros: N", a blank
// line, the column header (line 6), then one line per row.
func WriteCSV(w io.Writer, t report.Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	header := [][]string{
		{t.Title},
		{"Período: " + t.Period},
		{t.Summary},
		{fmt.Sprintf("Total de registros: %d", t.Len())},
		nil,
		t.Columns,
	}
	for _, rec := range header {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range t.Rows {
		rec := make([]string, len(row))
		for j, cell := range row {
			rec[j] = CellText(cell)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
