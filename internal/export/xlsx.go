package export

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"oficina/internal/core"
	"oficina/internal/report"
)

const (
	sheetName = "Relatório"

	colorSystem  = "1F4E79"
	colorTitle   = "333333"
	colorMeta    = "555555"
	colorBanner  = "00B33C"
	colorHeader  = "1F4E79"
	colorZebra   = "F5F5F5"
	colorBorder  = "CCCCCC"
	colorWhite   = "FFFFFF"
	fontFamily   = "Calibri"
	maxColWidth  = 50
	widthSamples = 100
)

const (
	numFmtCurrency = `"R$" #,##0.00`
	numFmtDate     = "dd/mm/yyyy"
	numFmtDateTime = "dd/mm/yyyy hh:mm"
)

// XLSXExporter writes a single styled worksheet.
type XLSXExporter struct {
	opts Options
}

func NewXLSXExporter(opts Options) *XLSXExporter {
	return &XLSXExporter{opts: opts.withDefaults()}
}

func (e *XLSXExporter) Format() Format { return FormatXLSX }

// Export writes t to path, replacing any existing file.
func (e *XLSXExporter) Export(path string, t report.Table) bool {
	if err := e.writeFile(path, t); err != nil {
		logFailure(e.opts.Logger, path, FormatXLSX, t.Len(), err)
		return false
	}
	logSuccess(e.opts.Logger, path, FormatXLSX, t.Len())
	return true
}

func (e *XLSXExporter) writeFile(path string, t report.Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	w, err := newSheetWriter(f, len(t.Columns))
	if err != nil {
		return err
	}
	if err := w.writeHeaderBlock(t, e.opts.SystemName, e.opts.Now()); err != nil {
		return fmt.Errorf("write header block: %w", err)
	}
	if err := w.writeTable(t); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	if err := w.fitColumns(t); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// cellKind selects the number format of a data cell.
type cellKind int

const (
	kindText cellKind = iota
	kindCurrency
	kindDate
	kindDateTime
)

type dataStyleKey struct {
	kind  cellKind
	zebra bool
}

type sheetWriter struct {
	f       *excelize.File
	cols    int
	lastCol string
	row     int

	system, title, metaLabel, metaValue, banner, header int
	data                                                map[dataStyleKey]int
}

func newSheetWriter(f *excelize.File, cols int) (*sheetWriter, error) {
	if cols < 1 {
		cols = 1
	}
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, cols: cols, lastCol: lastCol, row: 1, data: make(map[dataStyleKey]int)}
	if err := w.buildStyles(); err != nil {
		return nil, fmt.Errorf("build styles: %w", err)
	}
	return w, nil
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	out := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		out = append(out, excelize.Border{Type: s, Color: colorBorder, Style: 1})
	}
	return out
}

func (w *sheetWriter) buildStyles() error {
	var err error
	font := func(size float64, bold bool, color string) *excelize.Font {
		return &excelize.Font{Family: fontFamily, Size: size, Bold: bold, Color: color}
	}

	if w.system, err = w.f.NewStyle(&excelize.Style{Font: font(16, true, colorSystem)}); err != nil {
		return err
	}
	if w.title, err = w.f.NewStyle(&excelize.Style{Font: font(14, true, colorTitle)}); err != nil {
		return err
	}
	if w.metaLabel, err = w.f.NewStyle(&excelize.Style{Font: font(11, true, colorTitle)}); err != nil {
		return err
	}
	if w.metaValue, err = w.f.NewStyle(&excelize.Style{
		Font:      font(11, false, colorMeta),
		Alignment: &excelize.Alignment{Horizontal: "left"},
	}); err != nil {
		return err
	}
	if w.banner, err = w.f.NewStyle(&excelize.Style{
		Font:      font(12, true, colorWhite),
		Fill:      solid(colorBanner),
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return err
	}
	if w.header, err = w.f.NewStyle(&excelize.Style{
		Font:      font(11, true, colorWhite),
		Fill:      solid(colorHeader),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return err
	}

	formats := map[cellKind]string{
		kindCurrency: numFmtCurrency,
		kindDate:     numFmtDate,
		kindDateTime: numFmtDateTime,
	}
	for _, kind := range []cellKind{kindText, kindCurrency, kindDate, kindDateTime} {
		for _, zebra := range []bool{false, true} {
			style := &excelize.Style{
				Font:      font(11, false, ""),
				Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
				Border:    thinBorders(),
			}
			if zebra {
				style.Fill = solid(colorZebra)
			}
			if fmtCode, ok := formats[kind]; ok {
				code := fmtCode
				style.CustomNumFmt = &code
			}
			id, err := w.f.NewStyle(style)
			if err != nil {
				return err
			}
			w.data[dataStyleKey{kind: kind, zebra: zebra}] = id
		}
	}
	return nil
}

func (w *sheetWriter) cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// mergedLine writes value in column A, merges it across span columns and styles it.
func (w *sheetWriter) mergedLine(value string, span, style int) error {
	first := w.cell(1, w.row)
	last := w.cell(span, w.row)
	if err := w.f.SetCellValue(sheetName, first, value); err != nil {
		return err
	}
	if span > 1 {
		if err := w.f.MergeCell(sheetName, first, last); err != nil {
			return err
		}
	}
	return w.f.SetCellStyle(sheetName, first, last, style)
}

func (w *sheetWriter) metaLine(label string, value any) error {
	if err := w.f.SetCellValue(sheetName, w.cell(1, w.row), label); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheetName, w.cell(1, w.row), w.cell(1, w.row), w.metaLabel); err != nil {
		return err
	}
	if err := w.f.SetCellValue(sheetName, w.cell(2, w.row), value); err != nil {
		return err
	}
	return w.f.SetCellStyle(sheetName, w.cell(2, w.row), w.cell(2, w.row), w.metaValue)
}

// writeHeaderBlock fills rows 1 through 9: system name, title, period,
// issue time, record count and the summary banner.
func (w *sheetWriter) writeHeaderBlock(t report.Table, systemName string, issuedAt time.Time) error {
	if err := w.mergedLine(systemName, w.cols, w.system); err != nil {
		return err
	}
	w.row++
	if err := w.mergedLine(t.Title, w.cols, w.title); err != nil {
		return err
	}
	w.row += 2

	meta := []struct {
		label string
		value any
	}{
		{"Período:", t.Period},
		{"Emitido em:", issuedAt.Format("02/01/2006") + " às " + issuedAt.Format("15:04")},
		{"Total de registros:", t.Len()},
	}
	for _, m := range meta {
		if err := w.metaLine(m.label, m.value); err != nil {
			return err
		}
		w.row++
	}
	w.row++

	if err := w.mergedLine(t.Summary, min(3, w.cols), w.banner); err != nil {
		return err
	}
	w.row += 2
	return nil
}

func (w *sheetWriter) writeTable(t report.Table) error {
	headerRow := w.row
	for i, name := range t.Columns {
		if err := w.f.SetCellValue(sheetName, w.cell(i+1, w.row), name); err != nil {
			return err
		}
	}
	if err := w.f.SetCellStyle(sheetName, w.cell(1, w.row), w.cell(w.cols, w.row), w.header); err != nil {
		return err
	}
	w.row++

	for i, row := range t.Rows {
		zebra := i%2 == 1
		for j, v := range row {
			ref := w.cell(j+1, w.row)
			value, kind := excelValue(v)
			if err := w.f.SetCellValue(sheetName, ref, value); err != nil {
				return err
			}
			if err := w.f.SetCellStyle(sheetName, ref, ref, w.data[dataStyleKey{kind: kind, zebra: zebra}]); err != nil {
				return err
			}
		}
		w.row++
	}

	filterRef := fmt.Sprintf("A%d:%s%d", headerRow, w.lastCol, w.row-1)
	if err := w.f.AutoFilter(sheetName, filterRef, nil); err != nil {
		return err
	}
	return w.f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	})
}

// excelValue converts a report cell into a native spreadsheet value.
func excelValue(v any) (any, cellKind) {
	switch c := v.(type) {
	case nil:
		return "", kindText
	case decimal.Decimal:
		return c.InexactFloat64(), kindCurrency
	case core.Date:
		if c.IsEmpty() {
			return "", kindText
		}
		return c.Time, kindDate
	case time.Time:
		if c.IsZero() {
			return "", kindText
		}
		return c, kindDateTime
	case int64, int, string:
		return c, kindText
	default:
		return fmt.Sprint(c), kindText
	}
}

// displayWidth estimates how many characters a cell needs on screen.
func displayWidth(v any) int {
	switch c := v.(type) {
	case nil:
		return 0
	case decimal.Decimal:
		return utf8.RuneCountInString(core.FormatBRL(c))
	case core.Date:
		return 12
	case time.Time:
		return 16
	default:
		return utf8.RuneCountInString(CellText(c))
	}
}

func (w *sheetWriter) fitColumns(t report.Table) error {
	for i, name := range t.Columns {
		width := utf8.RuneCountInString(name) + 2
		for r, row := range t.Rows {
			if r == widthSamples {
				break
			}
			if i < len(row) {
				width = max(width, displayWidth(row[i]))
			}
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(sheetName, col, col, float64(min(width+3, maxColWidth))); err != nil {
			return err
		}
	}
	return nil
}
