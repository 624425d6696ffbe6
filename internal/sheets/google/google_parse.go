package google

import (
	"fmt"
	"strconv"
	"strings"

	"oficina/internal/core"
)

func rowKey(kind core.Kind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// a1 qualifies rng with a quoted sheet name.
func a1(sheet, rng string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + rng
}

// columnName converts a 1-based column number to its letters (1 → A, 27 → AA).
func columnName(n int) string {
	if n < 1 {
		n = 1
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// rowRange spans cols columns of one line, e.g. A5:E5.
func rowRange(line, cols int) string {
	return fmt.Sprintf("A%d:%s%d", line, columnName(cols), line)
}

// findRow returns the 1-based line whose column A holds id.
func findRow(values [][]any, id int64) (int, bool) {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64)
		if err == nil && n == id {
			return i + 1, true
		}
	}
	return 0, false
}

// nextRow is the first line after the used part of column A. Line 1 is the header.
func nextRow(values [][]any) int {
	if len(values) < 1 {
		return 2
	}
	return len(values) + 1
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func containsTitle(titles []string, title string) bool {
	for _, t := range titles {
		if strings.EqualFold(strings.TrimSpace(t), title) {
			return true
		}
	}
	return false
}
