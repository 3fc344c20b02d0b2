package google

import (
	"fmt"
	"strings"
	"time"

	"budget/internal/core"
	ports "budget/internal/sheets"
)

func headerRow() []any {
	out := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		out[i] = h
	}
	return out
}

// transactionRow renders t in sheet column order. Rows are written with
// USER_ENTERED so text cells go through sheetText.
func transactionRow(t core.Transaction) []any {
	return []any{
		sheetText(t.ID),
		sheetText(t.OwnerID),
		t.Date.String(),
		string(t.Kind),
		sheetText(t.Category),
		t.Amount.Float64(),
		t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// sheetText quotes values Sheets would otherwise evaluate as a formula.
// The leading apostrophe is not part of the stored value.
func sheetText(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// findRowByID returns the 1-based sheet row whose first cell equals id, or 0.
func findRowByID(values [][]any, id string) int {
	if id == "" {
		return 0
	}
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

func rowRange(sheet string, n int) string {
	return fmt.Sprintf("%s!A%d:G%d", sheet, n, n)
}
