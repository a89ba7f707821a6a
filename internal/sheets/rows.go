package sheets

import (
	"strconv"

	"dompet/internal/core"
)

// Header rows of the export sheets.
var (
	PeriodHeader      = []any{"Period ID", "User ID", "Name", "Start", "End", "Income", "Expense", "Net", "Transactions"}
	TransactionHeader = []any{"Period ID", "User ID", "Date", "Name", "Kind", "Amount", "Category ID", "Created", "Archived"}
)

// PeriodRow is the summary row of an archived period. Amounts are decimal
// strings so the sheet parses them as numbers.
func PeriodRow(p core.Period) []any {
	return []any{
		p.ID,
		p.UserID,
		p.Name,
		p.StartDate.String(),
		p.EndDate.String(),
		p.Stats.Income.String(),
		p.Stats.Expense.String(),
		core.CentsString(p.Stats.Net),
		p.Stats.Count,
	}
}

// TransactionRows returns one row per archived transaction.
func TransactionRows(txs []core.ArchivedTransaction) [][]any {
	rows := make([][]any, 0, len(txs))
	for _, t := range txs {
		category := ""
		if t.CategoryID != nil {
			category = strconv.FormatInt(*t.CategoryID, 10)
		}
		rows = append(rows, []any{
			t.PeriodID,
			t.UserID,
			t.Date.String(),
			t.Name,
			string(t.Kind),
			t.Amount.String(),
			category,
			t.OriginalCreatedAt.UTC().Format("2006-01-02 15:04:05"),
			t.ArchivedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}
