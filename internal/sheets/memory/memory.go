package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"dompet/internal/core"
	ports "dompet/internal/sheets"
)

// Export is one recorded ExportPeriod call.
type Export struct {
	Period       []any
	Transactions [][]any
}

// Exporter keeps exported rows in memory. Used when no spreadsheet is
// configured and by tests.
type Exporter struct {
	mu      sync.Mutex
	exports []Export
}

var _ ports.ArchiveExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// ExportPeriod records the rows and returns a synthetic reference.
func (e *Exporter) ExportPeriod(_ context.Context, p core.Period, txs []core.ArchivedTransaction) (string, error) {
	if p.IsActive {
		return "", fmt.Errorf("period %d is still active", p.ID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports = append(e.exports, Export{
		Period:       ports.PeriodRow(p),
		Transactions: ports.TransactionRows(txs),
	})
	return fmt.Sprintf("mem:%d", len(e.exports)), nil
}

// Exports returns a copy of everything exported so far.
func (e *Exporter) Exports() []Export {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.exports)
}
