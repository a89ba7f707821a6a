package sheets

import (
	"context"

	"dompet/internal/core"
)

// Ports for outbound adapters.
type (
	// ArchiveExporter writes an archived period and its transactions to an
	// external spreadsheet. It must be safe to retry: the worker only marks a
	// period exported after ExportPeriod succeeds.
	ArchiveExporter interface {
		ExportPeriod(ctx context.Context, p core.Period, txs []core.ArchivedTransaction) (ref string, err error)
	}
)
