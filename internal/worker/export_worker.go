package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/sheets"
)

// ArchiveStore is the storage the export worker reads from.
type ArchiveStore interface {
	GetPeriod(ctx context.Context, userID, periodID int64) (core.Period, error)
	ListArchivedTransactions(ctx context.Context, periodID int64, page core.Page) ([]core.ArchivedTransaction, error)
	ListUnexportedPeriods(ctx context.Context, limit int) ([]core.Period, error)
	MarkPeriodExported(ctx context.Context, periodID int64, at time.Time) error
}

// ExportWorker copies archived periods to the spreadsheet exporter. Periods
// are exported once; a period stays pending until MarkPeriodExported succeeds.
type ExportWorker struct {
	store       ArchiveStore
	exporter    sheets.ArchiveExporter
	batchSize   int
	concurrency int
	now         func() time.Time
}

func NewExportWorker(store ArchiveStore, exporter sheets.ArchiveExporter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{
		store:       store,
		exporter:    exporter,
		batchSize:   batchSize,
		concurrency: 4,
		now:         time.Now,
	}
}

// HandlePeriodArchived processes a single period archived message from AMQP.
// Redelivered messages for an already exported period are acknowledged.
func (w *ExportWorker) HandlePeriodArchived(ctx context.Context, msg *amqp.PeriodArchivedMessage) error {
	slog.InfoContext(ctx, "Processing period archived message",
		"message_id", msg.MessageID,
		"period_id", msg.PeriodID)

	p, err := w.store.GetPeriod(ctx, msg.UserID, msg.PeriodID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Archived period not found, dropping message", "period_id", msg.PeriodID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get period: %w", err)
	}
	if p.ExportedAt != nil {
		slog.InfoContext(ctx, "Period already exported", "period_id", p.ID)
		return nil
	}
	if p.IsActive {
		slog.WarnContext(ctx, "Period is still active, skipping export", "period_id", p.ID)
		return nil
	}
	return w.export(ctx, p)
}

// ProcessPending exports periods whose message was lost or whose export
// failed. This is the backup path next to AMQP.
func (w *ExportWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processBatch(ctx, w.batchSize)
}

// StartupCheck runs a larger pending sweep to catch up after downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) (int, error) {
	n, err := w.processBatch(ctx, w.batchSize*5)
	if err != nil {
		return n, fmt.Errorf("startup export check: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "No pending periods found on startup")
	}
	return n, nil
}

func (w *ExportWorker) processBatch(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.ListUnexportedPeriods(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending periods: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending periods", "count", len(pending))

	var exported, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, p := range pending {
		g.Go(func() error {
			if err := w.export(gctx, p); err != nil {
				// One failing period must not stop the rest of the batch.
				slog.ErrorContext(gctx, "Failed to export period", "period_id", p.ID, "error", err)
				failed.Add(1)
				return nil
			}
			exported.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(exported.Load()), err
	}

	slog.InfoContext(ctx, "Pending export sweep finished",
		"exported", exported.Load(),
		"failed", failed.Load())
	return int(exported.Load()), nil
}

// Run sweeps pending periods every interval until ctx is done.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export sweep failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) export(ctx context.Context, p core.Period) error {
	txs, err := w.store.ListArchivedTransactions(ctx, p.ID, core.Page{})
	if err != nil {
		return fmt.Errorf("list archived transactions: %w", err)
	}
	ref, err := w.exporter.ExportPeriod(ctx, p, txs)
	if err != nil {
		return fmt.Errorf("export period %d: %w", p.ID, err)
	}
	if err := w.store.MarkPeriodExported(ctx, p.ID, w.now()); err != nil {
		return fmt.Errorf("mark period %d exported: %w", p.ID, err)
	}
	slog.InfoContext(ctx, "Period exported",
		"period_id", p.ID,
		"transactions", len(txs),
		"sheets_ref", ref)
	return nil
}
