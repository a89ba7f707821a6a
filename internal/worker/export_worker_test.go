package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/period"
	sheetsmem "dompet/internal/sheets/memory"
	"dompet/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingExporter struct{ calls int }

func (f *failingExporter) ExportPeriod(context.Context, core.Period, []core.ArchivedTransaction) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

// archivePeriod creates a period with one transaction and resets it.
func archivePeriod(t *testing.T, store *memory.Store, userID int64) core.Period {
	t.Helper()
	ctx := context.Background()
	m := period.NewManager(store, log.Discard(), nil)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	p, err := m.GetOrCreateActivePeriod(ctx, userID, now)
	require.NoError(t, err)
	pid := p.ID
	_, err = store.CreateTransaction(ctx, core.Transaction{
		UserID: userID, PeriodID: &pid, Name: "rent", Amount: core.Money{Cents: 1000},
		Date: core.NewDate(2025, 3, 2), Kind: core.Expense, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	res, err := m.ResetPeriod(ctx, userID, core.NewDate(2025, 3, 20), now.AddDate(0, 0, 10))
	require.NoError(t, err)
	return *res.Archived
}

func TestHandlePeriodArchivedExportsOnce(t *testing.T) {
	store := memory.New()
	exporter := sheetsmem.New()
	w := NewExportWorker(store, exporter, 10)
	archived := archivePeriod(t, store, 1)

	msg := amqp.NewPeriodArchivedMessage(archived.ID, 1, time.Now())
	require.NoError(t, w.HandlePeriodArchived(context.Background(), msg))
	require.NoError(t, w.HandlePeriodArchived(context.Background(), msg), "redelivery is acknowledged")

	exports := exporter.Exports()
	require.Len(t, exports, 1)
	assert.Len(t, exports[0].Transactions, 1)

	p, err := store.GetPeriod(context.Background(), 1, archived.ID)
	require.NoError(t, err)
	assert.NotNil(t, p.ExportedAt)
}

func TestHandlePeriodArchivedUnknownPeriod(t *testing.T) {
	w := NewExportWorker(memory.New(), sheetsmem.New(), 10)
	msg := amqp.NewPeriodArchivedMessage(99, 1, time.Now())
	assert.NoError(t, w.HandlePeriodArchived(context.Background(), msg))
}

func TestProcessPendingSweepsUnexportedPeriods(t *testing.T) {
	store := memory.New()
	exporter := sheetsmem.New()
	w := NewExportWorker(store, exporter, 10)
	archivePeriod(t, store, 1)
	archivePeriod(t, store, 2)

	n, err := w.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, exporter.Exports(), 2)

	n, err = w.StartupCheck(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFailedExportStaysPending(t *testing.T) {
	store := memory.New()
	exporter := &failingExporter{}
	w := NewExportWorker(store, exporter, 10)
	archived := archivePeriod(t, store, 1)

	n, err := w.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, exporter.calls)

	pending, err := store.ListUnexportedPeriods(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, archived.ID, pending[0].ID)

	err = w.HandlePeriodArchived(context.Background(), amqp.NewPeriodArchivedMessage(archived.ID, 1, time.Now()))
	assert.Error(t, err, "handler errors requeue the message")
}
