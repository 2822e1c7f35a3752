package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/monitoring"
	"github.com/teresa-solution/firm-management-service/internal/store"
)

// DefaultSweepBatch caps the invoices one sweep transaction touches.
const DefaultSweepBatch = 500

type OverdueStore interface {
	SweepOverdue(ctx context.Context, now time.Time, limit int) ([]store.OverdueUpdate, error)
}

// OverdueSweeper periodically moves sent invoices past their due date to
// overdue, so stored statuses match what DeriveInvoiceStatus reports.
type OverdueSweeper struct {
	repo     OverdueStore
	interval time.Duration
	batch    int
	now      func() time.Time
	log      zerolog.Logger
}

func NewOverdueSweeper(repo OverdueStore, interval time.Duration) *OverdueSweeper {
	return &OverdueSweeper{
		repo:     repo,
		interval: interval,
		batch:    DefaultSweepBatch,
		now:      time.Now,
		log:      logger.WithComponent("overdue-sweeper"),
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (w *OverdueSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.interval).Msg("Starting overdue invoice sweeper")
	for {
		w.runOnce(ctx)
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Overdue invoice sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *OverdueSweeper) runOnce(ctx context.Context) {
	n, err := w.Sweep(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		monitoring.SweeperRuns.WithLabelValues("failed").Inc()
		w.log.Error().Err(err).Int("marked", n).Msg("Overdue sweep failed")
		monitoring.Alert("overdue invoice sweep failed", map[string]string{
			"marked": strconv.Itoa(n),
			"error":  err.Error(),
		})
		return
	}
	monitoring.SweeperRuns.WithLabelValues("success").Inc()
	if n > 0 {
		w.log.Info().Int("marked", n).Msg("Invoices marked overdue")
	}
}

// Sweep processes batches until a batch comes back short and returns the
// number of invoices marked overdue.
func (w *OverdueSweeper) Sweep(ctx context.Context) (int, error) {
	now := w.now()
	total := 0
	for {
		updates, err := w.repo.SweepOverdue(ctx, now, w.batch)
		if err != nil {
			return total, err
		}
		for _, u := range updates {
			w.log.Debug().
				Str("tenant_id", u.TenantID.String()).
				Str("invoice_number", u.InvoiceNumber).
				Msg("Invoice is overdue")
		}
		total += len(updates)
		monitoring.InvoicesMarkedOverdue.Add(float64(len(updates)))
		if len(updates) < w.batch {
			return total, nil
		}
	}
}
