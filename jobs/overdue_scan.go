package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/smartdine/smartdine/internal/corporate"
	"github.com/smartdine/smartdine/internal/observability"
)

// OverdueScanJob flips sent invoices past their due date to overdue and
// sends the account a payment reminder for each one.
type OverdueScanJob struct {
	Service *corporate.Service
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewOverdueScanJob initialises the overdue sweep handler.
func NewOverdueScanJob(service *corporate.Service, logger *slog.Logger, metrics *observability.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one sweep.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("overdue scan: handler not configured")
	}

	start := j.clock()
	flipped, err := j.Service.MarkOverdueInvoices(ctx, start)
	if err != nil {
		j.Metrics.ObserveJob(TaskTypeOverdueScan, "error")
		j.Logger.Error("overdue scan failed", slog.Any("error", err))
		return err
	}

	for _, inv := range flipped {
		j.Logger.Warn("invoice overdue",
			slog.Int64("invoice_id", inv.ID),
			slog.String("invoice_number", inv.InvoiceNumber),
			slog.Int64("account_id", inv.AccountID),
			slog.Time("due_date", inv.DueDate),
		)
		if err := j.Service.SendPaymentReminder(ctx, inv.ID); err != nil {
			j.Logger.Error("overdue reminder",
				slog.Int64("invoice_id", inv.ID),
				slog.Any("error", err),
			)
		}
	}

	j.Metrics.ObserveJob(TaskTypeOverdueScan, "ok")
	j.Logger.Info("completed overdue scan",
		slog.Int("flipped", len(flipped)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
