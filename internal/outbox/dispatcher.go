package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vcasino_wallet/internal/metrics"
	"vcasino_wallet/internal/models"
)

//go:generate mockgen -source=dispatcher.go -destination=../../test/mock_outbox.go -package=test Repository,Sink

type Repository interface {
	PendingEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkEventCompleted(ctx context.Context, eventID uuid.UUID) error
	RecordDeliveryFailure(ctx context.Context, eventID uuid.UUID, maxAttempts int) (models.EventStatus, error)
	PendingStats(ctx context.Context) (int, time.Duration, error)
}

// Sink delivers one event to its applicant. A non-nil error leaves the
// event PENDING for the next scan.
type Sink interface {
	Deliver(ctx context.Context, event models.OutboxEvent) error
}

// Dispatcher scans PENDING events oldest-first and pushes them through the
// sink. Per wallet, a failed delivery blocks the rest of that wallet's
// events until the next scan.
type Dispatcher struct {
	repo        Repository
	sink        Sink
	logger      *slog.Logger
	metrics     *metrics.Outbox
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewDispatcher(
	repo Repository,
	sink Sink,
	logger *slog.Logger,
	m *metrics.Outbox,
	interval time.Duration,
	batchSize int,
	maxAttempts int,
) *Dispatcher {
	return &Dispatcher{
		repo:        repo,
		sink:        sink,
		logger:      logger,
		metrics:     m,
		interval:    interval,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("Outbox dispatcher started", slog.Duration("interval", d.interval))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.Flush(ctx); err != nil {
				d.logger.Error("Outbox flush failed", slog.Any("err", err))
			}
			d.observeBacklog(ctx)
		}
	}
}

// Flush delivers one batch of pending events.
func (d *Dispatcher) Flush(ctx context.Context) error {
	events, err := d.repo.PendingEvents(ctx, d.batchSize)
	if err != nil {
		return err
	}

	// aggregates whose delivery failed in this pass
	blocked := make(map[int64]struct{})

	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, skip := blocked[event.AggregateID]; skip {
			continue
		}

		if err := d.sink.Deliver(ctx, event); err != nil {
			blocked[event.AggregateID] = struct{}{}
			d.handleFailure(ctx, event, err)
			continue
		}

		if err := d.repo.MarkEventCompleted(ctx, event.ID); err != nil {
			// Delivered but not marked: redelivered next scan, the
			// applicant deduplicates by event id.
			blocked[event.AggregateID] = struct{}{}
			continue
		}
		d.metrics.Deliveries.WithLabelValues("completed").Inc()
	}
	return nil
}

func (d *Dispatcher) handleFailure(ctx context.Context, event models.OutboxEvent, cause error) {
	status, err := d.repo.RecordDeliveryFailure(ctx, event.ID, d.maxAttempts)
	if err != nil {
		return
	}
	if status == models.EventStatusFailed {
		d.metrics.Deliveries.WithLabelValues("failed").Inc()
		d.logger.Error("Outbox event exhausted delivery attempts",
			slog.String("event_id", event.ID.String()),
			slog.Int64("aggregate_id", event.AggregateID),
			slog.Any("err", cause),
		)
		return
	}
	d.metrics.Deliveries.WithLabelValues("retry").Inc()
	d.logger.Warn("Outbox delivery failed, will retry",
		slog.String("event_id", event.ID.String()),
		slog.Int64("aggregate_id", event.AggregateID),
		slog.Int("attempts", event.Attempts+1),
		slog.Any("err", cause),
	)
}

func (d *Dispatcher) observeBacklog(ctx context.Context) {
	count, oldestAge, err := d.repo.PendingStats(ctx)
	if err != nil {
		return
	}
	d.metrics.ObserveBacklog(count, oldestAge)
}
