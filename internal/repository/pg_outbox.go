package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vcasino_wallet/internal/models"
)

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, e models.OutboxEvent) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO outbox_event (id, aggregate_id, type, payload, status, applicant, created_at, modified_at, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)`,
		e.ID, e.AggregateID, e.Type, e.Payload, e.Status, e.Applicant, e.CreatedAt, e.ModifiedAt)
	return err
}

// PendingEvents returns up to limit PENDING events, oldest first. The
// dispatcher relies on this ordering for per-aggregate delivery order.
func (r *WalletPGRepository) PendingEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, aggregate_id, type, payload, status, applicant, created_at, modified_at, version, attempts
        FROM outbox_event
        WHERE status = $1
        ORDER BY created_at ASC
        LIMIT $2`, models.EventStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to select pending events", slog.Any("err", err))
		return nil, err
	}
	defer rows.Close()

	var events []models.OutboxEvent
	for rows.Next() {
		var e models.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.Type, &e.Payload, &e.Status,
			&e.Applicant, &e.CreatedAt, &e.ModifiedAt, &e.Version, &e.Attempts); err != nil {
			r.logger.Error("Failed to scan outbox event", slog.Any("err", err))
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// HasOlderPending reports whether the wallet has a PENDING event created
// before the given time. Callers use it to keep delivery in creation order.
func (r *WalletPGRepository) HasOlderPending(ctx context.Context, aggregateID int64, before time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM outbox_event
            WHERE aggregate_id = $1 AND status = $2 AND created_at < $3
        )`, aggregateID, models.EventStatusPending, before).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check for older pending events",
			slog.Int64("aggregate_id", aggregateID),
			slog.Any("err", err),
		)
		return false, err
	}
	return exists, nil
}

// EventsByAggregate returns every event of one wallet, oldest first.
func (r *WalletPGRepository) EventsByAggregate(ctx context.Context, aggregateID int64) ([]models.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, aggregate_id, type, payload, status, applicant, created_at, modified_at, version, attempts
        FROM outbox_event
        WHERE aggregate_id = $1
        ORDER BY created_at ASC`, aggregateID)
	if err != nil {
		r.logger.Error("Failed to select events by aggregate",
			slog.Int64("aggregate_id", aggregateID),
			slog.Any("err", err),
		)
		return nil, err
	}
	defer rows.Close()

	var events []models.OutboxEvent
	for rows.Next() {
		var e models.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.Type, &e.Payload, &e.Status,
			&e.Applicant, &e.CreatedAt, &e.ModifiedAt, &e.Version, &e.Attempts); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkEventCompleted transitions a PENDING event to COMPLETED. Completing an
// already-completed event is a no-op so redelivery after a crash between
// delivery and this call stays safe.
func (r *WalletPGRepository) MarkEventCompleted(ctx context.Context, eventID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE outbox_event
        SET status = $1, modified_at = now(), version = version + 1
        WHERE id = $2 AND status = $3`,
		models.EventStatusCompleted, eventID, models.EventStatusPending)
	if err != nil {
		r.logger.Error("Failed to mark event completed",
			slog.String("event_id", eventID.String()),
			slog.Any("err", err),
		)
	}
	return err
}

// RecordDeliveryFailure bumps the attempt counter and, once maxAttempts is
// exhausted, parks the event as FAILED. Returns the resulting status.
func (r *WalletPGRepository) RecordDeliveryFailure(ctx context.Context, eventID uuid.UUID, maxAttempts int) (models.EventStatus, error) {
	var status models.EventStatus
	err := r.pool.QueryRow(ctx, `
        UPDATE outbox_event
        SET attempts = attempts + 1,
            modified_at = now(),
            version = version + 1,
            status = CASE WHEN attempts + 1 >= $2 THEN $3::varchar ELSE status END
        WHERE id = $1 AND status = $4
        RETURNING status`,
		eventID, maxAttempts, models.EventStatusFailed, models.EventStatusPending).Scan(&status)
	if err == pgx.ErrNoRows {
		// Already completed or failed by another instance.
		return "", nil
	}
	if err != nil {
		r.logger.Error("Failed to record delivery failure",
			slog.String("event_id", eventID.String()),
			slog.Any("err", err),
		)
		return "", err
	}
	return status, nil
}

// PendingStats reports the PENDING backlog size and the age of its oldest
// event, for SLA monitoring.
func (r *WalletPGRepository) PendingStats(ctx context.Context) (count int, oldestAge time.Duration, err error) {
	var oldest *time.Time
	err = r.pool.QueryRow(ctx,
		"SELECT count(*), min(created_at) FROM outbox_event WHERE status = $1",
		models.EventStatusPending).Scan(&count, &oldest)
	if err != nil {
		r.logger.Error("Failed to read pending stats", slog.Any("err", err))
		return 0, 0, err
	}
	if oldest != nil {
		oldestAge = time.Since(*oldest)
	}
	return count, oldestAge, nil
}
