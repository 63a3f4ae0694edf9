package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/postgres/generated"
	"github.com/iho/achledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{queries: generated.New(db)}
}

// Create creates a new outbox event within a transaction.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	return mapError(queries.CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
	}))
}

// GetUnpublished retrieves the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	l, _ := pageArgs(limit, 0)
	rows, err := r.queries.GetUnpublishedEvents(ctx, l)
	if err != nil {
		return nil, mapError(err)
	}

	events := make([]*domain.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		event, err := rowToOutboxEvent(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	n, err := r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	})
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeletePublished deletes events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return mapError(r.queries.DeletePublishedEvents(ctx, timeToPgTimestamptz(before)))
}

func rowToOutboxEvent(row generated.OutboxEvent) (*domain.OutboxEvent, error) {
	var payload map[string]any
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		Payload:       payload,
		CreatedAt:     row.CreatedAt.Time,
		Published:     row.Published,
	}
	if row.PublishedAt.Valid {
		t := row.PublishedAt.Time
		event.PublishedAt = &t
	}

	return event, nil
}
