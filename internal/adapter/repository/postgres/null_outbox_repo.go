package postgres

import (
	"context"
	"time"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

// NullOutboxRepository drops every event. It backs deployments that run
// without an event publisher.
type NullOutboxRepository struct{}

// NewNullOutboxRepository creates a new NullOutboxRepository.
func NewNullOutboxRepository() *NullOutboxRepository {
	return &NullOutboxRepository{}
}

func (r *NullOutboxRepository) Create(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
	return nil
}

func (r *NullOutboxRepository) GetUnpublished(context.Context, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) MarkPublished(context.Context, string, time.Time) error {
	return nil
}

func (r *NullOutboxRepository) DeletePublished(context.Context, time.Time) error {
	return nil
}

var (
	_ usecase.EntryRepository    = (*EntryRepository)(nil)
	_ usecase.GroupRepository    = (*GroupRepository)(nil)
	_ usecase.FileRepository     = (*FileRepository)(nil)
	_ usecase.HolidayRepository  = (*HolidayRepository)(nil)
	_ usecase.SequenceGenerator  = (*SequenceGenerator)(nil)
	_ usecase.OutboxRepository   = (*OutboxRepository)(nil)
	_ usecase.OutboxRepository   = (*NullOutboxRepository)(nil)
	_ usecase.TransactionManager = (*TxManager)(nil)
	_ usecase.Retrier            = (*Retrier)(nil)
	_ usecase.IDGenerator        = (*ULIDGenerator)(nil)
)
