package service

import (
	"context"

	"github.com/google/uuid"

	"letrus_backend/internals/features/finance/payments/model"
	"letrus_backend/internals/features/finance/payments/repository"
	"letrus_backend/internals/helpers/apperror"
)

type PaymentWithReceipt struct {
	model.Payment
	Receipt *model.PaymentReceipt `json:"receipt"`
}

type PaymentQuery struct {
	store repository.Repository
}

func NewPaymentQuery(store repository.Repository) *PaymentQuery { return &PaymentQuery{store: store} }

// Get returns the payment of centerID with its receipt.
func (q *PaymentQuery) Get(ctx context.Context, centerID, id uuid.UUID) (*PaymentWithReceipt, error) {
	p, rc, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.PaymentCenterID != centerID {
		return nil, apperror.ErrNotFound.With("payment %s not found", id)
	}
	return &PaymentWithReceipt{Payment: *p, Receipt: rc}, nil
}

func (q *PaymentQuery) List(ctx context.Context, f repository.Filter, limit, offset int) ([]model.Payment, int64, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, 0, apperror.Validation(map[string][]string{"to": {"gtefield=from"}})
	}
	return q.store.List(ctx, f, limit, offset)
}
