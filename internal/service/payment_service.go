package service

import (
	"context"

	"restaurant-pos/internal/entity"
)

type PaymentStore interface {
	ListPayments(ctx context.Context) ([]entity.Payment, error)
}

type PaymentService struct {
	store PaymentStore
}

func NewPaymentService(store PaymentStore) *PaymentService {
	return &PaymentService{store: store}
}

// ListPayments returns every recorded payment with the name of the waiter
// who took it.
func (s *PaymentService) ListPayments(ctx context.Context) ([]entity.Payment, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fail(err, "Error while fetching payments.")
	}
	if payments == nil {
		payments = []entity.Payment{}
	}
	return payments, nil
}
