package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/repository"
)

// LedgerStore runs serving table mutations in a transaction.
type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(repository.Ledger) error) error
}

// ServingTableStore adds the read side of serving tables.
type ServingTableStore interface {
	LedgerStore
	ListServingTables(ctx context.Context) ([]entity.ServingTable, error)
	GetServingTable(ctx context.Context, id string) (*entity.ServingTable, error)
}

type CreateServingTableRequest struct {
	WaiterID         string              `json:"waiter_id"`
	ServingTableCode int                 `json:"serving_table_code"`
	Order            entity.OrderRequest `json:"order"`
	IdempotencyKey   string              `json:"-"`
}

type AddOrderRequest struct {
	ServingTableID string              `json:"-"`
	WaiterID       string              `json:"waiter_id"`
	Order          entity.OrderRequest `json:"order"`
	IdempotencyKey string              `json:"-"`
}

type UpdateServingTableRequest struct {
	ServingTableID string `json:"-"`
	WaiterID       string `json:"waiter_id"`
	Code           int    `json:"code"`
}

type PayRequest struct {
	ServingTableID string               `json:"-"`
	WaiterID       string               `json:"waiter_id"`
	AmountToPay    int64                `json:"amount_to_pay"`
	Method         entity.PaymentMethod `json:"payment_method"`
	IdempotencyKey string               `json:"-"`
}

// ServingTableService owns a table's running bill: opening it with a first
// order, adding rounds, closing and settling it.
type ServingTableService struct {
	store       ServingTableStore
	events      eventPublisher
	idempotency *IdempotencyGuard
	policy      PaymentPolicy
	now         func() time.Time
}

// NewServingTableService creates a new instance of ServingTableService.
// kafkaWriter and idempotency may be nil; policy defaults to permissive.
func NewServingTableService(store ServingTableStore, kafkaWriter MessageWriter, idempotency *IdempotencyGuard, policy PaymentPolicy) *ServingTableService {
	if policy == nil {
		policy = PermissivePolicy{}
	}
	return &ServingTableService{
		store:       store,
		events:      eventPublisher{writer: kafkaWriter},
		idempotency: idempotency,
		policy:      policy,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ServingTableService) ListServingTables(ctx context.Context) ([]entity.ServingTable, error) {
	tables, err := s.store.ListServingTables(ctx)
	if err != nil {
		return nil, fail(err, "Error while fetching serving tables.")
	}
	if tables == nil {
		tables = []entity.ServingTable{}
	}
	return tables, nil
}

func (s *ServingTableService) GetServingTable(ctx context.Context, id string) (*entity.ServingTable, error) {
	table, err := s.store.GetServingTable(ctx, id)
	if err != nil {
		return nil, fail(lookupError(err, "Serving table was not found."), "Error while fetching serving table.")
	}
	return table, nil
}

// CreateServingTable opens a table for a waiter together with its first
// order and kitchen order. On success the table's total and remaining
// balance equal the order total.
func (s *ServingTableService) CreateServingTable(ctx context.Context, req CreateServingTableRequest) (*entity.ServiceResponse, error) {
	release, err := s.idempotency.Claim(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var table *entity.ServingTable
	var placed *placedOrder
	err = s.store.WithinTx(ctx, func(l repository.Ledger) error {
		waiter, err := l.GetWaiterByID(ctx, req.WaiterID)
		if err != nil {
			return lookupError(err, "Waiter was not found.")
		}

		table = &entity.ServingTable{
			Code:     req.ServingTableCode,
			Status:   entity.StatusReserved,
			WaiterID: waiter.ID,
		}
		if err := l.CreateServingTable(ctx, table); err != nil {
			return err
		}

		placed, err = placeOrder(ctx, l, table, waiter.ID, req.Order, s.now())
		if err != nil {
			return err
		}

		table.AddToBill(placed.order.TotalPrice)
		return saveTable(ctx, l, table)
	})
	if err != nil {
		release(ctx)
		return nil, fail(err, "Error while creating serving table.")
	}

	event := tableEvent(EventTableOpened, table)
	event.OrderID, event.KitchenOrderID = placed.order.ID, placed.kitchenOrder.ID
	s.events.publish(ctx, event)

	logger.Info().Msgf("Serving table %d opened for waiter %s with total %d", table.Code, table.WaiterID, table.TotalPrice)
	return &entity.ServiceResponse{StatusCode: http.StatusOK, Message: "Serving table is successfully created."}, nil
}

// AddOrder places another round on an existing table. The table's total and
// remaining balance grow by the new order's total; amount paid is untouched.
func (s *ServingTableService) AddOrder(ctx context.Context, req AddOrderRequest) (*entity.ServiceResponse, error) {
	release, err := s.idempotency.Claim(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	const missing = "Serving table or waiter were not found."
	var table *entity.ServingTable
	var placed *placedOrder
	err = s.store.WithinTx(ctx, func(l repository.Ledger) error {
		table, err = l.GetServingTableForUpdate(ctx, req.ServingTableID)
		if err != nil {
			return lookupError(err, missing)
		}
		waiter, err := l.GetWaiterByID(ctx, req.WaiterID)
		if err != nil {
			return lookupError(err, missing)
		}

		placed, err = placeOrder(ctx, l, table, waiter.ID, req.Order, s.now())
		if err != nil {
			return err
		}

		table.AddToBill(placed.order.TotalPrice)
		return saveTable(ctx, l, table)
	})
	if err != nil {
		release(ctx)
		return nil, fail(err, "Error while updating serving table.")
	}

	event := tableEvent(EventOrderAdded, table)
	event.OrderID, event.KitchenOrderID = placed.order.ID, placed.kitchenOrder.ID
	event.Amount = placed.order.TotalPrice
	s.events.publish(ctx, event)

	return &entity.ServiceResponse{StatusCode: http.StatusOK, Message: "Serving table is successfully updated."}, nil
}

// UpdateServingTable reassigns a table's code and waiter. The new waiter may
// not already hold another table with that code.
func (s *ServingTableService) UpdateServingTable(ctx context.Context, req UpdateServingTableRequest) (*entity.ServiceResponse, error) {
	var table *entity.ServingTable
	err := s.store.WithinTx(ctx, func(l repository.Ledger) error {
		var err error
		table, err = l.GetServingTableForUpdate(ctx, req.ServingTableID)
		if err != nil {
			return lookupError(err, "Serving table was not found.")
		}
		waiter, err := l.GetWaiterByID(ctx, req.WaiterID)
		if err != nil {
			return lookupError(err, "Waiter was not found.")
		}

		taken, err := l.ServingTableCodeTaken(ctx, waiter.ID, req.Code, table.ID)
		if err != nil {
			return err
		}
		if taken {
			return conflict(fmt.Sprintf("Waiter already has serving table with code: %d", req.Code))
		}

		table.Code = req.Code
		table.WaiterID = waiter.ID
		return saveTable(ctx, l, table)
	})
	if err != nil {
		return nil, fail(err, "Error while updating serving table.")
	}

	s.events.publish(ctx, tableEvent(EventTableUpdated, table))
	return &entity.ServiceResponse{StatusCode: http.StatusOK, Message: "Serving table is successfully updated."}, nil
}

// CloseServingTable marks a table closed whatever its balance. It is an
// administrative override and deletes nothing.
func (s *ServingTableService) CloseServingTable(ctx context.Context, id string) (*entity.ServiceResponse, error) {
	var table *entity.ServingTable
	err := s.store.WithinTx(ctx, func(l repository.Ledger) error {
		var err error
		table, err = l.GetServingTableForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "Serving table was not found.")
		}
		table.Status = entity.StatusClosed
		return saveTable(ctx, l, table)
	})
	if err != nil {
		return nil, fail(err, "Error while closing serving table.")
	}

	s.events.publish(ctx, tableEvent(EventTableClosed, table))
	return &entity.ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Serving table with code: %d is closed successfully.", table.Code),
	}, nil
}

// DeleteServingTable removes a table with its orders, kitchen orders and
// payments.
func (s *ServingTableService) DeleteServingTable(ctx context.Context, id string) (*entity.ServiceResponse, error) {
	var table *entity.ServingTable
	err := s.store.WithinTx(ctx, func(l repository.Ledger) error {
		var err error
		table, err = l.GetServingTableForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "Serving table was not found.")
		}
		return l.DeleteServingTable(ctx, table.ID)
	})
	if err != nil {
		return nil, fail(err, "Error while deleting serving table.")
	}

	s.events.publish(ctx, tableEvent(EventTableDeleted, table))
	return &entity.ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Serving table with code: %d is deleted successfully.", table.Code),
	}, nil
}

// PayServingTable records a payment and applies it to the table's balance.
// A payment row is written for every accepted call; a payment that brings
// the balance to exactly zero closes the table.
func (s *ServingTableService) PayServingTable(ctx context.Context, req PayRequest) (*entity.ServiceResponse, error) {
	method := req.Method
	switch method {
	case "":
		method = entity.PaymentCash
	case entity.PaymentCash, entity.PaymentCard:
	default:
		return nil, badRequest(fmt.Sprintf("Unknown payment method: %s", method))
	}

	release, err := s.idempotency.Claim(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	const missing = "Serving table or waiter were not found."
	var table *entity.ServingTable
	err = s.store.WithinTx(ctx, func(l repository.Ledger) error {
		waiter, err := l.GetWaiterByID(ctx, req.WaiterID)
		if err != nil {
			return lookupError(err, missing)
		}
		table, err = l.GetServingTableForUpdate(ctx, req.ServingTableID)
		if err != nil {
			return lookupError(err, missing)
		}

		if err := s.policy.Validate(table, req.AmountToPay); err != nil {
			return err
		}

		payment := &entity.Payment{
			PaymentDate:    s.now(),
			Method:         method,
			AmountPaid:     req.AmountToPay,
			ServingTableID: table.ID,
			WaiterID:       waiter.ID,
		}
		if err := l.CreatePayment(ctx, payment); err != nil {
			return err
		}

		table.ApplyPayment(req.AmountToPay)
		return saveTable(ctx, l, table)
	})
	if err != nil {
		release(ctx)
		return nil, fail(err, "Error while executing payment for serving table.")
	}

	event := tableEvent(EventPaymentRecorded, table)
	event.Amount = req.AmountToPay
	s.events.publish(ctx, event)
	if table.Status == entity.StatusClosed && table.RemainingBalance == 0 {
		logger.Info().Msgf("Serving table %d settled and closed", table.Code)
	}

	return &entity.ServiceResponse{StatusCode: http.StatusOK, Message: "Payment successful."}, nil
}

// saveTable writes a table after checking total = paid + remaining, so an
// unbalanced table rolls the transaction back instead of being stored.
func saveTable(ctx context.Context, l repository.Ledger, table *entity.ServingTable) error {
	if !table.Balanced() {
		return fmt.Errorf("serving table %s out of balance: total %d, paid %d, remaining %d",
			table.ID, table.TotalPrice, table.AmountPaid, table.RemainingBalance)
	}
	return l.UpdateServingTable(ctx, table)
}
