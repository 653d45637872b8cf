package service

import (
	"context"
	"net/http"

	"restaurant-pos/internal/entity"
)

type KitchenOrderStore interface {
	GetKitchenOrder(ctx context.Context, id string) (*entity.KitchenOrder, error)
	SetKitchenOrderCompleted(ctx context.Context, id string) error
	ListUncompletedKitchenOrders(ctx context.Context, excludeCategory entity.ProductCategory) ([]entity.KitchenOrder, error)
	ListCompletedKitchenOrders(ctx context.Context, waiterID string) ([]entity.KitchenOrder, error)
}

// KitchenOrderService serves the kitchen's view of placed orders.
type KitchenOrderService struct {
	store  KitchenOrderStore
	events eventPublisher
}

func NewKitchenOrderService(store KitchenOrderStore, kafkaWriter MessageWriter) *KitchenOrderService {
	return &KitchenOrderService{store: store, events: eventPublisher{writer: kafkaWriter}}
}

// ListUncompleted returns the open tickets. Drinks are served at the bar,
// so their lines are left out.
func (s *KitchenOrderService) ListUncompleted(ctx context.Context) ([]entity.KitchenOrder, error) {
	tickets, err := s.store.ListUncompletedKitchenOrders(ctx, entity.CategoryDrinks)
	if err != nil {
		return nil, fail(err, "Error while fetching uncompleted kitchen orders.")
	}
	if tickets == nil {
		tickets = []entity.KitchenOrder{}
	}
	return tickets, nil
}

func (s *KitchenOrderService) ListCompletedForWaiter(ctx context.Context, waiterID string) ([]entity.KitchenOrder, error) {
	tickets, err := s.store.ListCompletedKitchenOrders(ctx, waiterID)
	if err != nil {
		return nil, fail(err, "Error while fetching completed kitchen orders.")
	}
	if tickets == nil {
		tickets = []entity.KitchenOrder{}
	}
	return tickets, nil
}

// MarkCompleted sets the ticket completed. Marking a completed ticket again
// succeeds without changing anything.
func (s *KitchenOrderService) MarkCompleted(ctx context.Context, id string) (*entity.ServiceResponse, error) {
	ticket, err := s.store.GetKitchenOrder(ctx, id)
	if err != nil {
		return nil, fail(lookupError(err, "Kitchen order was not found."), "Error while making order as completed.")
	}

	if !ticket.Completed {
		if err := s.store.SetKitchenOrderCompleted(ctx, ticket.ID); err != nil {
			return nil, fail(err, "Error while making order as completed.")
		}
		s.events.publish(ctx, entity.ServingTableEvent{
			Type:           EventKitchenCompleted,
			ServingTableID: ticket.ServingTableID,
			OrderID:        ticket.OrderID,
			KitchenOrderID: ticket.ID,
			WaiterID:       ticket.WaiterID,
		})
	}

	return &entity.ServiceResponse{StatusCode: http.StatusOK, Message: "Order is marked as completed."}, nil
}
