package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/repository"
)

type placedOrder struct {
	order        *entity.Order
	kitchenOrder *entity.KitchenOrder
}

// placeOrder writes an order, its kitchen ticket and its lines for table,
// then stores the order total computed from the live product prices. The
// caller adds the total to the table's bill.
func placeOrder(ctx context.Context, l repository.Ledger, table *entity.ServingTable, waiterID string, req entity.OrderRequest, now time.Time) (*placedOrder, error) {
	order := &entity.Order{
		Code:           req.Code,
		CreationDate:   now,
		WaiterID:       waiterID,
		ServingTableID: table.ID,
	}
	if err := l.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	kitchenOrder := &entity.KitchenOrder{
		OrderID:        order.ID,
		WaiterID:       waiterID,
		ServingTableID: table.ID,
	}
	if err := l.CreateKitchenOrder(ctx, kitchenOrder); err != nil {
		return nil, err
	}

	for _, item := range req.Lines {
		if item.Quantity <= 0 {
			return nil, badRequest(fmt.Sprintf("Quantity for product %s must be positive.", item.ProductID))
		}
		product, err := l.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, lookupError(err, "Product was not found.")
		}

		line := entity.OrderLine{
			Quantity:  item.Quantity,
			ProductID: product.ID,
			OrderID:   order.ID,
			Product:   product,
		}
		if err := l.CreateOrderLine(ctx, &line); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	order.TotalPrice = entity.LinesTotal(order.Lines)
	if err := l.UpdateOrderTotal(ctx, order.ID, order.TotalPrice); err != nil {
		return nil, err
	}
	return &placedOrder{order: order, kitchenOrder: kitchenOrder}, nil
}

// OrderService removes lines and whole orders from a table's bill.
type OrderService struct {
	store  LedgerStore
	events eventPublisher
}

func NewOrderService(store LedgerStore, kafkaWriter MessageWriter) *OrderService {
	return &OrderService{store: store, events: eventPublisher{writer: kafkaWriter}}
}

// RemoveLine deletes one line from an order and takes its price off the
// order and the table. Removing the last line removes the order as well.
func (s *OrderService) RemoveLine(ctx context.Context, orderID, lineID string) (*entity.ServiceResponse, error) {
	var table *entity.ServingTable
	var line *entity.OrderLine
	var orderRemoved bool
	err := s.store.WithinTx(ctx, func(l repository.Ledger) error {
		order, err := l.GetOrderWithLines(ctx, orderID)
		if err != nil {
			return lookupError(err, "Order was not found.")
		}
		line, err = l.GetOrderLine(ctx, lineID)
		if err != nil {
			return lookupError(err, "Order product was not found.")
		}
		if line.OrderID != order.ID {
			return notFound("Order product was not found.")
		}
		table, err = l.GetServingTableForUpdate(ctx, order.ServingTableID)
		if err != nil {
			return lookupError(err, "Serving table of order was not found.")
		}

		price := line.Price()
		table.RemoveFromBill(price)

		if err := l.DeleteOrderLine(ctx, line.ID); err != nil {
			return err
		}
		if len(order.Lines) == 1 {
			orderRemoved = true
			if err := l.DeleteOrder(ctx, order.ID); err != nil {
				return err
			}
		} else if err := l.UpdateOrderTotal(ctx, order.ID, order.TotalPrice-price); err != nil {
			return err
		}
		return saveTable(ctx, l, table)
	})
	if err != nil {
		return nil, fail(err, "Error while deleting product from Order.")
	}

	event := tableEvent(EventOrderLineRemoved, table)
	event.OrderID = orderID
	event.Amount = line.Price()
	s.events.publish(ctx, event)
	if orderRemoved {
		logger.Info().Msgf("Order %s removed with its last line", orderID)
	}

	return &entity.ServiceResponse{StatusCode: http.StatusOK, Message: "Product is deleted successfully."}, nil
}

// RemoveOrder deletes an order with its lines and kitchen ticket and takes
// its line total off the table. An order without lines is worth 0.
func (s *OrderService) RemoveOrder(ctx context.Context, orderID string) (*entity.ServiceResponse, error) {
	var table *entity.ServingTable
	var total int64
	err := s.store.WithinTx(ctx, func(l repository.Ledger) error {
		order, err := l.GetOrderWithLines(ctx, orderID)
		if err != nil {
			return lookupError(err, "Order was not found.")
		}
		table, err = l.GetServingTableForUpdate(ctx, order.ServingTableID)
		if err != nil {
			return lookupError(err, "Serving table of order was not found.")
		}

		total = entity.LinesTotal(order.Lines)
		table.RemoveFromBill(total)

		if err := l.DeleteOrder(ctx, order.ID); err != nil {
			return err
		}
		return saveTable(ctx, l, table)
	})
	if err != nil {
		return nil, fail(err, "Error while deleting order from serving table.")
	}

	event := tableEvent(EventOrderRemoved, table)
	event.OrderID = orderID
	event.Amount = total
	s.events.publish(ctx, event)

	return &entity.ServiceResponse{StatusCode: http.StatusOK, Message: "Order is deleted successfully."}, nil
}
