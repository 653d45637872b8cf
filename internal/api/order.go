package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RemoveOrder --> DELETE /api/orders/:id
func (h *OrderHandler) RemoveOrder(c echo.Context) error {
	resp, err := h.orderService.RemoveOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// RemoveLine --> DELETE /api/orders/:id/lines/:lineId
func (h *OrderHandler) RemoveLine(c echo.Context) error {
	resp, err := h.orderService.RemoveLine(c.Request().Context(), c.Param("id"), c.Param("lineId"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

type KitchenOrderHandler struct {
	kitchenOrderService *service.KitchenOrderService
}

func NewKitchenOrderHandler(kitchenOrderService *service.KitchenOrderService) *KitchenOrderHandler {
	return &KitchenOrderHandler{kitchenOrderService: kitchenOrderService}
}

// ListUncompleted --> GET /api/kitchen-orders/uncompleted
func (h *KitchenOrderHandler) ListUncompleted(c echo.Context) error {
	tickets, err := h.kitchenOrderService.ListUncompleted(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// ListCompleted --> GET /api/kitchen-orders/completed/:waiterId
func (h *KitchenOrderHandler) ListCompleted(c echo.Context) error {
	tickets, err := h.kitchenOrderService.ListCompletedForWaiter(c.Request().Context(), c.Param("waiterId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// MarkCompleted --> POST /api/kitchen-orders/:id/complete
func (h *KitchenOrderHandler) MarkCompleted(c echo.Context) error {
	resp, err := h.kitchenOrderService.MarkCompleted(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ListPayments --> GET /api/payments
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	payments, err := h.paymentService.ListPayments(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, payments)
}
