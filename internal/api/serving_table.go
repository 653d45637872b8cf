package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/service"
)

type ServingTableHandler struct {
	servingTableService *service.ServingTableService
}

func NewServingTableHandler(servingTableService *service.ServingTableService) *ServingTableHandler {
	return &ServingTableHandler{servingTableService: servingTableService}
}

// ListServingTables --> GET /api/serving-tables
func (h *ServingTableHandler) ListServingTables(c echo.Context) error {
	tables, err := h.servingTableService.ListServingTables(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tables)
}

// GetServingTable --> GET /api/serving-tables/:id
func (h *ServingTableHandler) GetServingTable(c echo.Context) error {
	table, err := h.servingTableService.GetServingTable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// CreateServingTable opens a table with its first order --> POST /api/serving-tables
func (h *ServingTableHandler) CreateServingTable(c echo.Context) error {
	req := service.CreateServingTableRequest{}
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	req.IdempotencyKey = c.Request().Header.Get(IdempotencyHeader)

	resp, err := h.servingTableService.CreateServingTable(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// AddOrder --> POST /api/serving-tables/:id/orders
func (h *ServingTableHandler) AddOrder(c echo.Context) error {
	req := service.AddOrderRequest{}
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	req.ServingTableID = c.Param("id")
	req.IdempotencyKey = c.Request().Header.Get(IdempotencyHeader)

	resp, err := h.servingTableService.AddOrder(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// UpdateServingTable --> PUT /api/serving-tables/:id
func (h *ServingTableHandler) UpdateServingTable(c echo.Context) error {
	req := service.UpdateServingTableRequest{}
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	req.ServingTableID = c.Param("id")

	resp, err := h.servingTableService.UpdateServingTable(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// CloseServingTable --> POST /api/serving-tables/:id/close
func (h *ServingTableHandler) CloseServingTable(c echo.Context) error {
	resp, err := h.servingTableService.CloseServingTable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// DeleteServingTable --> DELETE /api/serving-tables/:id
func (h *ServingTableHandler) DeleteServingTable(c echo.Context) error {
	resp, err := h.servingTableService.DeleteServingTable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// PayServingTable --> POST /api/serving-tables/:id/payments
func (h *ServingTableHandler) PayServingTable(c echo.Context) error {
	req := service.PayRequest{}
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	req.ServingTableID = c.Param("id")
	req.IdempotencyKey = c.Request().Header.Get(IdempotencyHeader)

	resp, err := h.servingTableService.PayServingTable(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}
