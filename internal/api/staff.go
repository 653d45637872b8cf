package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/service"
)

type WaiterHandler struct {
	waiterService *service.WaiterService
}

func NewWaiterHandler(waiterService *service.WaiterService) *WaiterHandler {
	return &WaiterHandler{waiterService: waiterService}
}

// ListWaiters --> GET /api/waiters
func (h *WaiterHandler) ListWaiters(c echo.Context) error {
	waiters, err := h.waiterService.ListWaiters(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, waiters)
}

// ListWaitersWithTables --> GET /api/waiters/serving-tables
func (h *WaiterHandler) ListWaitersWithTables(c echo.Context) error {
	waiters, err := h.waiterService.ListWaitersWithReservedTables(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, waiters)
}

// CreateWaiter --> POST /api/waiters
func (h *WaiterHandler) CreateWaiter(c echo.Context) error {
	waiter := entity.Waiter{}
	if err := c.Bind(&waiter); err != nil {
		return invalidPayload(c)
	}
	waiter.ID = ""

	resp, err := h.waiterService.CreateWaiter(c.Request().Context(), &waiter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// UpdateWaiter --> PUT /api/waiters/:id
func (h *WaiterHandler) UpdateWaiter(c echo.Context) error {
	waiter := entity.Waiter{}
	if err := c.Bind(&waiter); err != nil {
		return invalidPayload(c)
	}
	waiter.ID = c.Param("id")

	resp, err := h.waiterService.UpdateWaiter(c.Request().Context(), &waiter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// DeleteWaiter --> DELETE /api/waiters/:id
func (h *WaiterHandler) DeleteWaiter(c echo.Context) error {
	resp, err := h.waiterService.DeleteWaiter(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login answers with the token in the message field --> POST /api/authenticate/login
func (h *AuthHandler) Login(c echo.Context) error {
	creds := service.Credentials{}
	if err := c.Bind(&creds); err != nil {
		return invalidPayload(c)
	}

	resp, err := h.authService.Login(c.Request().Context(), creds)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}
