package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts --> GET /api/products and GET /api/public/products
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productService.ListProducts(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProduct --> POST /api/products
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return invalidPayload(c)
	}
	product.ID = ""

	resp, err := h.productService.CreateProduct(c.Request().Context(), &product)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// UpdateProduct --> PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return invalidPayload(c)
	}
	product.ID = c.Param("id")

	resp, err := h.productService.UpdateProduct(c.Request().Context(), &product)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// DeleteProduct --> DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	resp, err := h.productService.DeleteProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

type IngredientHandler struct {
	ingredientService *service.IngredientService
}

func NewIngredientHandler(ingredientService *service.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

// ListIngredients --> GET /api/ingredients
func (h *IngredientHandler) ListIngredients(c echo.Context) error {
	ingredients, err := h.ingredientService.ListIngredients(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ingredients)
}

// CreateIngredient --> POST /api/ingredients
func (h *IngredientHandler) CreateIngredient(c echo.Context) error {
	ingredient := entity.Ingredient{}
	if err := c.Bind(&ingredient); err != nil {
		return invalidPayload(c)
	}
	ingredient.ID = ""

	resp, err := h.ingredientService.CreateIngredient(c.Request().Context(), &ingredient)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// UpdateIngredient --> PUT /api/ingredients/:id
func (h *IngredientHandler) UpdateIngredient(c echo.Context) error {
	ingredient := entity.Ingredient{}
	if err := c.Bind(&ingredient); err != nil {
		return invalidPayload(c)
	}
	ingredient.ID = c.Param("id")

	resp, err := h.ingredientService.UpdateIngredient(c.Request().Context(), &ingredient)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}

// DeleteIngredient --> DELETE /api/ingredients/:id
func (h *IngredientHandler) DeleteIngredient(c echo.Context) error {
	resp, err := h.ingredientService.DeleteIngredient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, resp)
}
