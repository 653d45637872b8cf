package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/repository"
)

type ProductStore interface {
	GetProductByID(ctx context.Context, id string) (*entity.Product, error)
	FindProductByNames(ctx context.Context, name, nameTranslated string) (*entity.Product, error)
	ListProducts(ctx context.Context) ([]entity.Product, error)
	SaveProduct(ctx context.Context, p *entity.Product, create bool) error
	DeleteProduct(ctx context.Context, id string) error
	GetIngredientByID(ctx context.Context, id string) (*entity.Ingredient, error)
}

type ProductService struct {
	store ProductStore
	cache *ProductCache
}

// NewProductService creates a new instance of ProductService. cache may be nil.
func NewProductService(store ProductStore, cache *ProductCache) *ProductService {
	return &ProductService{store: store, cache: cache}
}

// ListProducts returns the menu with ingredients, served from the cache when
// it is warm.
func (s *ProductService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	if products, ok := s.cache.get(ctx); ok {
		return products, nil
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fail(err, "Error while fetching products.")
	}
	if products == nil {
		products = []entity.Product{}
	}
	s.cache.set(ctx, products)
	return products, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, p *entity.Product) (*entity.ServiceResponse, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	errMsg := fmt.Sprintf("Error while creating product: %s", p.Name)
	if err := s.ensureNamesFree(ctx, p, ""); err != nil {
		return nil, fail(err, errMsg)
	}
	if err := s.checkIngredients(ctx, p.Ingredients); err != nil {
		return nil, fail(err, errMsg)
	}
	if err := s.store.SaveProduct(ctx, p, true); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, productConflict(p.Name)
		}
		return nil, fail(err, errMsg)
	}
	s.cache.invalidate(ctx)

	return &entity.ServiceResponse{
		StatusCode: http.StatusCreated,
		Message:    fmt.Sprintf("Product: \"%s\" created successfully.", p.Name),
	}, nil
}

// UpdateProduct rewrites a product and replaces its ingredient set. Lines
// already on a bill keep the amount they were charged.
func (s *ProductService) UpdateProduct(ctx context.Context, p *entity.Product) (*entity.ServiceResponse, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	errMsg := fmt.Sprintf("Error while updating product: \"%s\"", p.Name)
	if _, err := s.store.GetProductByID(ctx, p.ID); err != nil {
		return nil, fail(lookupError(err, fmt.Sprintf("Product: \"%s\" was not found.", p.Name)), errMsg)
	}
	if err := s.ensureNamesFree(ctx, p, p.ID); err != nil {
		return nil, fail(err, errMsg)
	}
	if err := s.checkIngredients(ctx, p.Ingredients); err != nil {
		return nil, fail(err, errMsg)
	}
	if err := s.store.SaveProduct(ctx, p, false); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, productConflict(p.Name)
		}
		return nil, fail(err, errMsg)
	}
	s.cache.invalidate(ctx)

	return &entity.ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Product: \"%s\" is updated successfully.", p.Name),
	}, nil
}

// DeleteProduct removes a product. Products still referenced by order lines
// cannot be removed.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*entity.ServiceResponse, error) {
	const errMsg = "There was problem deleting the product."
	p, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, fail(lookupError(err, "The product with given ID doesn't exist."), errMsg)
	}
	if err := s.store.DeleteProduct(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			logger.Warn().Msgf("Product %s is still referenced by orders", p.ID)
			return nil, conflict(fmt.Sprintf("Product: \"%s\" is used by existing orders.", p.Name))
		}
		return nil, fail(lookupError(err, "The product with given ID doesn't exist."), errMsg)
	}
	s.cache.invalidate(ctx)

	return &entity.ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Product: \"%s\" is deleted.", p.Name),
	}, nil
}

func (s *ProductService) ensureNamesFree(ctx context.Context, p *entity.Product, exceptID string) error {
	existing, err := s.store.FindProductByNames(ctx, p.Name, p.NameTranslated)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		return productConflict(p.Name)
	}
	return nil
}

func (s *ProductService) checkIngredients(ctx context.Context, ingredients []entity.Ingredient) error {
	for _, ing := range ingredients {
		if _, err := s.store.GetIngredientByID(ctx, ing.ID); err != nil {
			return lookupError(err, fmt.Sprintf("Ingredient %s not found.", ing.ID))
		}
	}
	return nil
}

func productConflict(name string) *Error {
	return conflict(fmt.Sprintf("Product: \"%s\" already exists.", name))
}

func validateProduct(p *entity.Product) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.NameTranslated) == "" {
		return badRequest("Product name and translated name are required.")
	}
	if p.Price < 0 {
		return badRequest("Product price cannot be negative.")
	}
	switch p.Category {
	case entity.CategoryBreakfast, entity.CategoryAppetizers, entity.CategorySalads,
		entity.CategoryMainDishes, entity.CategoryDesserts, entity.CategoryDrinks:
	default:
		return badRequest(fmt.Sprintf("Unknown product category: %s", p.Category))
	}
	return nil
}
