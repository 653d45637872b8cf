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

type IngredientStore interface {
	GetIngredientByID(ctx context.Context, id string) (*entity.Ingredient, error)
	FindIngredientByNames(ctx context.Context, name, nameTranslated string) (*entity.Ingredient, error)
	ListIngredients(ctx context.Context) ([]entity.Ingredient, error)
	CreateIngredient(ctx context.Context, i *entity.Ingredient) error
	UpdateIngredient(ctx context.Context, i *entity.Ingredient) error
	DeleteIngredient(ctx context.Context, id string) error
}

// IngredientService shares the product cache because cached products embed
// their ingredients.
type IngredientService struct {
	store IngredientStore
	cache *ProductCache
}

func NewIngredientService(store IngredientStore, cache *ProductCache) *IngredientService {
	return &IngredientService{store: store, cache: cache}
}

func (s *IngredientService) ListIngredients(ctx context.Context) ([]entity.Ingredient, error) {
	ingredients, err := s.store.ListIngredients(ctx)
	if err != nil {
		return nil, fail(err, "Error while fetching ingredients.")
	}
	if ingredients == nil {
		ingredients = []entity.Ingredient{}
	}
	return ingredients, nil
}

func (s *IngredientService) CreateIngredient(ctx context.Context, i *entity.Ingredient) (*entity.ServiceResponse, error) {
	if err := validateIngredient(i); err != nil {
		return nil, err
	}

	errMsg := fmt.Sprintf("Error while creating Ingredient: \"%s\".", i.Name)
	if err := s.ensureNamesFree(ctx, i, ""); err != nil {
		return nil, fail(err, errMsg)
	}
	if err := s.store.CreateIngredient(ctx, i); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ingredientConflict(i.Name)
		}
		return nil, fail(err, errMsg)
	}

	return &entity.ServiceResponse{
		StatusCode: http.StatusCreated,
		Message:    fmt.Sprintf("Ingredient: \"%s\" is created successfully.", i.Name),
	}, nil
}

func (s *IngredientService) UpdateIngredient(ctx context.Context, i *entity.Ingredient) (*entity.ServiceResponse, error) {
	if err := validateIngredient(i); err != nil {
		return nil, err
	}

	errMsg := fmt.Sprintf("Error while upgrading Ingredient: %s.", i.Name)
	if _, err := s.store.GetIngredientByID(ctx, i.ID); err != nil {
		return nil, fail(lookupError(err, fmt.Sprintf("Ingredient: \"%s\" was not found.", i.Name)), errMsg)
	}
	if err := s.ensureNamesFree(ctx, i, i.ID); err != nil {
		return nil, fail(err, errMsg)
	}
	if err := s.store.UpdateIngredient(ctx, i); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ingredientConflict(i.Name)
		}
		return nil, fail(err, errMsg)
	}
	s.cache.invalidate(ctx)

	return &entity.ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Ingredient: \"%s\" is updated successfully.", i.Name),
	}, nil
}

// DeleteIngredient removes an ingredient and detaches it from every product.
func (s *IngredientService) DeleteIngredient(ctx context.Context, id string) (*entity.ServiceResponse, error) {
	const errMsg = "Error while deleting ingredient."
	i, err := s.store.GetIngredientByID(ctx, id)
	if err != nil {
		return nil, fail(lookupError(err, "Ingredient not found."), errMsg)
	}
	if err := s.store.DeleteIngredient(ctx, i.ID); err != nil {
		return nil, fail(lookupError(err, "Ingredient not found."), errMsg)
	}
	s.cache.invalidate(ctx)

	return &entity.ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Ingredient: \"%s\" deleted successfully.", i.Name),
	}, nil
}

func (s *IngredientService) ensureNamesFree(ctx context.Context, i *entity.Ingredient, exceptID string) error {
	existing, err := s.store.FindIngredientByNames(ctx, i.Name, i.NameTranslated)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		return ingredientConflict(i.Name)
	}
	return nil
}

func ingredientConflict(name string) *Error {
	return conflict(fmt.Sprintf("Ingredient: \"%s\" already exists.", name))
}

func validateIngredient(i *entity.Ingredient) error {
	if strings.TrimSpace(i.Name) == "" || strings.TrimSpace(i.NameTranslated) == "" {
		return badRequest("Ingredient name and translated name are required.")
	}
	return nil
}
