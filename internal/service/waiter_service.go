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

type WaiterStore interface {
	GetWaiterByID(ctx context.Context, id string) (*entity.Waiter, error)
	GetWaiterByCode(ctx context.Context, code int) (*entity.Waiter, error)
	ListWaiters(ctx context.Context) ([]entity.Waiter, error)
	ListWaitersWithReservedTables(ctx context.Context) ([]entity.Waiter, error)
	CreateWaiter(ctx context.Context, w *entity.Waiter) error
	UpdateWaiter(ctx context.Context, w *entity.Waiter) error
	DeleteWaiter(ctx context.Context, id string) error
}

type WaiterService struct {
	store WaiterStore
}

func NewWaiterService(store WaiterStore) *WaiterService {
	return &WaiterService{store: store}
}

func (s *WaiterService) ListWaiters(ctx context.Context) ([]entity.Waiter, error) {
	waiters, err := s.store.ListWaiters(ctx)
	if err != nil {
		return nil, fail(err, "Error while fetching waiters.")
	}
	if waiters == nil {
		waiters = []entity.Waiter{}
	}
	return waiters, nil
}

// ListWaitersWithReservedTables backs the waiter page: each waiter with the
// tables they still hold, down to line products and ingredients.
func (s *WaiterService) ListWaitersWithReservedTables(ctx context.Context) ([]entity.Waiter, error) {
	waiters, err := s.store.ListWaitersWithReservedTables(ctx)
	if err != nil {
		return nil, fail(err, "Error while fetching waiters with serving tables.")
	}
	if waiters == nil {
		waiters = []entity.Waiter{}
	}
	return waiters, nil
}

func (s *WaiterService) CreateWaiter(ctx context.Context, w *entity.Waiter) (*entity.ServiceResponse, error) {
	if err := validateWaiter(w); err != nil {
		return nil, err
	}

	if err := s.ensureCodeFree(ctx, w.Code, ""); err != nil {
		return nil, fail(err, "Error while creating waiter.")
	}
	if err := s.store.CreateWaiter(ctx, w); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, codeConflict(w.Code)
		}
		return nil, fail(err, "Error while creating waiter.")
	}

	logger.Info().Msgf("Waiter %d created", w.Code)
	return &entity.ServiceResponse{
		StatusCode: http.StatusCreated,
		Message:    fmt.Sprintf("Waiter with code: %d is successfully created.", w.Code),
	}, nil
}

// UpdateWaiter rewrites a waiter's code and name. The code may stay the
// same but may not collide with another waiter's.
func (s *WaiterService) UpdateWaiter(ctx context.Context, w *entity.Waiter) (*entity.ServiceResponse, error) {
	if err := validateWaiter(w); err != nil {
		return nil, err
	}

	if _, err := s.store.GetWaiterByID(ctx, w.ID); err != nil {
		msg := fmt.Sprintf("Waiter: \"%s %s\" was not found.", w.FirstName, w.LastName)
		return nil, fail(lookupError(err, msg), "Error while updating waiter.")
	}
	if err := s.ensureCodeFree(ctx, w.Code, w.ID); err != nil {
		return nil, fail(err, "Error while updating waiter.")
	}
	if err := s.store.UpdateWaiter(ctx, w); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, codeConflict(w.Code)
		}
		return nil, fail(err, "Error while updating waiter.")
	}

	return &entity.ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Waiter: \"%s %s\" is successfully updated.", w.FirstName, w.LastName),
	}, nil
}

// DeleteWaiter removes a waiter together with their serving tables.
func (s *WaiterService) DeleteWaiter(ctx context.Context, id string) (*entity.ServiceResponse, error) {
	w, err := s.store.GetWaiterByID(ctx, id)
	if err != nil {
		return nil, fail(lookupError(err, "Waiter was not found."), "Error while deleting waiter.")
	}
	if err := s.store.DeleteWaiter(ctx, w.ID); err != nil {
		return nil, fail(lookupError(err, "Waiter was not found."), "Error while deleting waiter.")
	}

	return &entity.ServiceResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Waiter: \"%s\" is successfully deleted.", w.FirstName),
	}, nil
}

// ensureCodeFree fails with a conflict when a waiter other than exceptID
// already holds code.
func (s *WaiterService) ensureCodeFree(ctx context.Context, code int, exceptID string) error {
	existing, err := s.store.GetWaiterByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		logger.Warn().Msgf("Waiter code %d already taken by %s", code, existing.ID)
		return codeConflict(code)
	}
	return nil
}

func codeConflict(code int) *Error {
	return conflict(fmt.Sprintf("Waiter with code: %d already exist.", code))
}

func validateWaiter(w *entity.Waiter) error {
	if strings.TrimSpace(w.FirstName) == "" || strings.TrimSpace(w.LastName) == "" {
		return badRequest("Waiter first and last name are required.")
	}
	return nil
}
