package repository

import (
	"context"

	"github.com/google/uuid"

	"restaurant-pos/internal/entity"
)

func (q *Queries) GetWaiterByID(ctx context.Context, id string) (*entity.Waiter, error) {
	query := `SELECT id, code, first_name, last_name FROM waiters WHERE id = ?`

	w := &entity.Waiter{}
	if err := q.db.QueryRowContext(ctx, query, id).Scan(&w.ID, &w.Code, &w.FirstName, &w.LastName); err != nil {
		return nil, translate(err)
	}
	return w, nil
}

func (q *Queries) GetWaiterByCode(ctx context.Context, code int) (*entity.Waiter, error) {
	query := `SELECT id, code, first_name, last_name FROM waiters WHERE code = ?`

	w := &entity.Waiter{}
	if err := q.db.QueryRowContext(ctx, query, code).Scan(&w.ID, &w.Code, &w.FirstName, &w.LastName); err != nil {
		return nil, translate(err)
	}
	return w, nil
}

func (q *Queries) ListWaiters(ctx context.Context) ([]entity.Waiter, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, code, first_name, last_name FROM waiters ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waiters []entity.Waiter
	for rows.Next() {
		var w entity.Waiter
		if err := rows.Scan(&w.ID, &w.Code, &w.FirstName, &w.LastName); err != nil {
			return nil, err
		}
		waiters = append(waiters, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return waiters, nil
}

// ListWaitersWithReservedTables returns all waiters, each with the tables
// they still hold open. Waiters without open tables get an empty list.
func (q *Queries) ListWaitersWithReservedTables(ctx context.Context) ([]entity.Waiter, error) {
	waiters, err := q.ListWaiters(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := q.ListServingTables(ctx)
	if err != nil {
		return nil, err
	}
	ingredients, err := q.ingredientsByProduct(ctx)
	if err != nil {
		return nil, err
	}

	byWaiter := map[string][]entity.ServingTable{}
	for _, t := range tables {
		if t.Status != entity.StatusReserved {
			continue
		}
		for i := range t.Orders {
			for j := range t.Orders[i].Lines {
				line := &t.Orders[i].Lines[j]
				line.Product.Ingredients = ingredients[line.ProductID]
			}
		}
		byWaiter[t.WaiterID] = append(byWaiter[t.WaiterID], t)
	}
	for i := range waiters {
		waiters[i].ServingTables = byWaiter[waiters[i].ID]
		if waiters[i].ServingTables == nil {
			waiters[i].ServingTables = []entity.ServingTable{}
		}
	}
	return waiters, nil
}

func (q *Queries) CreateWaiter(ctx context.Context, w *entity.Waiter) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	query := `INSERT INTO waiters (id, code, first_name, last_name) VALUES (?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query, w.ID, w.Code, w.FirstName, w.LastName)
	return translate(err)
}

func (q *Queries) UpdateWaiter(ctx context.Context, w *entity.Waiter) error {
	query := `UPDATE waiters SET code = ?, first_name = ?, last_name = ? WHERE id = ?`
	_, err := q.db.ExecContext(ctx, query, w.Code, w.FirstName, w.LastName, w.ID)
	return translate(err)
}

func (q *Queries) DeleteWaiter(ctx context.Context, id string) error {
	return expectAffected(q.db.ExecContext(ctx, `DELETE FROM waiters WHERE id = ?`, id))
}
