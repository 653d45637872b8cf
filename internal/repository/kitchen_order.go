package repository

import (
	"context"

	"github.com/google/uuid"

	"restaurant-pos/internal/entity"
)

func (q *Queries) CreateKitchenOrder(ctx context.Context, kitchenOrder *entity.KitchenOrder) error {
	if kitchenOrder.ID == "" {
		kitchenOrder.ID = uuid.NewString()
	}
	query := `INSERT INTO kitchen_orders (id, completed, order_id, waiter_id, serving_table_id) VALUES (?, ?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query, kitchenOrder.ID, kitchenOrder.Completed, kitchenOrder.OrderID, kitchenOrder.WaiterID, kitchenOrder.ServingTableID)
	return translate(err)
}

func (q *Queries) GetKitchenOrder(ctx context.Context, id string) (*entity.KitchenOrder, error) {
	query := `SELECT id, completed, order_id, waiter_id, serving_table_id FROM kitchen_orders WHERE id = ?`

	k := &entity.KitchenOrder{}
	if err := q.db.QueryRowContext(ctx, query, id).Scan(&k.ID, &k.Completed, &k.OrderID, &k.WaiterID, &k.ServingTableID); err != nil {
		return nil, translate(err)
	}
	return k, nil
}

// SetKitchenOrderCompleted flips the ticket to completed. It never goes back.
func (q *Queries) SetKitchenOrderCompleted(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE kitchen_orders SET completed = TRUE WHERE id = ?`, id)
	return translate(err)
}

const kitchenOrderColumns = `k.id, k.completed, k.order_id, k.waiter_id, k.serving_table_id,
	o.code, t.code, w.first_name, w.last_name`

const kitchenOrderJoins = `FROM kitchen_orders k
	JOIN orders o ON o.id = k.order_id
	JOIN serving_tables t ON t.id = k.serving_table_id
	JOIN waiters w ON w.id = k.waiter_id`

func scanKitchenOrder(row scanner) (entity.KitchenOrder, error) {
	k := entity.KitchenOrder{Waiter: &entity.WaiterName{}}
	err := row.Scan(&k.ID, &k.Completed, &k.OrderID, &k.WaiterID, &k.ServingTableID,
		&k.OrderCode, &k.TableCode, &k.Waiter.FirstName, &k.Waiter.LastName)
	return k, err
}

// ListUncompletedKitchenOrders returns open tickets with the lines the kitchen
// has to prepare. Lines of excludeCategory are left out, and a ticket left
// with no lines is not returned.
func (q *Queries) ListUncompletedKitchenOrders(ctx context.Context, excludeCategory entity.ProductCategory) ([]entity.KitchenOrder, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+kitchenOrderColumns+` `+kitchenOrderJoins+`
		WHERE k.completed = FALSE ORDER BY o.creation_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []entity.KitchenOrder
	for rows.Next() {
		k, err := scanKitchenOrder(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := q.db.QueryContext(ctx, `SELECT `+lineColumns+`
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		JOIN kitchen_orders k ON k.order_id = l.order_id
		WHERE k.completed = FALSE AND p.product_category <> ?`, excludeCategory)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	lines := map[string][]entity.OrderLine{}
	for lineRows.Next() {
		line, err := scanLine(lineRows)
		if err != nil {
			return nil, err
		}
		lines[line.OrderID] = append(lines[line.OrderID], line)
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	ingredients, err := q.ingredientsByProduct(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]entity.KitchenOrder, 0, len(tickets))
	for _, k := range tickets {
		k.Lines = lines[k.OrderID]
		if len(k.Lines) == 0 {
			continue
		}
		for i := range k.Lines {
			k.Lines[i].Product.Ingredients = ingredients[k.Lines[i].ProductID]
		}
		result = append(result, k)
	}
	return result, nil
}

// ListCompletedKitchenOrders returns finished tickets of one waiter.
func (q *Queries) ListCompletedKitchenOrders(ctx context.Context, waiterID string) ([]entity.KitchenOrder, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+kitchenOrderColumns+` `+kitchenOrderJoins+`
		WHERE k.completed = TRUE AND k.waiter_id = ? ORDER BY o.creation_date`, waiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []entity.KitchenOrder
	for rows.Next() {
		k, err := scanKitchenOrder(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
