package repository

import (
	"context"

	"github.com/google/uuid"

	"restaurant-pos/internal/entity"
)

const lineColumns = `l.id, l.quantity, l.product_id, l.order_id,
	p.id, p.name, p.name_translated, p.description, p.price, p.product_category`

func scanLine(row scanner) (entity.OrderLine, error) {
	line := entity.OrderLine{Product: &entity.Product{}}
	p := line.Product
	err := row.Scan(&line.ID, &line.Quantity, &line.ProductID, &line.OrderID,
		&p.ID, &p.Name, &p.NameTranslated, &p.Description, &p.Price, &p.Category)
	return line, err
}

func (q *Queries) CreateOrder(ctx context.Context, order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	query := `INSERT INTO orders (id, code, total_price, creation_date, waiter_id, serving_table_id) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query, order.ID, order.Code, order.TotalPrice, order.CreationDate, order.WaiterID, order.ServingTableID)
	return translate(err)
}

// GetOrderWithLines loads an order, its lines and each line's product.
func (q *Queries) GetOrderWithLines(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT id, code, total_price, creation_date, waiter_id, serving_table_id FROM orders WHERE id = ?`

	order := &entity.Order{}
	err := q.db.QueryRowContext(ctx, query, id).Scan(&order.ID, &order.Code, &order.TotalPrice, &order.CreationDate, &order.WaiterID, &order.ServingTableID)
	if err != nil {
		return nil, translate(err)
	}

	rows, err := q.db.QueryContext(ctx, `SELECT `+lineColumns+`
		FROM order_lines l JOIN products p ON p.id = l.product_id
		WHERE l.order_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

func (q *Queries) UpdateOrderTotal(ctx context.Context, id string, total int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE orders SET total_price = ? WHERE id = ?`, total, id)
	return translate(err)
}

// DeleteOrder removes the order with its lines and kitchen order.
func (q *Queries) DeleteOrder(ctx context.Context, id string) error {
	return expectAffected(q.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id))
}

func (q *Queries) CreateOrderLine(ctx context.Context, line *entity.OrderLine) error {
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	query := `INSERT INTO order_lines (id, quantity, product_id, order_id) VALUES (?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query, line.ID, line.Quantity, line.ProductID, line.OrderID)
	return translate(err)
}

func (q *Queries) GetOrderLine(ctx context.Context, id string) (*entity.OrderLine, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+lineColumns+`
		FROM order_lines l JOIN products p ON p.id = l.product_id
		WHERE l.id = ?`, id)
	line, err := scanLine(row)
	if err != nil {
		return nil, translate(err)
	}
	return &line, nil
}

func (q *Queries) DeleteOrderLine(ctx context.Context, id string) error {
	return expectAffected(q.db.ExecContext(ctx, `DELETE FROM order_lines WHERE id = ?`, id))
}

// ordersByTable groups orders with their lines by serving table id. An
// empty tableID loads every table's orders.
func (q *Queries) ordersByTable(ctx context.Context, tableID string) (map[string][]entity.Order, error) {
	orderQuery := `SELECT id, code, total_price, creation_date, waiter_id, serving_table_id FROM orders`
	lineQuery := `SELECT ` + lineColumns + `
		FROM order_lines l JOIN products p ON p.id = l.product_id JOIN orders o ON o.id = l.order_id`
	var args []interface{}
	if tableID != "" {
		orderQuery += ` WHERE serving_table_id = ?`
		lineQuery += ` WHERE o.serving_table_id = ?`
		args = append(args, tableID)
	}
	orderQuery += ` ORDER BY creation_date`

	lines := map[string][]entity.OrderLine{}
	lineRows, err := q.db.QueryContext(ctx, lineQuery, args...)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
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

	rows, err := q.db.QueryContext(ctx, orderQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := map[string][]entity.Order{}
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.Code, &o.TotalPrice, &o.CreationDate, &o.WaiterID, &o.ServingTableID); err != nil {
			return nil, err
		}
		o.Lines = lines[o.ID]
		orders[o.ServingTableID] = append(orders[o.ServingTableID], o)
	}
	return orders, rows.Err()
}
