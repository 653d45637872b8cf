package repository

import (
	"context"

	"github.com/google/uuid"

	"restaurant-pos/internal/entity"
)

const servingTableColumns = `t.id, t.code, t.status, t.waiter_id, t.total_price, t.amount_paid, t.remaining_balance`

func scanServingTable(row scanner, t *entity.ServingTable) error {
	return row.Scan(&t.ID, &t.Code, &t.Status, &t.WaiterID, &t.TotalPrice, &t.AmountPaid, &t.RemainingBalance)
}

// GetServingTableForUpdate reads a table and locks its row until the
// surrounding transaction ends.
func (q *Queries) GetServingTableForUpdate(ctx context.Context, id string) (*entity.ServingTable, error) {
	query := `SELECT ` + servingTableColumns + ` FROM serving_tables t WHERE t.id = ? FOR UPDATE`

	table := &entity.ServingTable{}
	if err := scanServingTable(q.db.QueryRowContext(ctx, query, id), table); err != nil {
		return nil, translate(err)
	}
	return table, nil
}

func (q *Queries) ServingTableCodeTaken(ctx context.Context, waiterID string, code int, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM serving_tables WHERE waiter_id = ? AND code = ? AND id <> ?`

	var count int
	if err := q.db.QueryRowContext(ctx, query, waiterID, code, excludeID).Scan(&count); err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (q *Queries) CreateServingTable(ctx context.Context, table *entity.ServingTable) error {
	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	query := `INSERT INTO serving_tables (id, code, status, waiter_id, total_price, amount_paid, remaining_balance) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query, table.ID, table.Code, table.Status, table.WaiterID, table.TotalPrice, table.AmountPaid, table.RemainingBalance)
	return translate(err)
}

func (q *Queries) UpdateServingTable(ctx context.Context, table *entity.ServingTable) error {
	query := `UPDATE serving_tables SET code = ?, status = ?, waiter_id = ?, total_price = ?, amount_paid = ?, remaining_balance = ? WHERE id = ?`
	_, err := q.db.ExecContext(ctx, query, table.Code, table.Status, table.WaiterID, table.TotalPrice, table.AmountPaid, table.RemainingBalance, table.ID)
	return translate(err)
}

// DeleteServingTable removes the table; orders, lines, kitchen orders and
// payments go with it through ON DELETE CASCADE.
func (q *Queries) DeleteServingTable(ctx context.Context, id string) error {
	return expectAffected(q.db.ExecContext(ctx, `DELETE FROM serving_tables WHERE id = ?`, id))
}

// ListServingTables returns every table with its waiter's name and its orders.
func (q *Queries) ListServingTables(ctx context.Context) ([]entity.ServingTable, error) {
	return q.servingTables(ctx, "")
}

// GetServingTable returns one table with its waiter's name and its orders.
func (q *Queries) GetServingTable(ctx context.Context, id string) (*entity.ServingTable, error) {
	tables, err := q.servingTables(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, ErrNotFound
	}
	return &tables[0], nil
}

func (q *Queries) servingTables(ctx context.Context, id string) ([]entity.ServingTable, error) {
	query := `SELECT ` + servingTableColumns + `, w.first_name, w.last_name
		FROM serving_tables t JOIN waiters w ON w.id = t.waiter_id`
	var args []interface{}
	if id != "" {
		query += ` WHERE t.id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY t.code`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []entity.ServingTable
	for rows.Next() {
		table := entity.ServingTable{Waiter: &entity.WaiterName{}}
		err := rows.Scan(&table.ID, &table.Code, &table.Status, &table.WaiterID, &table.TotalPrice, &table.AmountPaid, &table.RemainingBalance,
			&table.Waiter.FirstName, &table.Waiter.LastName)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orders, err := q.ordersByTable(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		tables[i].Orders = orders[tables[i].ID]
	}
	return tables, nil
}
