package repository

import (
	"context"

	"github.com/google/uuid"

	"restaurant-pos/internal/entity"
)

// CreatePayment appends a payment. Payments are never updated or removed
// except with their serving table.
func (q *Queries) CreatePayment(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	query := `INSERT INTO payments (id, payment_date, payment_method, amount_paid, serving_table_id, waiter_id) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query, payment.ID, payment.PaymentDate, payment.Method, payment.AmountPaid, payment.ServingTableID, payment.WaiterID)
	return translate(err)
}

func (q *Queries) ListPayments(ctx context.Context) ([]entity.Payment, error) {
	query := `SELECT p.id, p.payment_date, p.payment_method, p.amount_paid, p.serving_table_id, p.waiter_id, w.first_name, w.last_name
		FROM payments p JOIN waiters w ON w.id = p.waiter_id
		ORDER BY p.payment_date`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []entity.Payment
	for rows.Next() {
		p := entity.Payment{Waiter: &entity.WaiterName{}}
		err := rows.Scan(&p.ID, &p.PaymentDate, &p.Method, &p.AmountPaid, &p.ServingTableID, &p.WaiterID, &p.Waiter.FirstName, &p.Waiter.LastName)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
