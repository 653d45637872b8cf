package entity

// ServiceResponse is the body every mutating operation answers with.
type ServiceResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// ServingTableEvent is published after a serving table mutation commits.
type ServingTableEvent struct {
	Type             string             `json:"type"`
	ServingTableID   string             `json:"serving_table_id"`
	OrderID          string             `json:"order_id,omitempty"`
	KitchenOrderID   string             `json:"kitchen_order_id,omitempty"`
	WaiterID         string             `json:"waiter_id,omitempty"`
	Status           ServingTableStatus `json:"status,omitempty"`
	TotalPrice       int64              `json:"total_price"`
	AmountPaid       int64              `json:"amount_paid"`
	RemainingBalance int64              `json:"remaining_balance"`
	Amount           int64              `json:"amount,omitempty"`
}
