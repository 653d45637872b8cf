package entity

// KitchenOrder is the kitchen's ticket for one Order. Its lines are the
// order's lines, joined through order_id rather than stored twice.
type KitchenOrder struct {
	ID             string      `json:"id"`
	Completed      bool        `json:"completed"`
	OrderID        string      `json:"order_id"`
	WaiterID       string      `json:"waiter_id"`
	ServingTableID string      `json:"serving_table_id"`
	OrderCode      int         `json:"order_code,omitempty"`
	TableCode      int         `json:"serving_table_code,omitempty"`
	Waiter         *WaiterName `json:"waiter,omitempty"`
	Lines          []OrderLine `json:"lines,omitempty"`
}
