package entity

type ServingTableStatus string

const (
	StatusReserved ServingTableStatus = "Reserved"
	StatusClosed   ServingTableStatus = "Closed"
)

type ServingTable struct {
	ID               string             `json:"id"`
	Code             int                `json:"code"`
	Status           ServingTableStatus `json:"status"`
	WaiterID         string             `json:"waiter_id"`
	TotalPrice       int64              `json:"total_price"`
	AmountPaid       int64              `json:"amount_paid"`
	RemainingBalance int64              `json:"remaining_balance"`
	Waiter           *WaiterName        `json:"waiter,omitempty"`
	Orders           []Order            `json:"orders,omitempty"`
}

// AddToBill grows the bill by amount; amount paid is left alone.
func (t *ServingTable) AddToBill(amount int64) {
	t.TotalPrice += amount
	t.RemainingBalance += amount
}

// RemoveFromBill shrinks the bill by amount; amount paid is left alone.
func (t *ServingTable) RemoveFromBill(amount int64) {
	t.TotalPrice -= amount
	t.RemainingBalance -= amount
}

// ApplyPayment settles amount against the remaining balance. A payment that
// brings the balance to exactly zero closes the table.
func (t *ServingTable) ApplyPayment(amount int64) {
	if t.RemainingBalance-amount == 0 {
		t.AmountPaid = t.TotalPrice
		t.RemainingBalance = 0
		t.Status = StatusClosed
		return
	}
	t.AmountPaid += amount
	t.RemainingBalance -= amount
}

// Balanced reports whether total = paid + remaining holds.
func (t *ServingTable) Balanced() bool {
	return t.TotalPrice == t.AmountPaid+t.RemainingBalance
}

/*
Mysql Table

CREATE TABLE serving_tables (
	id CHAR(36) PRIMARY KEY,
	code INT NOT NULL,
	status VARCHAR(20) NOT NULL,
	waiter_id CHAR(36) NOT NULL REFERENCES waiters(id) ON DELETE CASCADE,
	total_price BIGINT NOT NULL,
	amount_paid BIGINT NOT NULL,
	remaining_balance BIGINT NOT NULL
);
*/
