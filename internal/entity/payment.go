package entity

import "time"

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Card"
)

type Payment struct {
	ID             string        `json:"id"`
	PaymentDate    time.Time     `json:"payment_date"`
	Method         PaymentMethod `json:"payment_method"`
	AmountPaid     int64         `json:"amount_paid"`
	ServingTableID string        `json:"serving_table_id"`
	WaiterID       string        `json:"waiter_id"`
	Waiter         *WaiterName   `json:"waiter,omitempty"`
}
