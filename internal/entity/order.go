package entity

import "time"

type Order struct {
	ID             string      `json:"id"`
	Code           int         `json:"code"`
	TotalPrice     int64       `json:"total_price"`
	CreationDate   time.Time   `json:"creation_date"`
	WaiterID       string      `json:"waiter_id"`
	ServingTableID string      `json:"serving_table_id"`
	Lines          []OrderLine `json:"lines"`
}

type OrderLine struct {
	ID        string   `json:"id"`
	Quantity  int      `json:"quantity"`
	ProductID string   `json:"product_id"`
	OrderID   string   `json:"order_id"`
	Product   *Product `json:"product,omitempty"`
}

// Price is the live product price times quantity. Lines without a loaded
// product are worth nothing.
func (l OrderLine) Price() int64 {
	if l.Product == nil {
		return 0
	}
	return l.Product.Price * int64(l.Quantity)
}

// LinesTotal folds line prices starting from zero, so an empty slice is 0.
func LinesTotal(lines []OrderLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Price()
	}
	return total
}

// LineRequest is one product/quantity pair of an incoming order.
type LineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderRequest struct {
	Code  int           `json:"code"`
	Lines []LineRequest `json:"lines"`
}

/*
Mysql Tables

CREATE TABLE orders (
	id CHAR(36) PRIMARY KEY,
	code INT NOT NULL,
	total_price BIGINT NOT NULL,
	creation_date DATETIME(3) NOT NULL,
	waiter_id CHAR(36) NOT NULL REFERENCES waiters(id) ON DELETE CASCADE,
	serving_table_id CHAR(36) NOT NULL REFERENCES serving_tables(id) ON DELETE CASCADE
);

CREATE TABLE order_lines (
	id CHAR(36) PRIMARY KEY,
	quantity INT NOT NULL,
	product_id CHAR(36) NOT NULL REFERENCES products(id),
	order_id CHAR(36) NOT NULL REFERENCES orders(id) ON DELETE CASCADE
);
*/
