package entity

type Waiter struct {
	ID            string         `json:"id"`
	Code          int            `json:"code"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	ServingTables []ServingTable `json:"serving_tables,omitempty"`
}

// WaiterName is the slice of a waiter that read models embed.
type WaiterName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Admin struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
