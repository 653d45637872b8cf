package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

// Statements run in order; child tables come after the tables they reference.
var schema = []struct {
	table string
	query string
}{
	{"admins", `
		CREATE TABLE IF NOT EXISTS admins (
			id CHAR(36) PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL
		);
	`},
	{"waiters", `
		CREATE TABLE IF NOT EXISTS waiters (
			id CHAR(36) PRIMARY KEY,
			code INT NOT NULL UNIQUE,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL
		);
	`},
	{"ingredients", `
		CREATE TABLE IF NOT EXISTS ingredients (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			name_translated VARCHAR(255) NOT NULL,
			UNIQUE KEY ingredients_name_idx (name, name_translated)
		);
	`},
	{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			name_translated VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			price BIGINT NOT NULL,
			product_category VARCHAR(50) NOT NULL,
			UNIQUE KEY products_name_idx (name, name_translated)
		);
	`},
	{"product_ingredients", `
		CREATE TABLE IF NOT EXISTS product_ingredients (
			product_id CHAR(36) NOT NULL,
			ingredient_id CHAR(36) NOT NULL,
			PRIMARY KEY (product_id, ingredient_id),
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
			FOREIGN KEY (ingredient_id) REFERENCES ingredients(id) ON DELETE CASCADE
		);
	`},
	{"serving_tables", `
		CREATE TABLE IF NOT EXISTS serving_tables (
			id CHAR(36) PRIMARY KEY,
			code INT NOT NULL,
			status VARCHAR(20) NOT NULL,
			waiter_id CHAR(36) NOT NULL,
			total_price BIGINT NOT NULL,
			amount_paid BIGINT NOT NULL,
			remaining_balance BIGINT NOT NULL,
			INDEX serving_tables_waiter_code_idx (waiter_id, code),
			FOREIGN KEY (waiter_id) REFERENCES waiters(id) ON DELETE CASCADE
		);
	`},
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id CHAR(36) PRIMARY KEY,
			code INT NOT NULL,
			total_price BIGINT NOT NULL,
			creation_date DATETIME(3) NOT NULL,
			waiter_id CHAR(36) NOT NULL,
			serving_table_id CHAR(36) NOT NULL,
			FOREIGN KEY (waiter_id) REFERENCES waiters(id) ON DELETE CASCADE,
			FOREIGN KEY (serving_table_id) REFERENCES serving_tables(id) ON DELETE CASCADE
		);
	`},
	{"kitchen_orders", `
		CREATE TABLE IF NOT EXISTS kitchen_orders (
			id CHAR(36) PRIMARY KEY,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			order_id CHAR(36) NOT NULL UNIQUE,
			waiter_id CHAR(36) NOT NULL,
			serving_table_id CHAR(36) NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
			FOREIGN KEY (waiter_id) REFERENCES waiters(id) ON DELETE CASCADE,
			FOREIGN KEY (serving_table_id) REFERENCES serving_tables(id) ON DELETE CASCADE
		);
	`},
	{"order_lines", `
		CREATE TABLE IF NOT EXISTS order_lines (
			id CHAR(36) PRIMARY KEY,
			quantity INT NOT NULL,
			product_id CHAR(36) NOT NULL,
			order_id CHAR(36) NOT NULL,
			FOREIGN KEY (product_id) REFERENCES products(id),
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);
	`},
	{"payments", `
		CREATE TABLE IF NOT EXISTS payments (
			id CHAR(36) PRIMARY KEY,
			payment_date DATETIME(3) NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			amount_paid BIGINT NOT NULL,
			serving_table_id CHAR(36) NOT NULL,
			waiter_id CHAR(36) NOT NULL,
			FOREIGN KEY (serving_table_id) REFERENCES serving_tables(id) ON DELETE CASCADE,
			FOREIGN KEY (waiter_id) REFERENCES waiters(id) ON DELETE CASCADE
		);
	`},
}

// AutoMigrate creates every table that does not exist yet, retrying each
// statement while the database is still coming up.
func AutoMigrate(retries int, db *sql.DB) error {
	for _, s := range schema {
		_, err := db.Exec(s.query)
		if err != nil {
			// Retry creating the table
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = db.Exec(s.query)
				if err == nil {
					break
				}
			}
		}
		if err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", s.table, err)
		}
	}
	return nil
}
