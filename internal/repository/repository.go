package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"restaurant-pos/internal/entity"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with existing data")
)

// MySQL error numbers that mean the write collided with existing rows.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ledger is the set of reads and writes a serving table mutation performs
// inside one transaction.
type Ledger interface {
	GetWaiterByID(ctx context.Context, id string) (*entity.Waiter, error)
	GetProductByID(ctx context.Context, id string) (*entity.Product, error)

	GetServingTableForUpdate(ctx context.Context, id string) (*entity.ServingTable, error)
	ServingTableCodeTaken(ctx context.Context, waiterID string, code int, excludeID string) (bool, error)
	CreateServingTable(ctx context.Context, table *entity.ServingTable) error
	UpdateServingTable(ctx context.Context, table *entity.ServingTable) error
	DeleteServingTable(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, order *entity.Order) error
	GetOrderWithLines(ctx context.Context, id string) (*entity.Order, error)
	UpdateOrderTotal(ctx context.Context, id string, total int64) error
	DeleteOrder(ctx context.Context, id string) error

	CreateKitchenOrder(ctx context.Context, kitchenOrder *entity.KitchenOrder) error

	CreateOrderLine(ctx context.Context, line *entity.OrderLine) error
	GetOrderLine(ctx context.Context, id string) (*entity.OrderLine, error)
	DeleteOrderLine(ctx context.Context, id string) error

	CreatePayment(ctx context.Context, payment *entity.Payment) error
}

// Queries runs statements against a DB or a transaction.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// Store owns the connection pool and hands out transactional Ledgers.
type Store struct {
	*Queries
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{Queries: NewQueries(db), db: db}
}

// WithinTx runs fn in a single transaction. Any error from fn, or a panic,
// rolls everything back.
func (s *Store) WithinTx(ctx context.Context, fn func(Ledger) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewQueries(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry, mysqlRowIsReferenced, mysqlNoReferencedRow:
			return fmt.Errorf("%w: %s", ErrConflict, myErr.Message)
		}
	}
	return err
}

// expectAffected turns a zero-row write into ErrNotFound.
func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}
