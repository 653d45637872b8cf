package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/entity"
)

func TestCreateServingTableAndPayInFull(t *testing.T) {
	f := newFixture(t)

	table := f.openTable(t, f.waiter, 7, line(f.burger, 2))
	assert.Equal(t, int64(200), table.TotalPrice)
	assert.Equal(t, int64(200), table.RemainingBalance)
	assert.Equal(t, int64(0), table.AmountPaid)
	assert.Equal(t, entity.StatusReserved, table.Status)
	require.Len(t, table.Orders, 1)
	assert.Equal(t, int64(200), table.Orders[0].TotalPrice)
	assert.Equal(t, fixedNow, table.Orders[0].CreationDate)
	require.Len(t, table.Orders[0].Lines, 1)

	tickets, err := f.kitchen.ListUncompleted(f.ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, table.Orders[0].ID, tickets[0].OrderID)
	assert.False(t, tickets[0].Completed)

	resp, err := f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 200})
	require.NoError(t, err)
	assert.Equal(t, "Payment successful.", resp.Message)

	paid := f.table(t, table.ID)
	assert.Equal(t, int64(0), paid.RemainingBalance)
	assert.Equal(t, int64(200), paid.AmountPaid)
	assert.Equal(t, entity.StatusClosed, paid.Status)

	payments, err := NewPaymentService(f.store).ListPayments(f.ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, entity.PaymentCash, payments[0].Method)
	assert.Equal(t, "Ana", payments[0].Waiter.FirstName)

	assert.Equal(t, []string{EventTableOpened, EventPaymentRecorded}, f.writer.eventTypes())
}

func TestCreateServingTableWithUnknownWaiter(t *testing.T) {
	f := newFixture(t)

	_, err := f.tables.CreateServingTable(f.ctx, CreateServingTableRequest{
		WaiterID:         "missing",
		ServingTableCode: 1,
		Order:            entity.OrderRequest{Lines: []entity.LineRequest{line(f.burger, 1)}},
	})
	requireServiceError(t, err, http.StatusNotFound, "Waiter was not found.")

	tables, err := f.tables.ListServingTables(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
	assert.Empty(t, f.writer.eventTypes())
}

func TestCreateServingTableRollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture) []entity.LineRequest
		code    int
	}{
		{
			name: "unknown product",
			prepare: func(f *fixture) []entity.LineRequest {
				return []entity.LineRequest{line(f.burger, 1), {ProductID: "missing", Quantity: 1}}
			},
			code: http.StatusNotFound,
		},
		{
			name: "non-positive quantity",
			prepare: func(f *fixture) []entity.LineRequest {
				return []entity.LineRequest{line(f.burger, 0)}
			},
			code: http.StatusBadRequest,
		},
		{
			name: "line write fails",
			prepare: func(f *fixture) []entity.LineRequest {
				f.store.FailOn("CreateOrderLine", errors.New("connection reset"))
				return []entity.LineRequest{line(f.burger, 1)}
			},
			code: http.StatusInternalServerError,
		},
		{
			name: "table update fails",
			prepare: func(f *fixture) []entity.LineRequest {
				f.store.FailOn("UpdateServingTable", errors.New("connection reset"))
				return []entity.LineRequest{line(f.burger, 1)}
			},
			code: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			lines := tt.prepare(f)

			_, err := f.tables.CreateServingTable(f.ctx, CreateServingTableRequest{
				WaiterID:         f.waiter.ID,
				ServingTableCode: 3,
				Order:            entity.OrderRequest{Code: 1, Lines: lines},
			})
			requireServiceError(t, err, tt.code, "")

			tables, err := f.store.ListServingTables(f.ctx)
			require.NoError(t, err)
			assert.Empty(t, tables)
			tickets, err := f.store.ListUncompletedKitchenOrders(f.ctx, "")
			require.NoError(t, err)
			assert.Empty(t, tickets)
			assert.Empty(t, f.writer.eventTypes())
		})
	}
}

func TestAddOrderGrowsBill(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 1, line(f.burger, 2))

	resp, err := f.tables.AddOrder(f.ctx, AddOrderRequest{
		ServingTableID: table.ID,
		WaiterID:       f.waiter.ID,
		Order:          entity.OrderRequest{Code: 2, Lines: []entity.LineRequest{line(f.salad, 1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Serving table is successfully updated.", resp.Message)

	updated := f.table(t, table.ID)
	assert.Equal(t, int64(250), updated.TotalPrice)
	assert.Equal(t, int64(250), updated.RemainingBalance)
	assert.Equal(t, int64(0), updated.AmountPaid)
	assert.Len(t, updated.Orders, 2)
}

func TestAddOrderKeepsAmountPaid(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 1, line(f.burger, 2))

	_, err := f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 120})
	require.NoError(t, err)

	_, err = f.tables.AddOrder(f.ctx, AddOrderRequest{
		ServingTableID: table.ID,
		WaiterID:       f.otherWaiter.ID,
		Order:          entity.OrderRequest{Code: 2, Lines: []entity.LineRequest{line(f.salad, 1), line(f.cola, 2)}},
	})
	require.NoError(t, err)

	updated := f.table(t, table.ID)
	assert.Equal(t, int64(310), updated.TotalPrice)
	assert.Equal(t, int64(120), updated.AmountPaid)
	assert.Equal(t, int64(190), updated.RemainingBalance)
}

func TestAddOrderNotFound(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 1, line(f.burger, 1))

	_, err := f.tables.AddOrder(f.ctx, AddOrderRequest{ServingTableID: "missing", WaiterID: f.waiter.ID})
	requireServiceError(t, err, http.StatusNotFound, "Serving table or waiter were not found.")

	_, err = f.tables.AddOrder(f.ctx, AddOrderRequest{ServingTableID: table.ID, WaiterID: "missing"})
	requireServiceError(t, err, http.StatusNotFound, "Serving table or waiter were not found.")

	assert.Len(t, f.table(t, table.ID).Orders, 1)
}

func TestPayServingTable(t *testing.T) {
	tests := []struct {
		name          string
		amount        int64
		wantPaid      int64
		wantRemaining int64
		wantStatus    entity.ServingTableStatus
	}{
		{name: "partial", amount: 50, wantPaid: 50, wantRemaining: 150, wantStatus: entity.StatusReserved},
		{name: "exact", amount: 200, wantPaid: 200, wantRemaining: 0, wantStatus: entity.StatusClosed},
		{name: "overpay", amount: 250, wantPaid: 250, wantRemaining: -50, wantStatus: entity.StatusReserved},
		{name: "zero", amount: 0, wantPaid: 0, wantRemaining: 200, wantStatus: entity.StatusReserved},
		{name: "negative", amount: -20, wantPaid: -20, wantRemaining: 220, wantStatus: entity.StatusReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			table := f.openTable(t, f.waiter, 1, line(f.burger, 2))

			_, err := f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: tt.amount})
			require.NoError(t, err)

			paid := f.table(t, table.ID)
			assert.Equal(t, tt.wantPaid, paid.AmountPaid)
			assert.Equal(t, tt.wantRemaining, paid.RemainingBalance)
			assert.Equal(t, tt.wantStatus, paid.Status)

			payments, err := f.store.ListPayments(f.ctx)
			require.NoError(t, err)
			require.Len(t, payments, 1)
			assert.Equal(t, tt.amount, payments[0].AmountPaid)
		})
	}
}

func TestPayServingTableStrictPolicy(t *testing.T) {
	f := newFixture(t)
	f.tables.policy = StrictPolicy{}
	table := f.openTable(t, f.waiter, 1, line(f.burger, 2))

	_, err := f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 500})
	requireServiceError(t, err, http.StatusBadRequest, "Payment amount exceeds remaining balance.")

	_, err = f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 0})
	requireServiceError(t, err, http.StatusBadRequest, "Payment amount must be positive.")

	payments, err := f.store.ListPayments(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Equal(t, int64(200), f.table(t, table.ID).RemainingBalance)
}

func TestPayServingTableRejectsUnknownMethod(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 1, line(f.burger, 1))

	_, err := f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 100, Method: "Bitcoin"})
	requireServiceError(t, err, http.StatusBadRequest, "Unknown payment method: Bitcoin")

	_, err = f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 100, Method: entity.PaymentCard})
	require.NoError(t, err)
	payments, err := f.store.ListPayments(f.ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, entity.PaymentCard, payments[0].Method)
}

func TestPayServingTableRollsBackPaymentWhenTableUpdateFails(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 1, line(f.burger, 2))
	f.store.FailOn("UpdateServingTable", errors.New("lock wait timeout"))

	_, err := f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 200})
	requireServiceError(t, err, http.StatusInternalServerError, "Error while executing payment for serving table.")

	payments, err := f.store.ListPayments(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Equal(t, entity.StatusReserved, f.table(t, table.ID).Status)
}

func TestConcurrentPaymentsKeepBalance(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 1, line(f.burger, 2))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.tables.PayServingTable(context.Background(), PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 10})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	paid := f.table(t, table.ID)
	assert.Equal(t, int64(100), paid.AmountPaid)
	assert.Equal(t, int64(100), paid.RemainingBalance)
	payments, err := f.store.ListPayments(f.ctx)
	require.NoError(t, err)
	assert.Len(t, payments, 10)
}

func TestUpdateServingTable(t *testing.T) {
	f := newFixture(t)
	first := f.openTable(t, f.waiter, 1, line(f.burger, 1))
	second := f.openTable(t, f.waiter, 2, line(f.salad, 1))
	f.openTable(t, f.otherWaiter, 4, line(f.salad, 1))

	_, err := f.tables.UpdateServingTable(f.ctx, UpdateServingTableRequest{ServingTableID: second.ID, WaiterID: f.waiter.ID, Code: 1})
	requireServiceError(t, err, http.StatusConflict, "Waiter already has serving table with code: 1")
	assert.Equal(t, 2, f.table(t, second.ID).Code)

	_, err = f.tables.UpdateServingTable(f.ctx, UpdateServingTableRequest{ServingTableID: first.ID, WaiterID: f.waiter.ID, Code: 1})
	require.NoError(t, err)

	_, err = f.tables.UpdateServingTable(f.ctx, UpdateServingTableRequest{ServingTableID: second.ID, WaiterID: f.otherWaiter.ID, Code: 4})
	requireServiceError(t, err, http.StatusConflict, "")

	resp, err := f.tables.UpdateServingTable(f.ctx, UpdateServingTableRequest{ServingTableID: second.ID, WaiterID: f.otherWaiter.ID, Code: 5})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	moved := f.table(t, second.ID)
	assert.Equal(t, 5, moved.Code)
	assert.Equal(t, f.otherWaiter.ID, moved.WaiterID)
	assert.Equal(t, int64(50), moved.TotalPrice)

	_, err = f.tables.UpdateServingTable(f.ctx, UpdateServingTableRequest{ServingTableID: second.ID, WaiterID: "missing", Code: 9})
	requireServiceError(t, err, http.StatusNotFound, "Waiter was not found.")
}

func TestCloseServingTableIgnoresBalance(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 9, line(f.burger, 1))

	resp, err := f.tables.CloseServingTable(f.ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, "Serving table with code: 9 is closed successfully.", resp.Message)

	closed := f.table(t, table.ID)
	assert.Equal(t, entity.StatusClosed, closed.Status)
	assert.Equal(t, int64(100), closed.RemainingBalance)

	_, err = f.tables.CloseServingTable(f.ctx, "missing")
	requireServiceError(t, err, http.StatusNotFound, "Serving table was not found.")
}

func TestDeleteServingTableCascades(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 3, line(f.burger, 1))
	_, err := f.tables.PayServingTable(f.ctx, PayRequest{ServingTableID: table.ID, WaiterID: f.waiter.ID, AmountToPay: 40})
	require.NoError(t, err)

	resp, err := f.tables.DeleteServingTable(f.ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, "Serving table with code: 3 is deleted successfully.", resp.Message)

	_, err = f.tables.GetServingTable(f.ctx, table.ID)
	requireServiceError(t, err, http.StatusNotFound, "Serving table was not found.")
	payments, err := f.store.ListPayments(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)
	tickets, err := f.kitchen.ListUncompleted(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestIdempotencyKeyPreventsReplay(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f.tables.idempotency = NewIdempotencyGuard(rdb, time.Hour)

	req := CreateServingTableRequest{
		WaiterID:         f.waiter.ID,
		ServingTableCode: 1,
		Order:            entity.OrderRequest{Lines: []entity.LineRequest{line(f.burger, 1)}},
		IdempotencyKey:   "req-1",
	}
	_, err := f.tables.CreateServingTable(f.ctx, req)
	require.NoError(t, err)

	_, err = f.tables.CreateServingTable(f.ctx, req)
	requireServiceError(t, err, http.StatusConflict, "Request was already processed.")

	tables, err := f.store.ListServingTables(f.ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

func TestIdempotencyKeyReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f.tables.idempotency = NewIdempotencyGuard(rdb, time.Hour)
	table := f.openTable(t, f.waiter, 1, line(f.burger, 1))

	req := PayRequest{ServingTableID: table.ID, WaiterID: "missing", AmountToPay: 100, IdempotencyKey: "pay-1"}
	_, err := f.tables.PayServingTable(f.ctx, req)
	requireServiceError(t, err, http.StatusNotFound, "")
	assert.False(t, mr.Exists("idempotent-key:pay-1"))

	req.WaiterID = f.waiter.ID
	_, err = f.tables.PayServingTable(f.ctx, req)
	require.NoError(t, err)
	assert.True(t, mr.Exists("idempotent-key:pay-1"))
}

func TestServingTableEventsAreKeyedByTable(t *testing.T) {
	f := newFixture(t)
	table := f.openTable(t, f.waiter, 1, line(f.burger, 1))

	require.Len(t, f.writer.msgs, 1)
	msg := f.writer.msgs[0]
	assert.Equal(t, table.ID, string(msg.Key))

	var event entity.ServingTableEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventTableOpened, event.Type)
	assert.Equal(t, int64(100), event.TotalPrice)
	assert.Equal(t, table.Orders[0].ID, event.OrderID)
	assert.NotEmpty(t, event.KitchenOrderID)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.writer.err = errors.New("broker down")

	table := f.openTable(t, f.waiter, 1, line(f.burger, 1))
	assert.Equal(t, int64(100), table.TotalPrice)
}
