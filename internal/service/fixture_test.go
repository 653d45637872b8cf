package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/testutil/memstore"
)

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) eventTypes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var types []string
	for _, m := range w.msgs {
		for _, h := range m.Headers {
			if h.Key == EventHeader {
				types = append(types, string(h.Value))
			}
		}
	}
	return types
}

type fixture struct {
	ctx    context.Context
	store  *memstore.Store
	writer *recordingWriter

	waiter      entity.Waiter
	otherWaiter entity.Waiter
	beef        entity.Ingredient
	burger      entity.Product
	salad       entity.Product
	cola        entity.Product

	tables  *ServingTableService
	orders  *OrderService
	kitchen *KitchenOrderService
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	f := &fixture{
		ctx:         ctx,
		store:       store,
		writer:      &recordingWriter{},
		waiter:      entity.Waiter{Code: 1, FirstName: "Ana", LastName: "Petrovic"},
		otherWaiter: entity.Waiter{Code: 2, FirstName: "Marko", LastName: "Ilic"},
		beef:        entity.Ingredient{Name: "Beef", NameTranslated: "Govedina"},
	}
	require.NoError(t, store.CreateWaiter(ctx, &f.waiter))
	require.NoError(t, store.CreateWaiter(ctx, &f.otherWaiter))
	require.NoError(t, store.CreateIngredient(ctx, &f.beef))

	f.burger = entity.Product{Name: "Burger", NameTranslated: "Pljeskavica", Price: 100, Category: entity.CategoryMainDishes,
		Ingredients: []entity.Ingredient{f.beef}}
	f.salad = entity.Product{Name: "Salad", NameTranslated: "Salata", Price: 50, Category: entity.CategorySalads}
	f.cola = entity.Product{Name: "Cola", NameTranslated: "Kola", Price: 30, Category: entity.CategoryDrinks}
	for _, p := range []*entity.Product{&f.burger, &f.salad, &f.cola} {
		require.NoError(t, store.SaveProduct(ctx, p, true))
	}

	f.tables = NewServingTableService(store, f.writer, nil, nil)
	f.tables.now = func() time.Time { return fixedNow }
	f.orders = NewOrderService(store, f.writer)
	f.kitchen = NewKitchenOrderService(store, f.writer)
	return f
}

func line(p entity.Product, qty int) entity.LineRequest {
	return entity.LineRequest{ProductID: p.ID, Quantity: qty}
}

// openTable creates a table for waiter and returns it as stored.
func (f *fixture) openTable(t *testing.T, waiter entity.Waiter, code int, lines ...entity.LineRequest) entity.ServingTable {
	t.Helper()
	resp, err := f.tables.CreateServingTable(f.ctx, CreateServingTableRequest{
		WaiterID:         waiter.ID,
		ServingTableCode: code,
		Order:            entity.OrderRequest{Code: 1, Lines: lines},
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	return f.tableByCode(t, waiter, code)
}

func (f *fixture) tableByCode(t *testing.T, waiter entity.Waiter, code int) entity.ServingTable {
	t.Helper()
	tables, err := f.store.ListServingTables(f.ctx)
	require.NoError(t, err)
	for _, table := range tables {
		if table.WaiterID == waiter.ID && table.Code == code {
			return table
		}
	}
	t.Fatalf("no table %d for waiter %s", code, waiter.ID)
	return entity.ServingTable{}
}

func (f *fixture) table(t *testing.T, id string) entity.ServingTable {
	t.Helper()
	table, err := f.store.GetServingTable(f.ctx, id)
	require.NoError(t, err)
	require.True(t, table.Balanced(), "total %d != paid %d + remaining %d", table.TotalPrice, table.AmountPaid, table.RemainingBalance)
	return *table
}

func requireServiceError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	require.Error(t, err)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, code, svcErr.Code)
	if msg != "" {
		require.Equal(t, msg, svcErr.Message)
	}
}
