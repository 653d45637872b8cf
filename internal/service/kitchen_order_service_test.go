package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/entity"
)

func TestListUncompletedLeavesOutDrinks(t *testing.T) {
	f := newFixture(t)
	food := f.openTable(t, f.waiter, 4, line(f.burger, 1), line(f.cola, 2))
	f.openTable(t, f.otherWaiter, 5, line(f.cola, 1))

	tickets, err := f.kitchen.ListUncompleted(f.ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	ticket := tickets[0]
	assert.Equal(t, food.Orders[0].ID, ticket.OrderID)
	assert.Equal(t, 4, ticket.TableCode)
	assert.Equal(t, &entity.WaiterName{FirstName: "Ana", LastName: "Petrovic"}, ticket.Waiter)
	require.Len(t, ticket.Lines, 1)
	assert.Equal(t, f.burger.ID, ticket.Lines[0].ProductID)
	require.Len(t, ticket.Lines[0].Product.Ingredients, 1)
	assert.Equal(t, "Beef", ticket.Lines[0].Product.Ingredients[0].Name)
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.openTable(t, f.waiter, 1, line(f.burger, 1))
	tickets, err := f.kitchen.ListUncompleted(f.ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	id := tickets[0].ID

	for i := 0; i < 2; i++ {
		resp, err := f.kitchen.MarkCompleted(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Order is marked as completed.", resp.Message)

		ticket, err := f.store.GetKitchenOrder(f.ctx, id)
		require.NoError(t, err)
		assert.True(t, ticket.Completed)
	}

	open, err := f.kitchen.ListUncompleted(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	completed := 0
	for _, eventType := range f.writer.eventTypes() {
		if eventType == EventKitchenCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestMarkCompletedNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.kitchen.MarkCompleted(f.ctx, "missing")
	requireServiceError(t, err, http.StatusNotFound, "Kitchen order was not found.")
}

func TestListCompletedForWaiter(t *testing.T) {
	f := newFixture(t)
	f.openTable(t, f.waiter, 1, line(f.burger, 1))
	f.openTable(t, f.otherWaiter, 2, line(f.salad, 1))

	tickets, err := f.kitchen.ListUncompleted(f.ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	for _, ticket := range tickets {
		_, err := f.kitchen.MarkCompleted(f.ctx, ticket.ID)
		require.NoError(t, err)
	}

	done, err := f.kitchen.ListCompletedForWaiter(f.ctx, f.otherWaiter.ID)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, 2, done[0].TableCode)
	assert.Equal(t, 1, done[0].OrderCode)
	assert.Equal(t, "Marko", done[0].Waiter.FirstName)

	none, err := f.kitchen.ListCompletedForWaiter(f.ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
