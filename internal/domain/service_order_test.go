package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestServiceOrder_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusAwaiting, OrderStatusInProgress, true},
		{OrderStatusAwaiting, OrderStatusConcluded, false},
		{OrderStatusInProgress, OrderStatusAwaitingParts, true},
		{OrderStatusInProgress, OrderStatusConcluded, true},
		{OrderStatusAwaitingParts, OrderStatusInProgress, true},
		{OrderStatusAwaitingParts, OrderStatusConcluded, false},
		{OrderStatusConcluded, OrderStatusCancelled, true},
		{OrderStatusConcluded, OrderStatusInProgress, false},
		{OrderStatusCancelled, OrderStatusAwaiting, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
	}

	for _, c := range cases {
		order := ServiceOrder{Status: c.from}
		assert.Equal(t, c.allowed, order.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestPartItem_LineTotal(t *testing.T) {
	item := PartItem{Quantity: 3, UnitPriceCharged: decimal.RequireFromString("25.50")}

	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("76.50")))
}

func TestPartItem_ConfirmUsage(t *testing.T) {
	t.Run("baixa o estoque exatamente uma vez", func(t *testing.T) {
		part := Part{QuantityInStock: 10, Status: PartStatusAvailable}
		item := PartItem{Quantity: 4}

		applied, err := item.ConfirmUsage(&part)
		assert.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, 6, part.QuantityInStock)
		assert.True(t, item.StockReduced)

		// Segunda confirmação é no-op.
		applied, err = item.ConfirmUsage(&part)
		assert.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, 6, part.QuantityInStock)
	})

	t.Run("estoque insuficiente retorna erro sem mutação", func(t *testing.T) {
		part := Part{QuantityInStock: 2, Status: PartStatusAvailable}
		item := PartItem{Quantity: 3}

		applied, err := item.ConfirmUsage(&part)

		assert.Error(t, err)
		assert.False(t, applied)
		assert.False(t, item.StockReduced)
		assert.Equal(t, 2, part.QuantityInStock)
	})
}

func TestPartItem_RevertUsage(t *testing.T) {
	part := Part{QuantityInStock: 10, Status: PartStatusAvailable}
	item := PartItem{Quantity: 4}

	// Reverter linha nunca baixada é no-op.
	assert.False(t, item.RevertUsage(&part))
	assert.Equal(t, 10, part.QuantityInStock)

	item.ConfirmUsage(&part)
	assert.Equal(t, 6, part.QuantityInStock)

	assert.True(t, item.RevertUsage(&part))
	assert.Equal(t, 10, part.QuantityInStock)
	assert.False(t, item.StockReduced)

	// Alternância: confirmar de novo volta a baixar.
	applied, err := item.ConfirmUsage(&part)
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 6, part.QuantityInStock)
}
