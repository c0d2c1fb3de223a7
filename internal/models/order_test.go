package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOrderNumber(t *testing.T) {
	first, err := NextOrderNumber("")
	require.NoError(t, err)
	assert.Equal(t, "ORD-001001", first)

	second, err := NextOrderNumber(first)
	require.NoError(t, err)
	assert.Equal(t, "ORD-001002", second)

	wide, err := NextOrderNumber("ORD-999999")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1000000", wide)
}

func TestNextOrderNumberStrictlyIncreases(t *testing.T) {
	last := ""
	var prev int64
	for i := 0; i < 50; i++ {
		next, err := NextOrderNumber(last)
		require.NoError(t, err)

		n, err := ParseOrderNumber(next)
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, n, prev)
		}
		prev = n
		last = next
	}
	assert.Equal(t, int64(1050), prev)
}

func TestNextOrderNumberMalformed(t *testing.T) {
	for _, s := range []string{"ORD", "ORD-", "ORD-abc", "ORD--5"} {
		_, err := NextOrderNumber(s)
		assert.Error(t, err, s)
	}
}

func TestOrderTotals(t *testing.T) {
	items := []OrderItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
	}

	total := ApplySubtotals(items)

	assert.True(t, items[0].Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, items[1].Subtotal.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, total.Equal(decimal.RequireFromString("25.00")), total.String())
	assert.True(t, OrderTotal(items).Equal(total))
}

func TestOrderTotalEmpty(t *testing.T) {
	assert.True(t, OrderTotal(nil).IsZero())
}

func TestItemSubtotalIsExact(t *testing.T) {
	got := ItemSubtotal(3, decimal.RequireFromString("0.1"))
	assert.True(t, got.Equal(decimal.RequireFromString("0.3")), got.String())
}
