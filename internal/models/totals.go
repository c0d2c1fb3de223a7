package models

import "github.com/shopspring/decimal"

// ItemSubtotal returns quantity * unitPrice.
func ItemSubtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// OrderTotal sums the subtotals of items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// ApplySubtotals sets every item's subtotal from its quantity and unit price
// and returns the resulting order total.
func ApplySubtotals(items []OrderItem) decimal.Decimal {
	for i := range items {
		items[i].Subtotal = ItemSubtotal(items[i].Quantity, items[i].UnitPrice)
	}
	return OrderTotal(items)
}
