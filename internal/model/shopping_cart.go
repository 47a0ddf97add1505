package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the aggregate root.
type Cart struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	Currency  string
	ID        uuid.UUID
	UserID    uuid.UUID
}

type Item struct {
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Currency   *string
	ProductID  string
	Name       string
	ID         int64
	Quantity   int32
	CartID     uuid.UUID
}

type Discount struct {
	Amount decimal.Decimal
	Code   *string
	ID     int64
	CartID uuid.UUID
}

// Aggregate is a cart loaded together with all of its items and discounts.
type Aggregate struct {
	Items     []Item
	Discounts []Discount
	Cart
}

// NewItem holds the fields a caller supplies when writing an item.
type NewItem struct {
	UnitPrice  decimal.Decimal
	TotalPrice *decimal.Decimal
	Currency   *string
	ProductID  string
	Name       string
	Quantity   int32
}

type NewDiscount struct {
	Amount decimal.Decimal
	Code   *string
}

func LineTotal(unitPrice decimal.Decimal, quantity int32) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt32(quantity))
}

// Resolve fills the write time defaults of an item. The total price is only derived when the
// caller omitted it and the currency falls back to the cart currency.
func (i NewItem) Resolve(cartCurrency string) NewItem {
	if i.TotalPrice == nil {
		total := LineTotal(i.UnitPrice, i.Quantity)
		i.TotalPrice = &total
	}
	if i.Currency == nil {
		currency := cartCurrency
		i.Currency = &currency
	}
	return i
}

// Overview is one row of the read only per cart summary.
type Overview struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Total          decimal.Decimal
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Shipping       decimal.Decimal
	ItemsTotal     decimal.Decimal
	DiscountsTotal decimal.Decimal
	Currency       string
	ItemCount      int64
	CartID         uuid.UUID
	UserID         uuid.UUID
}
