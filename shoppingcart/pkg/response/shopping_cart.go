package response

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inHttp "github.com/Alturino/shopping-cart/internal/http"
	"github.com/Alturino/shopping-cart/internal/model"
	"github.com/Alturino/shopping-cart/internal/numeric"
)

type Item struct {
	UnitPrice  numeric.Money `json:"unitPrice"`
	TotalPrice numeric.Money `json:"totalPrice"`
	Currency   *string       `json:"currency"`
	ProductID  string        `json:"productId"`
	Name       string        `json:"name"`
	ItemID     int64         `json:"itemId"`
	Quantity   int32         `json:"quantity"`
}

type Discount struct {
	Code       *string       `json:"code"`
	Amount     numeric.Money `json:"amount"`
	DiscountID int64         `json:"discountId"`
}

type ShoppingCart struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"userId"`
	Items          []Item        `json:"items"`
	Discounts      []Discount    `json:"discounts"`
	Subtotal       numeric.Money `json:"subtotal"`
	DiscountsTotal numeric.Money `json:"discountsTotal"`
	Tax            numeric.Money `json:"tax"`
	Shipping       numeric.Money `json:"shipping"`
	Total          numeric.Money `json:"total"`
	Currency       string        `json:"currency"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

// Assemble shapes a loaded aggregate for callers. Items and discounts are ordered by id
// whatever order they were loaded in and discountsTotal is summed on every call.
func Assemble(aggregate model.Aggregate) ShoppingCart {
	items := slices.Clone(aggregate.Items)
	slices.SortFunc(items, func(a, b model.Item) int { return cmp.Compare(a.ID, b.ID) })
	discounts := slices.Clone(aggregate.Discounts)
	slices.SortFunc(discounts, func(a, b model.Discount) int { return cmp.Compare(a.ID, b.ID) })

	itemResponses := make([]Item, 0, len(items))
	for _, i := range items {
		itemResponses = append(itemResponses, Item{
			ItemID:     i.ID,
			ProductID:  i.ProductID,
			Name:       i.Name,
			Quantity:   i.Quantity,
			UnitPrice:  numeric.NewMoney(i.UnitPrice),
			TotalPrice: numeric.NewMoney(i.TotalPrice),
			Currency:   i.Currency,
		})
	}

	discountsTotal := decimal.Zero
	discountResponses := make([]Discount, 0, len(discounts))
	for _, d := range discounts {
		discountsTotal = discountsTotal.Add(d.Amount)
		discountResponses = append(discountResponses, Discount{
			DiscountID: d.ID,
			Code:       d.Code,
			Amount:     numeric.NewMoney(d.Amount),
		})
	}

	return ShoppingCart{
		ID:             aggregate.ID,
		UserID:         aggregate.UserID,
		Items:          itemResponses,
		Discounts:      discountResponses,
		Subtotal:       numeric.NewMoney(aggregate.Subtotal),
		DiscountsTotal: numeric.NewMoney(discountsTotal),
		Tax:            numeric.NewMoney(aggregate.Tax),
		Shipping:       numeric.NewMoney(aggregate.Shipping),
		Total:          numeric.NewMoney(aggregate.Total),
		Currency:       aggregate.Currency,
		CreatedAt:      aggregate.CreatedAt.UTC().Format(inHttp.TimestampFormat),
		UpdatedAt:      aggregate.UpdatedAt.UTC().Format(inHttp.TimestampFormat),
	}
}

func AssembleAll(aggregates []model.Aggregate) []ShoppingCart {
	carts := make([]ShoppingCart, 0, len(aggregates))
	for _, aggregate := range aggregates {
		carts = append(carts, Assemble(aggregate))
	}
	return carts
}

type Overview struct {
	CartID         uuid.UUID     `json:"cartId"`
	UserID         uuid.UUID     `json:"userId"`
	Currency       string        `json:"currency"`
	Total          numeric.Money `json:"total"`
	Subtotal       numeric.Money `json:"subtotal"`
	Tax            numeric.Money `json:"tax"`
	Shipping       numeric.Money `json:"shipping"`
	ItemCount      int64         `json:"itemCount"`
	ItemsTotal     numeric.Money `json:"itemsTotal"`
	DiscountsTotal numeric.Money `json:"discountsTotal"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

func AssembleOverviews(overviews []model.Overview) []Overview {
	responses := make([]Overview, 0, len(overviews))
	for _, o := range overviews {
		responses = append(responses, Overview{
			CartID:         o.CartID,
			UserID:         o.UserID,
			Currency:       o.Currency,
			Total:          numeric.NewMoney(o.Total),
			Subtotal:       numeric.NewMoney(o.Subtotal),
			Tax:            numeric.NewMoney(o.Tax),
			Shipping:       numeric.NewMoney(o.Shipping),
			ItemCount:      o.ItemCount,
			ItemsTotal:     numeric.NewMoney(o.ItemsTotal),
			DiscountsTotal: numeric.NewMoney(o.DiscountsTotal),
			CreatedAt:      o.CreatedAt.UTC().Format(inHttp.TimestampFormat),
			UpdatedAt:      o.UpdatedAt.UTC().Format(inHttp.TimestampFormat),
		})
	}
	return responses
}
