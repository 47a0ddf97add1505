package request

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/model"
	"github.com/Alturino/shopping-cart/internal/numeric"
	"github.com/Alturino/shopping-cart/internal/validate"
)

type Item struct {
	UnitPrice  *decimal.Decimal `json:"unitPrice"  validate:"required,money"`
	TotalPrice *decimal.Decimal `json:"totalPrice" validate:"omitnil,money"`
	Currency   *string          `json:"currency"   validate:"omitnil,currency"`
	ProductID  string           `json:"productId"  validate:"required,max=100"`
	Name       string           `json:"name"       validate:"required,max=255"`
	Quantity   int64            `json:"quantity"   validate:"gte=1,lte=2147483647"`
}

type Discount struct {
	Code   *string          `json:"code"   validate:"omitnil,min=1,max=64"`
	Amount *decimal.Decimal `json:"amount" validate:"required,money"`
}

// UpdateDiscount differs from Discount only in the amount, which defaults to zero.
type UpdateDiscount struct {
	Code   *string          `json:"code"   validate:"omitnil,min=1,max=64"`
	Amount *decimal.Decimal `json:"amount" validate:"omitnil,money"`
}

// CreateShoppingCart accepts discountsTotal, createdAt and updatedAt for compatibility with
// clients echoing a previous response, none of them are stored.
type CreateShoppingCart struct {
	ID             *string          `json:"id"             validate:"omitnil,uuid"`
	DiscountsTotal *decimal.Decimal `json:"discountsTotal" validate:"omitnil,money"`
	Subtotal       *decimal.Decimal `json:"subtotal"       validate:"required,money"`
	Tax            *decimal.Decimal `json:"tax"            validate:"required,money"`
	Shipping       *decimal.Decimal `json:"shipping"       validate:"required,money"`
	Total          *decimal.Decimal `json:"total"          validate:"required,money"`
	CreatedAt      *string          `json:"createdAt"`
	UpdatedAt      *string          `json:"updatedAt"`
	UserID         string           `json:"userId"         validate:"required,uuid"`
	Currency       string           `json:"currency"       validate:"required,currency"`
	Items          []Item           `json:"items"          validate:"required,dive"`
	Discounts      []Discount       `json:"discounts"      validate:"omitempty,dive"`
}

// UpdateShoppingCart is a partial update. A present items or discounts array, even an empty
// one, replaces the stored collection.
type UpdateShoppingCart struct {
	UserID         *string          `json:"userId"         validate:"omitnil,uuid"`
	DiscountsTotal *decimal.Decimal `json:"discountsTotal" validate:"omitnil,money"`
	Subtotal       *decimal.Decimal `json:"subtotal"       validate:"omitnil,money"`
	Tax            *decimal.Decimal `json:"tax"            validate:"omitnil,money"`
	Shipping       *decimal.Decimal `json:"shipping"       validate:"omitnil,money"`
	Total          *decimal.Decimal `json:"total"          validate:"omitnil,money"`
	Currency       *string          `json:"currency"       validate:"omitnil,currency"`
	CreatedAt      *string          `json:"createdAt"`
	UpdatedAt      *string          `json:"updatedAt"`
	Items          []Item           `json:"items"          validate:"omitempty,dive"`
	Discounts      []UpdateDiscount `json:"discounts"      validate:"omitempty,dive"`
}

// Cart builds the cart row. A missing id gets a fresh random one.
func (r CreateShoppingCart) Cart() (model.Cart, error) {
	cartID := uuid.New()
	if r.ID != nil {
		parsed, err := uuid.Parse(*r.ID)
		if err != nil {
			return model.Cart{}, fmt.Errorf("failed parsing id=%s with error=%w", *r.ID, err)
		}
		cartID = parsed
	}
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed parsing userId=%s with error=%w", r.UserID, err)
	}
	return model.Cart{
		ID:       cartID,
		UserID:   userID,
		Subtotal: valueOrZero(r.Subtotal),
		Tax:      valueOrZero(r.Tax),
		Shipping: valueOrZero(r.Shipping),
		Total:    valueOrZero(r.Total),
		Currency: r.Currency,
	}, nil
}

// Apply patches cart with the fields present in r.
func (r UpdateShoppingCart) Apply(cart model.Cart) (model.Cart, error) {
	if r.UserID != nil {
		userID, err := uuid.Parse(*r.UserID)
		if err != nil {
			return model.Cart{}, fmt.Errorf("failed parsing userId=%s with error=%w", *r.UserID, err)
		}
		cart.UserID = userID
	}
	if r.Subtotal != nil {
		cart.Subtotal = *r.Subtotal
	}
	if r.Tax != nil {
		cart.Tax = *r.Tax
	}
	if r.Shipping != nil {
		cart.Shipping = *r.Shipping
	}
	if r.Total != nil {
		cart.Total = *r.Total
	}
	if r.Currency != nil {
		cart.Currency = *r.Currency
	}
	return cart, nil
}

func (r UpdateShoppingCart) NewDiscounts() []model.NewDiscount {
	discounts := make([]model.NewDiscount, 0, len(r.Discounts))
	for _, d := range r.Discounts {
		discounts = append(discounts, model.NewDiscount{Code: d.Code, Amount: valueOrZero(d.Amount)})
	}
	return discounts
}

// NewItems resolves the write time defaults of items. A derived total price that does not fit
// the money rule is reported as a validation failure of that item.
func NewItems(items []Item, cartCurrency string) ([]model.NewItem, error) {
	newItems := make([]model.NewItem, 0, len(items))
	var violations []inErrors.Violation
	for idx, i := range items {
		item := model.NewItem{
			ProductID:  i.ProductID,
			Name:       i.Name,
			Quantity:   int32(i.Quantity),
			UnitPrice:  valueOrZero(i.UnitPrice),
			TotalPrice: i.TotalPrice,
			Currency:   i.Currency,
		}.Resolve(cartCurrency)
		if !numeric.IsMoney(*item.TotalPrice) {
			violations = append(violations, validate.MoneyViolation(fmt.Sprintf("items[%d].totalPrice", idx)))
		}
		newItems = append(newItems, item)
	}
	if len(violations) > 0 {
		return nil, inErrors.NewValidationError(violations...)
	}
	return newItems, nil
}

func NewDiscounts(discounts []Discount) []model.NewDiscount {
	newDiscounts := make([]model.NewDiscount, 0, len(discounts))
	for _, d := range discounts {
		newDiscounts = append(newDiscounts, model.NewDiscount{Code: d.Code, Amount: valueOrZero(d.Amount)})
	}
	return newDiscounts
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
