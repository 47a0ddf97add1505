package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Alturino/shopping-cart/internal/model"
	"github.com/Alturino/shopping-cart/internal/numeric"
)

type itemRow struct {
	Currency   *string         `json:"currency"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	ID         int64           `json:"id"`
	Quantity   int32           `json:"quantity"`
}

type discountRow struct {
	Code   *string         `json:"code"`
	Amount decimal.Decimal `json:"amount"`
	ID     int64           `json:"id"`
}

func (f FindShoppingCartRow) Aggregate() (model.Aggregate, error) {
	cart, err := ShoppingCart{
		CartID:    f.CartID,
		UserID:    f.UserID,
		Subtotal:  f.Subtotal,
		Tax:       f.Tax,
		Shipping:  f.Shipping,
		Total:     f.Total,
		Currency:  f.Currency,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}.Model()
	if err != nil {
		return model.Aggregate{}, err
	}

	itemRows := []itemRow{}
	if err := json.Unmarshal(f.Items, &itemRows); err != nil {
		return model.Aggregate{}, fmt.Errorf("failed decoding items with error=%w", err)
	}
	items := make([]model.Item, 0, len(itemRows))
	for _, i := range itemRows {
		items = append(items, model.Item{
			ID:         i.ID,
			CartID:     f.CartID,
			ProductID:  i.ProductID,
			Name:       i.Name,
			Quantity:   i.Quantity,
			UnitPrice:  i.UnitPrice,
			TotalPrice: i.TotalPrice,
			Currency:   trimCurrency(i.Currency),
		})
	}

	discountRows := []discountRow{}
	if err := json.Unmarshal(f.Discounts, &discountRows); err != nil {
		return model.Aggregate{}, fmt.Errorf("failed decoding discounts with error=%w", err)
	}
	discounts := make([]model.Discount, 0, len(discountRows))
	for _, d := range discountRows {
		discounts = append(discounts, model.Discount{
			ID:     d.ID,
			CartID: f.CartID,
			Code:   d.Code,
			Amount: d.Amount,
		})
	}

	return model.Aggregate{Cart: cart, Items: items, Discounts: discounts}, nil
}

func (s ShoppingCart) Model() (model.Cart, error) {
	amounts, err := fromPgNumerics(s.Subtotal, s.Tax, s.Shipping, s.Total)
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed decoding cart_id=%s with error=%w", s.CartID, err)
	}
	return model.Cart{
		ID:        s.CartID,
		UserID:    s.UserID,
		Subtotal:  amounts[0],
		Tax:       amounts[1],
		Shipping:  amounts[2],
		Total:     amounts[3],
		Currency:  strings.TrimSpace(s.Currency),
		CreatedAt: s.CreatedAt.Time,
		UpdatedAt: s.UpdatedAt.Time,
	}, nil
}

func (o ShoppingCartOverview) Model() (model.Overview, error) {
	amounts, err := fromPgNumerics(
		o.Total,
		o.Subtotal,
		o.Tax,
		o.Shipping,
		o.ItemsTotal,
		o.DiscountsTotal,
	)
	if err != nil {
		return model.Overview{}, fmt.Errorf("failed decoding overview cart_id=%s with error=%w", o.CartID, err)
	}
	return model.Overview{
		CartID:         o.CartID,
		UserID:         o.UserID,
		Currency:       strings.TrimSpace(o.Currency),
		Total:          amounts[0],
		Subtotal:       amounts[1],
		Tax:            amounts[2],
		Shipping:       amounts[3],
		ItemCount:      o.ItemCount,
		ItemsTotal:     amounts[4],
		DiscountsTotal: amounts[5],
		CreatedAt:      o.CreatedAt.Time,
		UpdatedAt:      o.UpdatedAt.Time,
	}, nil
}

func insertShoppingCartParams(cart model.Cart) InsertShoppingCartParams {
	return InsertShoppingCartParams{
		CartID:   cart.ID,
		UserID:   cart.UserID,
		Subtotal: numeric.ToPgNumeric(cart.Subtotal),
		Tax:      numeric.ToPgNumeric(cart.Tax),
		Shipping: numeric.ToPgNumeric(cart.Shipping),
		Total:    numeric.ToPgNumeric(cart.Total),
		Currency: cart.Currency,
	}
}

func insertShoppingCartItemsParams(cart model.Cart, items []model.NewItem) []InsertShoppingCartItemsParams {
	params := make([]InsertShoppingCartItemsParams, 0, len(items))
	for _, item := range items {
		item = item.Resolve(cart.Currency)
		params = append(params, InsertShoppingCartItemsParams{
			CartID:     cart.ID,
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  numeric.ToPgNumeric(item.UnitPrice),
			TotalPrice: numeric.ToPgNumeric(*item.TotalPrice),
			Currency:   toPgText(item.Currency),
		})
	}
	return params
}

func insertShoppingCartDiscountsParams(cart model.Cart, discounts []model.NewDiscount) []InsertShoppingCartDiscountsParams {
	params := make([]InsertShoppingCartDiscountsParams, 0, len(discounts))
	for _, discount := range discounts {
		params = append(params, InsertShoppingCartDiscountsParams{
			CartID: cart.ID,
			Code:   toPgText(discount.Code),
			Amount: numeric.ToPgNumeric(discount.Amount),
		})
	}
	return params
}

func fromPgNumerics(values ...pgtype.Numeric) ([]decimal.Decimal, error) {
	decimals := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		d, err := numeric.FromPgNumeric(v)
		if err != nil {
			return nil, err
		}
		decimals = append(decimals, d)
	}
	return decimals, nil
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func trimCurrency(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
