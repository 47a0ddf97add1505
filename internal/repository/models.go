package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ShoppingCart struct {
	CartID    uuid.UUID          `json:"cart_id"`
	UserID    uuid.UUID          `json:"user_id"`
	Subtotal  pgtype.Numeric     `json:"subtotal"`
	Tax       pgtype.Numeric     `json:"tax"`
	Shipping  pgtype.Numeric     `json:"shipping"`
	Total     pgtype.Numeric     `json:"total"`
	Currency  string             `json:"currency"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type ShoppingCartItem struct {
	ItemID     int64          `json:"item_id"`
	CartID     uuid.UUID      `json:"cart_id"`
	ProductID  string         `json:"product_id"`
	Name       string         `json:"name"`
	Quantity   int32          `json:"quantity"`
	UnitPrice  pgtype.Numeric `json:"unit_price"`
	TotalPrice pgtype.Numeric `json:"total_price"`
	Currency   pgtype.Text    `json:"currency"`
}

type ShoppingCartDiscount struct {
	DiscountID int64          `json:"discount_id"`
	CartID     uuid.UUID      `json:"cart_id"`
	Code       pgtype.Text    `json:"code"`
	Amount     pgtype.Numeric `json:"amount"`
}

type ShoppingCartOverview struct {
	CartID         uuid.UUID          `json:"cart_id"`
	UserID         uuid.UUID          `json:"user_id"`
	Currency       string             `json:"currency"`
	Total          pgtype.Numeric     `json:"total"`
	Subtotal       pgtype.Numeric     `json:"subtotal"`
	Tax            pgtype.Numeric     `json:"tax"`
	Shipping       pgtype.Numeric     `json:"shipping"`
	ItemCount      int64              `json:"item_count"`
	ItemsTotal     pgtype.Numeric     `json:"items_total"`
	DiscountsTotal pgtype.Numeric     `json:"discounts_total"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}
