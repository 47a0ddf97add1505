package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const shoppingCartAggregateColumns = `
  c.cart_id,
  c.user_id,
  c.subtotal,
  c.tax,
  c.shipping,
  c.total,
  c.currency,
  c.created_at,
  c.updated_at,
  coalesce(
    (
      select json_agg(
        json_build_object(
          'id', i.item_id,
          'productId', i.product_id,
          'name', i.name,
          'quantity', i.quantity,
          'unitPrice', i.unit_price,
          'totalPrice', i.total_price,
          'currency', i.currency
        ) order by i.item_id
      )
      from shopping_cart.shopping_cart_item i
      where i.cart_id = c.cart_id
    ),
    '[]'
  )::json as items,
  coalesce(
    (
      select json_agg(
        json_build_object(
          'id', d.discount_id,
          'code', d.code,
          'amount', d.amount
        ) order by d.discount_id
      )
      from shopping_cart.shopping_cart_discount d
      where d.cart_id = c.cart_id
    ),
    '[]'
  )::json as discounts
`

const findShoppingCartById = `-- name: FindShoppingCartById :one
select` + shoppingCartAggregateColumns + `
from shopping_cart.shopping_cart c
where c.cart_id = $1
`

type FindShoppingCartRow struct {
	CartID    uuid.UUID          `json:"cart_id"`
	UserID    uuid.UUID          `json:"user_id"`
	Subtotal  pgtype.Numeric     `json:"subtotal"`
	Tax       pgtype.Numeric     `json:"tax"`
	Shipping  pgtype.Numeric     `json:"shipping"`
	Total     pgtype.Numeric     `json:"total"`
	Currency  string             `json:"currency"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
	Items     []byte             `json:"items"`
	Discounts []byte             `json:"discounts"`
}

func (q *Queries) FindShoppingCartById(c context.Context, cartID uuid.UUID) (FindShoppingCartRow, error) {
	row := q.db.QueryRow(c, findShoppingCartById, cartID)
	var i FindShoppingCartRow
	err := row.Scan(
		&i.CartID,
		&i.UserID,
		&i.Subtotal,
		&i.Tax,
		&i.Shipping,
		&i.Total,
		&i.Currency,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.Items,
		&i.Discounts,
	)
	return i, err
}

const findShoppingCarts = `-- name: FindShoppingCarts :many
select` + shoppingCartAggregateColumns + `
from shopping_cart.shopping_cart c
order by c.created_at desc, c.cart_id
`

func (q *Queries) FindShoppingCarts(c context.Context) ([]FindShoppingCartRow, error) {
	rows, err := q.db.Query(c, findShoppingCarts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindShoppingCartRow{}
	for rows.Next() {
		var i FindShoppingCartRow
		if err := rows.Scan(
			&i.CartID,
			&i.UserID,
			&i.Subtotal,
			&i.Tax,
			&i.Shipping,
			&i.Total,
			&i.Currency,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.Items,
			&i.Discounts,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertShoppingCart = `-- name: InsertShoppingCart :one
insert into shopping_cart.shopping_cart (
  cart_id, user_id, subtotal, tax, shipping, total, currency
) values ($1, $2, $3, $4, $5, $6, $7)
returning cart_id, user_id, subtotal, tax, shipping, total, currency, created_at, updated_at
`

type InsertShoppingCartParams struct {
	CartID   uuid.UUID      `json:"cart_id"`
	UserID   uuid.UUID      `json:"user_id"`
	Subtotal pgtype.Numeric `json:"subtotal"`
	Tax      pgtype.Numeric `json:"tax"`
	Shipping pgtype.Numeric `json:"shipping"`
	Total    pgtype.Numeric `json:"total"`
	Currency string         `json:"currency"`
}

func (q *Queries) InsertShoppingCart(c context.Context, arg InsertShoppingCartParams) (ShoppingCart, error) {
	row := q.db.QueryRow(c, insertShoppingCart,
		arg.CartID,
		arg.UserID,
		arg.Subtotal,
		arg.Tax,
		arg.Shipping,
		arg.Total,
		arg.Currency,
	)
	var i ShoppingCart
	err := row.Scan(
		&i.CartID,
		&i.UserID,
		&i.Subtotal,
		&i.Tax,
		&i.Shipping,
		&i.Total,
		&i.Currency,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertShoppingCart = `-- name: UpsertShoppingCart :one
insert into shopping_cart.shopping_cart (
  cart_id, user_id, subtotal, tax, shipping, total, currency
) values ($1, $2, $3, $4, $5, $6, $7)
on conflict (cart_id) do update set
  user_id = excluded.user_id,
  subtotal = excluded.subtotal,
  tax = excluded.tax,
  shipping = excluded.shipping,
  total = excluded.total,
  currency = excluded.currency,
  updated_at = now()
returning cart_id, user_id, subtotal, tax, shipping, total, currency, created_at, updated_at
`

type UpsertShoppingCartParams InsertShoppingCartParams

func (q *Queries) UpsertShoppingCart(c context.Context, arg UpsertShoppingCartParams) (ShoppingCart, error) {
	row := q.db.QueryRow(c, upsertShoppingCart,
		arg.CartID,
		arg.UserID,
		arg.Subtotal,
		arg.Tax,
		arg.Shipping,
		arg.Total,
		arg.Currency,
	)
	var i ShoppingCart
	err := row.Scan(
		&i.CartID,
		&i.UserID,
		&i.Subtotal,
		&i.Tax,
		&i.Shipping,
		&i.Total,
		&i.Currency,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type InsertShoppingCartItemsParams struct {
	CartID     uuid.UUID      `json:"cart_id"`
	ProductID  string         `json:"product_id"`
	Name       string         `json:"name"`
	Quantity   int32          `json:"quantity"`
	UnitPrice  pgtype.Numeric `json:"unit_price"`
	TotalPrice pgtype.Numeric `json:"total_price"`
	Currency   pgtype.Text    `json:"currency"`
}

type InsertShoppingCartDiscountsParams struct {
	CartID uuid.UUID      `json:"cart_id"`
	Code   pgtype.Text    `json:"code"`
	Amount pgtype.Numeric `json:"amount"`
}

const deleteShoppingCartItemsByCartId = `-- name: DeleteShoppingCartItemsByCartId :execrows
delete from shopping_cart.shopping_cart_item where cart_id = $1
`

func (q *Queries) DeleteShoppingCartItemsByCartId(c context.Context, cartID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(c, deleteShoppingCartItemsByCartId, cartID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteShoppingCartDiscountsByCartId = `-- name: DeleteShoppingCartDiscountsByCartId :execrows
delete from shopping_cart.shopping_cart_discount where cart_id = $1
`

func (q *Queries) DeleteShoppingCartDiscountsByCartId(c context.Context, cartID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(c, deleteShoppingCartDiscountsByCartId, cartID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteShoppingCartById = `-- name: DeleteShoppingCartById :execrows
delete from shopping_cart.shopping_cart where cart_id = $1
`

func (q *Queries) DeleteShoppingCartById(c context.Context, cartID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(c, deleteShoppingCartById, cartID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const findShoppingCartIds = `-- name: FindShoppingCartIds :many
select cart_id from shopping_cart.shopping_cart
`

func (q *Queries) FindShoppingCartIds(c context.Context) ([]uuid.UUID, error) {
	rows, err := q.db.Query(c, findShoppingCartIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []uuid.UUID{}
	for rows.Next() {
		var cartID uuid.UUID
		if err := rows.Scan(&cartID); err != nil {
			return nil, err
		}
		items = append(items, cartID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteShoppingCartDiscountsByCartIds = `-- name: DeleteShoppingCartDiscountsByCartIds :execrows
delete from shopping_cart.shopping_cart_discount where cart_id = any($1::uuid[])
`

func (q *Queries) DeleteShoppingCartDiscountsByCartIds(c context.Context, cartIDs []uuid.UUID) (int64, error) {
	result, err := q.db.Exec(c, deleteShoppingCartDiscountsByCartIds, cartIDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteShoppingCartItemsByCartIds = `-- name: DeleteShoppingCartItemsByCartIds :execrows
delete from shopping_cart.shopping_cart_item where cart_id = any($1::uuid[])
`

func (q *Queries) DeleteShoppingCartItemsByCartIds(c context.Context, cartIDs []uuid.UUID) (int64, error) {
	result, err := q.db.Exec(c, deleteShoppingCartItemsByCartIds, cartIDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteShoppingCartsByIds = `-- name: DeleteShoppingCartsByIds :execrows
delete from shopping_cart.shopping_cart where cart_id = any($1::uuid[])
`

func (q *Queries) DeleteShoppingCartsByIds(c context.Context, cartIDs []uuid.UUID) (int64, error) {
	result, err := q.db.Exec(c, deleteShoppingCartsByIds, cartIDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const findShoppingCartOverviews = `-- name: FindShoppingCartOverviews :many
select
  cart_id,
  user_id,
  currency,
  total,
  subtotal,
  tax,
  shipping,
  item_count,
  items_total,
  discounts_total,
  created_at,
  updated_at
from shopping_cart.shopping_cart_overview
order by created_at desc, cart_id
`

func (q *Queries) FindShoppingCartOverviews(c context.Context) ([]ShoppingCartOverview, error) {
	rows, err := q.db.Query(c, findShoppingCartOverviews)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ShoppingCartOverview{}
	for rows.Next() {
		var i ShoppingCartOverview
		if err := rows.Scan(
			&i.CartID,
			&i.UserID,
			&i.Currency,
			&i.Total,
			&i.Subtotal,
			&i.Tax,
			&i.Shipping,
			&i.ItemCount,
			&i.ItemsTotal,
			&i.DiscountsTotal,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
