package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type iteratorForInsertShoppingCartItems struct {
	rows                 []InsertShoppingCartItemsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertShoppingCartItems) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertShoppingCartItems) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].CartID,
		r.rows[0].ProductID,
		r.rows[0].Name,
		r.rows[0].Quantity,
		r.rows[0].UnitPrice,
		r.rows[0].TotalPrice,
		r.rows[0].Currency,
	}, nil
}

func (r iteratorForInsertShoppingCartItems) Err() error {
	return nil
}

func (q *Queries) InsertShoppingCartItems(c context.Context, arg []InsertShoppingCartItemsParams) (int64, error) {
	return q.db.CopyFrom(
		c,
		pgx.Identifier{"shopping_cart", "shopping_cart_item"},
		[]string{"cart_id", "product_id", "name", "quantity", "unit_price", "total_price", "currency"},
		&iteratorForInsertShoppingCartItems{rows: arg},
	)
}

type iteratorForInsertShoppingCartDiscounts struct {
	rows                 []InsertShoppingCartDiscountsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertShoppingCartDiscounts) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertShoppingCartDiscounts) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].CartID,
		r.rows[0].Code,
		r.rows[0].Amount,
	}, nil
}

func (r iteratorForInsertShoppingCartDiscounts) Err() error {
	return nil
}

func (q *Queries) InsertShoppingCartDiscounts(c context.Context, arg []InsertShoppingCartDiscountsParams) (int64, error) {
	return q.db.CopyFrom(
		c,
		pgx.Identifier{"shopping_cart", "shopping_cart_discount"},
		[]string{"cart_id", "code", "amount"},
		&iteratorForInsertShoppingCartDiscounts{rows: arg},
	)
}
