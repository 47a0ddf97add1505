package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/model"
)

func ptr[T any](v T) *T {
	return &v
}

func newCart(currency string) model.Cart {
	return model.Cart{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Subtotal: decimal.RequireFromString("129.99"),
		Tax:      decimal.RequireFromString("10.40"),
		Shipping: decimal.RequireFromString("5.00"),
		Total:    decimal.RequireFromString("135.39"),
		Currency: currency,
	}
}

func newItem(productID string, quantity int32, unitPrice string) model.NewItem {
	return model.NewItem{
		ProductID: productID,
		Name:      "Product " + productID,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(unitPrice),
	}
}

func TestShoppingCartRepository(t *testing.T) {
	c := context.Background()
	pool, pgContainer, repo := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	t.Run("given new aggregate when saved should load the same aggregate", func(t *testing.T) {
		cart := newCart("USD")
		saved, err := repo.Save(c, SaveShoppingCart{
			Cart:   cart,
			Insert: true,
			Items: []model.NewItem{
				newItem("SKU-777", 1, "129.99"),
				{
					ProductID:  "SKU-778",
					Name:       "Cable",
					Quantity:   3,
					UnitPrice:  decimal.RequireFromString("2.50"),
					TotalPrice: ptr(decimal.RequireFromString("6.00")),
					Currency:   ptr("EUR"),
				},
			},
			Discounts: []model.NewDiscount{
				{Code: ptr("WELCOME10"), Amount: decimal.NewFromInt(10)},
				{Amount: decimal.RequireFromString("1.50")},
				{Amount: decimal.RequireFromString("0.50")},
			},
			ReplaceItems:     true,
			ReplaceDiscounts: true,
		})
		require.NoError(t, err)

		loaded, err := repo.Load(c, cart.ID)
		require.NoError(t, err)
		assert.Equal(t, saved, loaded)

		assert.Equal(t, cart.ID, loaded.ID)
		assert.Equal(t, cart.UserID, loaded.UserID)
		assert.Equal(t, "USD", loaded.Currency)
		assert.True(t, cart.Total.Equal(loaded.Total))
		assert.False(t, loaded.CreatedAt.IsZero())

		require.Len(t, loaded.Items, 2)
		assert.Equal(t, "SKU-777", loaded.Items[0].ProductID)
		assert.Equal(t, "129.99", loaded.Items[0].TotalPrice.StringFixed(2))
		assert.Equal(t, "USD", *loaded.Items[0].Currency)
		assert.Equal(t, "6.00", loaded.Items[1].TotalPrice.StringFixed(2))
		assert.Equal(t, "EUR", *loaded.Items[1].Currency)
		assert.Less(t, loaded.Items[0].ID, loaded.Items[1].ID)

		require.Len(t, loaded.Discounts, 3)
		assert.Equal(t, "WELCOME10", *loaded.Discounts[0].Code)
		assert.Nil(t, loaded.Discounts[1].Code)
		assert.Nil(t, loaded.Discounts[2].Code)
	})

	t.Run("given absent id when loaded should return not found", func(t *testing.T) {
		_, err := repo.Load(c, uuid.New())
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("given duplicate cart id when inserted should return conflict", func(t *testing.T) {
		cart := newCart("USD")
		_, err := repo.Save(c, SaveShoppingCart{Cart: cart, Insert: true})
		require.NoError(t, err)

		_, err = repo.Save(c, SaveShoppingCart{Cart: cart, Insert: true})
		require.ErrorIs(t, err, inErrors.ErrConflict)

		var conflict *inErrors.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "shopping_cart_pkey", conflict.Constraint)
	})

	t.Run("given duplicate product when inserted should return conflict and write nothing", func(t *testing.T) {
		cart := newCart("USD")
		_, err := repo.Save(c, SaveShoppingCart{
			Cart:         cart,
			Insert:       true,
			Items:        []model.NewItem{newItem("SKU-1", 1, "1.00"), newItem("SKU-1", 2, "1.00")},
			ReplaceItems: true,
		})
		require.ErrorIs(t, err, inErrors.ErrConflict)

		var conflict *inErrors.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "ux_shopping_cart_item_cart_product", conflict.Constraint)

		_, err = repo.Load(c, cart.ID)
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("given duplicate discount code when inserted should return conflict", func(t *testing.T) {
		cart := newCart("USD")
		_, err := repo.Save(c, SaveShoppingCart{
			Cart:   cart,
			Insert: true,
			Discounts: []model.NewDiscount{
				{Code: ptr("SPRING"), Amount: decimal.NewFromInt(1)},
				{Code: ptr("SPRING"), Amount: decimal.NewFromInt(2)},
			},
			ReplaceDiscounts: true,
		})
		require.ErrorIs(t, err, inErrors.ErrConflict)

		var conflict *inErrors.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "ux_shopping_cart_discount_code", conflict.Constraint)
	})

	t.Run("given out of range quantity when saved should return validation error", func(t *testing.T) {
		cart := newCart("USD")
		_, err := repo.Save(c, SaveShoppingCart{
			Cart:         cart,
			Insert:       true,
			Items:        []model.NewItem{newItem("SKU-1", 0, "1.00")},
			ReplaceItems: true,
		})
		require.ErrorIs(t, err, inErrors.ErrValidation)

		var validation *inErrors.ValidationError
		require.ErrorAs(t, err, &validation)
		require.Len(t, validation.Violations, 1)
		assert.Equal(t, "quantity", validation.Violations[0].Field)
	})

	t.Run("given replacement items when updated should replace only items", func(t *testing.T) {
		cart := newCart("USD")
		created, err := repo.Save(c, SaveShoppingCart{
			Cart:             cart,
			Insert:           true,
			Items:            []model.NewItem{newItem("SKU-1", 1, "1.00"), newItem("SKU-2", 1, "2.00")},
			Discounts:        []model.NewDiscount{{Code: ptr("KEEP"), Amount: decimal.NewFromInt(1)}},
			ReplaceItems:     true,
			ReplaceDiscounts: true,
		})
		require.NoError(t, err)

		cart.Currency = "EUR"
		updated, err := repo.Save(c, SaveShoppingCart{
			Cart: cart,
			Items: []model.NewItem{
				newItem("SKU-3", 2, "3.00"),
				newItem("SKU-4", 1, "4.00"),
				newItem("SKU-1", 5, "1.00"),
			},
			ReplaceItems: true,
		})
		require.NoError(t, err)

		require.Len(t, updated.Items, 3)
		previous := map[int64]bool{}
		for _, item := range created.Items {
			previous[item.ID] = true
		}
		for _, item := range updated.Items {
			assert.False(t, previous[item.ID], "item_id=%d survived the replacement", item.ID)
			assert.Equal(t, "EUR", *item.Currency)
		}
		assert.Equal(t, created.Discounts, updated.Discounts)
		assert.Equal(t, "EUR", updated.Currency)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		cleared, err := repo.Save(c, SaveShoppingCart{Cart: cart, ReplaceDiscounts: true})
		require.NoError(t, err)
		assert.Empty(t, cleared.Discounts)
		assert.Len(t, cleared.Items, 3)
	})

	t.Run("given overview when read should not multiply item and discount sums", func(t *testing.T) {
		cart := newCart("USD")
		_, err := repo.Save(c, SaveShoppingCart{
			Cart:   cart,
			Insert: true,
			Items:  []model.NewItem{newItem("SKU-1", 2, "1.00"), newItem("SKU-2", 1, "3.00")},
			Discounts: []model.NewDiscount{
				{Amount: decimal.NewFromInt(1)},
				{Amount: decimal.NewFromInt(2)},
			},
			ReplaceItems:     true,
			ReplaceDiscounts: true,
		})
		require.NoError(t, err)

		overviews, err := repo.Overviews(c)
		require.NoError(t, err)

		var overview *model.Overview
		for i := range overviews {
			if overviews[i].CartID == cart.ID {
				overview = &overviews[i]
			}
		}
		require.NotNil(t, overview)
		assert.Equal(t, int64(2), overview.ItemCount)
		assert.Equal(t, "5.00", overview.ItemsTotal.StringFixed(2))
		assert.Equal(t, "3.00", overview.DiscountsTotal.StringFixed(2))
	})

	t.Run("given existing cart when deleted should cascade children", func(t *testing.T) {
		cart := newCart("USD")
		_, err := repo.Save(c, SaveShoppingCart{
			Cart:             cart,
			Insert:           true,
			Items:            []model.NewItem{newItem("SKU-1", 1, "1.00")},
			Discounts:        []model.NewDiscount{{Amount: decimal.NewFromInt(1)}},
			ReplaceItems:     true,
			ReplaceDiscounts: true,
		})
		require.NoError(t, err)

		deleted, err := repo.Delete(c, cart.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		var children int
		err = pool.QueryRow(
			c,
			`select (select count(*) from shopping_cart.shopping_cart_item where cart_id = $1)
			      + (select count(*) from shopping_cart.shopping_cart_discount where cart_id = $1)`,
			cart.ID,
		).Scan(&children)
		require.NoError(t, err)
		assert.Zero(t, children)

		deleted, err = repo.Delete(c, cart.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("given carts when loaded all should return newest first then delete all", func(t *testing.T) {
		first, err := repo.Save(c, SaveShoppingCart{Cart: newCart("USD"), Insert: true})
		require.NoError(t, err)
		second, err := repo.Save(c, SaveShoppingCart{Cart: newCart("USD"), Insert: true})
		require.NoError(t, err)

		aggregates, err := repo.LoadAll(c)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(aggregates), 2)
		assert.Equal(t, second.ID, aggregates[0].ID)
		assert.Equal(t, first.ID, aggregates[1].ID)
		for i := 1; i < len(aggregates); i++ {
			assert.False(t, aggregates[i].CreatedAt.After(aggregates[i-1].CreatedAt))
		}

		deleted, err := repo.DeleteAll(c)
		require.NoError(t, err)
		assert.Equal(t, int64(len(aggregates)), deleted)

		aggregates, err = repo.LoadAll(c)
		require.NoError(t, err)
		assert.Empty(t, aggregates)

		deleted, err = repo.DeleteAll(c)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}
