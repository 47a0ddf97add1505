package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/model"
	"github.com/Alturino/shopping-cart/internal/otel"
)

// SaveShoppingCart describes one aggregate write. Items and Discounts only replace the stored
// collections when the matching Replace flag is set, an empty collection with the flag set
// removes every stored row of that kind.
type SaveShoppingCart struct {
	Items            []model.NewItem
	Discounts        []model.NewDiscount
	Cart             model.Cart
	Insert           bool
	ReplaceItems     bool
	ReplaceDiscounts bool
}

type ShoppingCartRepository struct {
	db DBTX
}

func NewShoppingCartRepository(db DBTX) ShoppingCartRepository {
	return ShoppingCartRepository{db: db}
}

// WithTx binds the repository to tx. Writes then run inside a savepoint of tx.
func (r ShoppingCartRepository) WithTx(tx pgx.Tx) ShoppingCartRepository {
	return ShoppingCartRepository{db: tx}
}

func (r ShoppingCartRepository) Load(c context.Context, cartID uuid.UUID) (model.Aggregate, error) {
	c, span := otel.Tracer.Start(
		c,
		"ShoppingCartRepository Load",
		trace.WithAttributes(attribute.String(log.KeyCartID, cartID.String())),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShoppingCartRepository Load").
		Str(log.KeyCartID, cartID.String()).
		Logger()

	logger.Debug().Msg("loading shopping cart")
	row, err := New(r.db).FindShoppingCartById(c, cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("shopping cart cart_id=%s %w", cartID.String(), inErrors.ErrNotFound)
			logger.Debug().Err(err).Msg(err.Error())
			return model.Aggregate{}, err
		}
		err = fmt.Errorf("failed loading shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Aggregate{}, err
	}

	aggregate, err := row.Aggregate()
	if err != nil {
		err = fmt.Errorf("failed mapping shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Aggregate{}, err
	}
	logger.Debug().
		Int(log.KeyItemCount, len(aggregate.Items)).
		Int(log.KeyDiscountCount, len(aggregate.Discounts)).
		Msg("loaded shopping cart")

	return aggregate, nil
}

func (r ShoppingCartRepository) LoadAll(c context.Context) ([]model.Aggregate, error) {
	c, span := otel.Tracer.Start(c, "ShoppingCartRepository LoadAll")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ShoppingCartRepository LoadAll").Logger()

	logger.Debug().Msg("loading shopping carts")
	rows, err := New(r.db).FindShoppingCarts(c)
	if err != nil {
		err = fmt.Errorf("failed loading shopping carts with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	aggregates := make([]model.Aggregate, 0, len(rows))
	for _, row := range rows {
		aggregate, err := row.Aggregate()
		if err != nil {
			err = fmt.Errorf("failed mapping shopping cart with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		aggregates = append(aggregates, aggregate)
	}
	logger.Debug().Int(log.KeyCartCount, len(aggregates)).Msg("loaded shopping carts")

	return aggregates, nil
}

// Save writes the cart row and, when requested, replaces its child collections. The whole
// write is atomic and the aggregate is reloaded afterwards so server assigned fields are set.
func (r ShoppingCartRepository) Save(c context.Context, arg SaveShoppingCart) (model.Aggregate, error) {
	c, span := otel.Tracer.Start(
		c,
		"ShoppingCartRepository Save",
		trace.WithAttributes(
			attribute.String(log.KeyCartID, arg.Cart.ID.String()),
			attribute.Bool("insert", arg.Insert),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShoppingCartRepository Save").
		Str(log.KeyCartID, arg.Cart.ID.String()).
		Bool("insert", arg.Insert).
		Logger()

	var aggregate model.Aggregate
	err := pgx.BeginFunc(c, r.db, func(tx pgx.Tx) error {
		queries := New(tx)

		logger := logger.With().Str(log.KeyProcess, "saving shopping cart").Logger()
		logger.Debug().Msg("saving shopping cart")
		params := insertShoppingCartParams(arg.Cart)
		var err error
		if arg.Insert {
			_, err = queries.InsertShoppingCart(c, params)
		} else {
			_, err = queries.UpsertShoppingCart(c, UpsertShoppingCartParams(params))
		}
		if err != nil {
			return fmt.Errorf("failed saving shopping cart with error=%w", translateError(err))
		}
		logger.Debug().Msg("saved shopping cart")

		if arg.ReplaceItems {
			logger := logger.With().
				Str(log.KeyProcess, "replacing shopping cart items").
				Int(log.KeyItemCount, len(arg.Items)).
				Logger()
			logger.Debug().Msg("replacing shopping cart items")
			if _, err := queries.DeleteShoppingCartItemsByCartId(c, arg.Cart.ID); err != nil {
				return fmt.Errorf("failed deleting shopping cart items with error=%w", err)
			}
			if len(arg.Items) > 0 {
				_, err := queries.InsertShoppingCartItems(c, insertShoppingCartItemsParams(arg.Cart, arg.Items))
				if err != nil {
					return fmt.Errorf("failed inserting shopping cart items with error=%w", translateError(err))
				}
			}
			logger.Debug().Msg("replaced shopping cart items")
		}

		if arg.ReplaceDiscounts {
			logger := logger.With().
				Str(log.KeyProcess, "replacing shopping cart discounts").
				Int(log.KeyDiscountCount, len(arg.Discounts)).
				Logger()
			logger.Debug().Msg("replacing shopping cart discounts")
			if _, err := queries.DeleteShoppingCartDiscountsByCartId(c, arg.Cart.ID); err != nil {
				return fmt.Errorf("failed deleting shopping cart discounts with error=%w", err)
			}
			if len(arg.Discounts) > 0 {
				_, err := queries.InsertShoppingCartDiscounts(
					c,
					insertShoppingCartDiscountsParams(arg.Cart, arg.Discounts),
				)
				if err != nil {
					return fmt.Errorf("failed inserting shopping cart discounts with error=%w", translateError(err))
				}
			}
			logger.Debug().Msg("replaced shopping cart discounts")
		}

		logger = logger.With().Str(log.KeyProcess, "reloading shopping cart").Logger()
		logger.Debug().Msg("reloading shopping cart")
		row, err := queries.FindShoppingCartById(c, arg.Cart.ID)
		if err != nil {
			return fmt.Errorf("failed reloading shopping cart with error=%w", err)
		}
		aggregate, err = row.Aggregate()
		if err != nil {
			return fmt.Errorf("failed mapping shopping cart with error=%w", err)
		}
		logger.Debug().Msg("reloaded shopping cart")
		return nil
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Aggregate{}, err
	}

	return aggregate, nil
}

// Delete removes the cart row, items and discounts go with it through the cascade.
func (r ShoppingCartRepository) Delete(c context.Context, cartID uuid.UUID) (bool, error) {
	c, span := otel.Tracer.Start(
		c,
		"ShoppingCartRepository Delete",
		trace.WithAttributes(attribute.String(log.KeyCartID, cartID.String())),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShoppingCartRepository Delete").
		Str(log.KeyCartID, cartID.String()).
		Logger()

	logger.Debug().Msg("deleting shopping cart")
	affected, err := New(r.db).DeleteShoppingCartById(c, cartID)
	if err != nil {
		err = fmt.Errorf("failed deleting shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	logger.Debug().Int64("affected", affected).Msg("deleted shopping cart")

	return affected > 0, nil
}

// DeleteAll removes every cart. Children are deleted explicitly before their carts so the
// result does not depend on the cascade being configured.
func (r ShoppingCartRepository) DeleteAll(c context.Context) (int64, error) {
	c, span := otel.Tracer.Start(c, "ShoppingCartRepository DeleteAll")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ShoppingCartRepository DeleteAll").Logger()

	var deleted int64
	err := pgx.BeginFunc(c, r.db, func(tx pgx.Tx) error {
		queries := New(tx)

		logger.Debug().Msg("finding shopping cart ids")
		ids, err := queries.FindShoppingCartIds(c)
		if err != nil {
			return fmt.Errorf("failed finding shopping cart ids with error=%w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		logger := logger.With().Int(log.KeyCartCount, len(ids)).Logger()
		logger.Debug().Msg("found shopping cart ids")

		if _, err := queries.DeleteShoppingCartDiscountsByCartIds(c, ids); err != nil {
			return fmt.Errorf("failed deleting shopping cart discounts with error=%w", err)
		}
		if _, err := queries.DeleteShoppingCartItemsByCartIds(c, ids); err != nil {
			return fmt.Errorf("failed deleting shopping cart items with error=%w", err)
		}
		deleted, err = queries.DeleteShoppingCartsByIds(c, ids)
		if err != nil {
			return fmt.Errorf("failed deleting shopping carts with error=%w", err)
		}
		logger.Debug().Int64("affected", deleted).Msg("deleted shopping carts")
		return nil
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}

	return deleted, nil
}

func (r ShoppingCartRepository) Overviews(c context.Context) ([]model.Overview, error) {
	c, span := otel.Tracer.Start(c, "ShoppingCartRepository Overviews")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ShoppingCartRepository Overviews").Logger()

	rows, err := New(r.db).FindShoppingCartOverviews(c)
	if err != nil {
		err = fmt.Errorf("failed finding shopping cart overviews with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	overviews := make([]model.Overview, 0, len(rows))
	for _, row := range rows {
		overview, err := row.Model()
		if err != nil {
			err = fmt.Errorf("failed mapping shopping cart overview with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		overviews = append(overviews, overview)
	}

	return overviews, nil
}
