package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/model"
	"github.com/Alturino/shopping-cart/internal/repository"
	"github.com/Alturino/shopping-cart/shoppingcart/internal/cache"
	"github.com/Alturino/shopping-cart/shoppingcart/internal/otel"
	"github.com/Alturino/shopping-cart/shoppingcart/pkg/request"
	"github.com/Alturino/shopping-cart/shoppingcart/pkg/response"
)

const resourceShoppingCart = "Shopping cart"

type ShoppingCartService struct {
	pool  *pgxpool.Pool
	repo  repository.ShoppingCartRepository
	cache cache.Cache
	group singleflight.Group
}

func NewShoppingCartService(
	pool *pgxpool.Pool,
	repo repository.ShoppingCartRepository,
	cache cache.Cache,
) *ShoppingCartService {
	return &ShoppingCartService{pool: pool, repo: repo, cache: cache}
}

// inTx runs fn inside one read committed transaction. The transaction is committed only when
// fn returns nil, otherwise every write done by fn is rolled back.
func (s *ShoppingCartService) inTx(
	c context.Context,
	logger zerolog.Logger,
	span trace.Span,
	fn func(repo repository.ShoppingCartRepository) error,
) error {
	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Debug().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	logger.Debug().Msg("initialized transaction")
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		if err := tx.Rollback(c); err != nil {
			if errors.Is(err, pgx.ErrTxClosed) {
				return
			}
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inErrors.HandleError(err, span)
			l.Error().Err(err).Msg(err.Error())
			return
		}
		l.Debug().Msg("rolled back transaction")
	}(logger)

	if err := fn(s.repo.WithTx(tx)); err != nil {
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Debug().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	logger.Debug().Msg("committed transaction")

	return nil
}

// invalidate drops cached entries after a commit. A failure only leaves a stale entry until
// its ttl runs out so it is logged and swallowed.
func (s *ShoppingCartService) invalidate(c context.Context, logger zerolog.Logger, cartIDs ...uuid.UUID) {
	logger = logger.With().Str(log.KeyProcess, "invalidating cache").Logger()
	if err := s.cache.Delete(c, cartIDs...); err != nil {
		logger.Warn().Err(err).Msg(err.Error())
		return
	}
	logger.Debug().Msg("invalidated cache")
}

func notFound(cartID uuid.UUID, err error) error {
	if errors.Is(err, inErrors.ErrNotFound) {
		return &inErrors.NotFoundError{Resource: resourceShoppingCart, ID: cartID.String()}
	}
	return err
}

func (s *ShoppingCartService) Create(
	c context.Context,
	param request.CreateShoppingCart,
) (response.ShoppingCart, error) {
	c, span := otel.Tracer.Start(
		c,
		"ShoppingCartService Create",
		trace.WithAttributes(attribute.Int(log.KeyItemCount, len(param.Items))),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShoppingCartService Create").
		Int(log.KeyItemCount, len(param.Items)).
		Int(log.KeyDiscountCount, len(param.Discounts)).
		Logger()

	cart, err := param.Cart()
	if err != nil {
		err = &inErrors.BadRequestError{Err: err}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShoppingCart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	span.SetAttributes(attribute.String(log.KeyCartID, cart.ID.String()))

	items, err := request.NewItems(param.Items, cart.Currency)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShoppingCart{}, err
	}

	var aggregate model.Aggregate
	err = s.inTx(c, logger, span, func(repo repository.ShoppingCartRepository) error {
		logger := logger.With().Str(log.KeyProcess, "inserting shopping cart").Logger()
		logger.Info().Msg("inserting shopping cart")
		saved, err := repo.Save(c, repository.SaveShoppingCart{
			Cart:             cart,
			Items:            items,
			Discounts:        request.NewDiscounts(param.Discounts),
			Insert:           true,
			ReplaceItems:     true,
			ReplaceDiscounts: true,
		})
		if err != nil {
			return fmt.Errorf("failed inserting shopping cart with error=%w", err)
		}
		aggregate = saved
		logger.Info().Msg("inserted shopping cart")
		return nil
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShoppingCart{}, err
	}
	otel.RecordMutation(c, otel.OperationCreate, 1)
	s.invalidate(c, logger, cart.ID)

	return response.Assemble(aggregate), nil
}

func (s *ShoppingCartService) FindAll(c context.Context) ([]response.ShoppingCart, error) {
	c, span := otel.Tracer.Start(c, "ShoppingCartService FindAll")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ShoppingCartService FindAll").Logger()

	logger = logger.With().Str(log.KeyProcess, "finding shopping carts").Logger()
	logger.Info().Msg("finding shopping carts")
	aggregates, err := s.repo.LoadAll(c)
	if err != nil {
		err = fmt.Errorf("failed finding shopping carts with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyCartCount, len(aggregates)).Msg("found shopping carts")

	return response.AssembleAll(aggregates), nil
}

// FindById reads through the cache. Concurrent misses for the same id share one database
// load, and its result is only cached when no mutation invalidated the cart meanwhile.
func (s *ShoppingCartService) FindById(c context.Context, cartID uuid.UUID) (response.ShoppingCart, error) {
	c, span := otel.Tracer.Start(
		c,
		"ShoppingCartService FindById",
		trace.WithAttributes(attribute.String(log.KeyCartID, cartID.String())),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShoppingCartService FindById").
		Str(log.KeyCartID, cartID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding shopping cart in cache").Logger()
	aggregate, err := s.cache.Get(c, cartID)
	if err == nil {
		logger.Debug().Msg("found shopping cart in cache")
		return response.Assemble(aggregate), nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(log.KeyProcess, "finding shopping cart in db").Logger()
	logger.Info().Msg("finding shopping cart in db")
	result, err, shared := s.group.Do(cartID.String(), func() (interface{}, error) {
		// every waiter on cartID shares this load, it must not end with the first caller
		c := context.WithoutCancel(c)

		token, tokenErr := s.cache.Token(c, cartID)
		if tokenErr != nil {
			logger.Warn().Err(tokenErr).Msg(tokenErr.Error())
		}
		aggregate, err := s.repo.Load(c, cartID)
		if err != nil {
			return model.Aggregate{}, err
		}
		if tokenErr != nil {
			return aggregate, nil
		}
		if _, err := s.cache.Fill(c, aggregate, token); err != nil {
			logger.Warn().Err(err).Msg(err.Error())
		}
		return aggregate, nil
	})
	if err != nil {
		err = fmt.Errorf("failed finding shopping cart with error=%w", notFound(cartID, err))
		if errors.Is(err, inErrors.ErrNotFound) {
			logger.Info().Err(err).Msg(err.Error())
			return response.ShoppingCart{}, err
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShoppingCart{}, err
	}
	logger.Info().Bool("shared", shared).Msg("found shopping cart in db")

	return response.Assemble(result.(model.Aggregate)), nil
}

// Update applies a partial update. Present items or discounts replace the stored collection
// wholesale, absent ones are left untouched.
func (s *ShoppingCartService) Update(
	c context.Context,
	cartID uuid.UUID,
	param request.UpdateShoppingCart,
) (response.ShoppingCart, error) {
	c, span := otel.Tracer.Start(
		c,
		"ShoppingCartService Update",
		trace.WithAttributes(attribute.String(log.KeyCartID, cartID.String())),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShoppingCartService Update").
		Str(log.KeyCartID, cartID.String()).
		Bool("replaceItems", param.Items != nil).
		Bool("replaceDiscounts", param.Discounts != nil).
		Logger()

	var aggregate model.Aggregate
	err := s.inTx(c, logger, span, func(repo repository.ShoppingCartRepository) error {
		logger := logger.With().Str(log.KeyProcess, "finding shopping cart").Logger()
		logger.Info().Msg("finding shopping cart")
		existing, err := repo.Load(c, cartID)
		if err != nil {
			return fmt.Errorf("failed finding shopping cart with error=%w", notFound(cartID, err))
		}
		logger.Info().Msg("found shopping cart")

		cart, err := param.Apply(existing.Cart)
		if err != nil {
			return &inErrors.BadRequestError{Err: err}
		}
		items, err := request.NewItems(param.Items, cart.Currency)
		if err != nil {
			return err
		}

		logger = logger.With().Str(log.KeyProcess, "updating shopping cart").Logger()
		logger.Info().Msg("updating shopping cart")
		saved, err := repo.Save(c, repository.SaveShoppingCart{
			Cart:             cart,
			Items:            items,
			Discounts:        param.NewDiscounts(),
			ReplaceItems:     param.Items != nil,
			ReplaceDiscounts: param.Discounts != nil,
		})
		if err != nil {
			return fmt.Errorf("failed updating shopping cart with error=%w", err)
		}
		aggregate = saved
		logger.Info().Msg("updated shopping cart")
		return nil
	})
	if err != nil {
		if errors.Is(err, inErrors.ErrNotFound) {
			logger.Info().Err(err).Msg(err.Error())
			return response.ShoppingCart{}, err
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShoppingCart{}, err
	}
	otel.RecordMutation(c, otel.OperationUpdate, 1)
	s.invalidate(c, logger, cartID)

	return response.Assemble(aggregate), nil
}

func (s *ShoppingCartService) Remove(c context.Context, cartID uuid.UUID) error {
	c, span := otel.Tracer.Start(
		c,
		"ShoppingCartService Remove",
		trace.WithAttributes(attribute.String(log.KeyCartID, cartID.String())),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShoppingCartService Remove").
		Str(log.KeyCartID, cartID.String()).
		Logger()

	err := s.inTx(c, logger, span, func(repo repository.ShoppingCartRepository) error {
		logger := logger.With().Str(log.KeyProcess, "deleting shopping cart").Logger()
		logger.Info().Msg("deleting shopping cart")
		deleted, err := repo.Delete(c, cartID)
		if err != nil {
			return fmt.Errorf("failed deleting shopping cart with error=%w", err)
		}
		if !deleted {
			return &inErrors.NotFoundError{Resource: resourceShoppingCart, ID: cartID.String()}
		}
		logger.Info().Msg("deleted shopping cart")
		return nil
	})
	if err != nil {
		if errors.Is(err, inErrors.ErrNotFound) {
			logger.Info().Err(err).Msg(err.Error())
			return err
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	otel.RecordMutation(c, otel.OperationRemove, 1)
	s.invalidate(c, logger, cartID)

	return nil
}

// ClearAll deletes every cart and returns how many were removed.
func (s *ShoppingCartService) ClearAll(c context.Context) (int64, error) {
	c, span := otel.Tracer.Start(c, "ShoppingCartService ClearAll")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ShoppingCartService ClearAll").Logger()

	var deleted int64
	err := s.inTx(c, logger, span, func(repo repository.ShoppingCartRepository) error {
		logger := logger.With().Str(log.KeyProcess, "deleting shopping carts").Logger()
		logger.Info().Msg("deleting shopping carts")
		n, err := repo.DeleteAll(c)
		if err != nil {
			return fmt.Errorf("failed deleting shopping carts with error=%w", err)
		}
		deleted = n
		logger.Info().Int64("deleted", n).Msg("deleted shopping carts")
		return nil
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	otel.RecordMutation(c, otel.OperationClearAll, deleted)

	logger = logger.With().Str(log.KeyProcess, "flushing cache").Logger()
	if err := s.cache.Flush(c); err != nil {
		logger.Warn().Err(err).Msg(err.Error())
	}

	return deleted, nil
}

func (s *ShoppingCartService) Overviews(c context.Context) ([]response.Overview, error) {
	c, span := otel.Tracer.Start(c, "ShoppingCartService Overviews")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ShoppingCartService Overviews").Logger()

	overviews, err := s.repo.Overviews(c)
	if err != nil {
		err = fmt.Errorf("failed finding shopping cart overviews with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyCartCount, len(overviews)).Msg("found shopping cart overviews")

	return response.AssembleOverviews(overviews), nil
}
