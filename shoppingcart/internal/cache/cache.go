package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alturino/shopping-cart/internal/model"
)

const (
	KeyShoppingCart        = "shopping-cart:%s"
	KeyShoppingCartVersion = "shopping-cart-version:%s"
	KeyShoppingCartEpoch   = "shopping-cart-epoch"
)

var ErrCacheMiss = errors.New("cache miss")

// Token is the invalidation state of one cart observed before a database load. Delete bumps
// the version of a cart and Flush bumps the epoch shared by every cart.
type Token struct {
	Epoch   int64
	Version int64
}

// Cache holds loaded aggregates keyed by cart id. Entries are never assembled responses.
type Cache interface {
	Get(c context.Context, cartID uuid.UUID) (model.Aggregate, error)
	Token(c context.Context, cartID uuid.UUID) (Token, error)
	// Fill stores aggregate unless the cart was invalidated after token was taken, it reports
	// whether the entry was written.
	Fill(c context.Context, aggregate model.Aggregate, token Token) (bool, error)
	Delete(c context.Context, cartIDs ...uuid.UUID) error
	Flush(c context.Context) error
}

func cacheKey(cartID uuid.UUID) string {
	return fmt.Sprintf(KeyShoppingCart, cartID.String())
}

func versionKey(cartID uuid.UUID) string {
	return fmt.Sprintf(KeyShoppingCartVersion, cartID.String())
}

// NoopCache is used when caching is disabled, every Get misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, uuid.UUID) (model.Aggregate, error) {
	return model.Aggregate{}, ErrCacheMiss
}

func (NoopCache) Token(context.Context, uuid.UUID) (Token, error) { return Token{}, nil }

func (NoopCache) Fill(context.Context, model.Aggregate, Token) (bool, error) { return false, nil }

func (NoopCache) Delete(context.Context, ...uuid.UUID) error { return nil }

func (NoopCache) Flush(context.Context) error { return nil }
