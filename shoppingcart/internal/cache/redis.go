package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/model"
	"github.com/Alturino/shopping-cart/shoppingcart/internal/otel"
)

const (
	scanCount = 100
	// versionTTL bounds how long a load may run and still be rejected by Fill.
	versionTTL = time.Hour
)

// fillScript writes KEYS[1] only while the epoch in KEYS[2] and the version in KEYS[3] still
// match the token. A non positive ttl stores the entry without expiry.
var fillScript = redis.NewScript(`
local epoch = redis.call('GET', KEYS[2]) or '0'
local version = redis.call('GET', KEYS[3]) or '0'
if epoch ~= ARGV[1] or version ~= ARGV[2] then
	return 0
end
if tonumber(ARGV[4]) > 0 then
	redis.call('SET', KEYS[1], ARGV[3], 'PX', ARGV[4])
else
	redis.call('SET', KEYS[1], ARGV[3])
end
return 1
`)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) RedisCache {
	return RedisCache{client: client, ttl: ttl}
}

func (r RedisCache) Get(c context.Context, cartID uuid.UUID) (model.Aggregate, error) {
	key := cacheKey(cartID)
	c, span := otel.Tracer.Start(
		c,
		"RedisCache Get",
		trace.WithAttributes(attribute.String(log.KeyCacheKey, key)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisCache Get").
		Str(log.KeyCacheKey, key).
		Logger()

	data, err := r.client.Get(c, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Debug().Msg("cache miss")
		return model.Aggregate{}, ErrCacheMiss
	}
	if err != nil {
		err = fmt.Errorf("failed getting shopping cart from cache with error=%w", err)
		inErrors.HandleError(err, span)
		return model.Aggregate{}, err
	}

	var aggregate model.Aggregate
	if err := json.Unmarshal(data, &aggregate); err != nil {
		err = fmt.Errorf("failed unmarshalling cached shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		return model.Aggregate{}, err
	}
	logger.Debug().Msg("cache hit")

	return aggregate, nil
}

// Token reads the epoch and the version of cartID. Absent keys read as zero.
func (r RedisCache) Token(c context.Context, cartID uuid.UUID) (Token, error) {
	c, span := otel.Tracer.Start(
		c,
		"RedisCache Token",
		trace.WithAttributes(attribute.String(log.KeyCacheKey, versionKey(cartID))),
	)
	defer span.End()

	values, err := r.client.MGet(c, KeyShoppingCartEpoch, versionKey(cartID)).Result()
	if err != nil {
		err = fmt.Errorf("failed getting shopping cart cache token with error=%w", err)
		inErrors.HandleError(err, span)
		return Token{}, err
	}
	epoch, err := parseCounter(values[0])
	if err != nil {
		inErrors.HandleError(err, span)
		return Token{}, err
	}
	version, err := parseCounter(values[1])
	if err != nil {
		inErrors.HandleError(err, span)
		return Token{}, err
	}

	return Token{Epoch: epoch, Version: version}, nil
}

func parseCounter(value interface{}) (int64, error) {
	if value == nil {
		return 0, nil
	}
	raw, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected cache counter type=%T", value)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed parsing cache counter=%s with error=%w", raw, err)
	}
	return n, nil
}

func (r RedisCache) Fill(c context.Context, aggregate model.Aggregate, token Token) (bool, error) {
	key := cacheKey(aggregate.ID)
	c, span := otel.Tracer.Start(
		c,
		"RedisCache Fill",
		trace.WithAttributes(attribute.String(log.KeyCacheKey, key)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisCache Fill").
		Str(log.KeyCacheKey, key).
		Logger()

	data, err := json.Marshal(aggregate)
	if err != nil {
		err = fmt.Errorf("failed marshalling shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		return false, err
	}
	written, err := fillScript.Run(
		c,
		r.client,
		[]string{key, KeyShoppingCartEpoch, versionKey(aggregate.ID)},
		strconv.FormatInt(token.Epoch, 10),
		strconv.FormatInt(token.Version, 10),
		data,
		r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		err = fmt.Errorf("failed setting shopping cart in cache with error=%w", err)
		inErrors.HandleError(err, span)
		return false, err
	}
	if written == 0 {
		logger.Debug().Msg("skipped caching invalidated shopping cart")
		return false, nil
	}
	logger.Debug().Msg("cached shopping cart")

	return true, nil
}

// Delete bumps the version of every cart before dropping its entry so a load that started
// earlier cannot fill it again.
func (r RedisCache) Delete(c context.Context, cartIDs ...uuid.UUID) error {
	if len(cartIDs) == 0 {
		return nil
	}
	c, span := otel.Tracer.Start(c, "RedisCache Delete")
	defer span.End()

	keys := make([]string, 0, len(cartIDs))
	for _, id := range cartIDs {
		keys = append(keys, cacheKey(id))
	}
	_, err := r.client.TxPipelined(c, func(pipe redis.Pipeliner) error {
		for _, id := range cartIDs {
			pipe.Incr(c, versionKey(id))
			pipe.Expire(c, versionKey(id), versionTTL)
		}
		pipe.Del(c, keys...)
		return nil
	})
	if err != nil {
		err = fmt.Errorf("failed deleting shopping carts from cache with error=%w", err)
		inErrors.HandleError(err, span)
		return err
	}

	return nil
}

// Flush removes every shopping cart entry after bumping the epoch. Keys are found with SCAN so
// other users of the same database are left alone.
func (r RedisCache) Flush(c context.Context) error {
	c, span := otel.Tracer.Start(c, "RedisCache Flush")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "RedisCache Flush").Logger()

	if err := r.client.Incr(c, KeyShoppingCartEpoch).Err(); err != nil {
		err = fmt.Errorf("failed bumping shopping cart cache epoch with error=%w", err)
		inErrors.HandleError(err, span)
		return err
	}

	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := r.client.Scan(c, cursor, fmt.Sprintf(KeyShoppingCart, "*"), scanCount).Result()
		if err != nil {
			err = fmt.Errorf("failed scanning shopping cart keys with error=%w", err)
			inErrors.HandleError(err, span)
			return err
		}
		if len(keys) > 0 {
			n, err := r.client.Del(c, keys...).Result()
			if err != nil {
				err = fmt.Errorf("failed deleting shopping cart keys with error=%w", err)
				inErrors.HandleError(err, span)
				return err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	logger.Debug().Int64("deleted", deleted).Msg("flushed shopping cart cache")

	return nil
}
