package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alturino/shopping-cart/api"
	"github.com/Alturino/shopping-cart/internal/config"
	"github.com/Alturino/shopping-cart/internal/constants"
	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/health"
	inHttp "github.com/Alturino/shopping-cart/internal/http"
	"github.com/Alturino/shopping-cart/internal/infra"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/middleware"
	"github.com/Alturino/shopping-cart/internal/otel"
	"github.com/Alturino/shopping-cart/internal/repository"
	"github.com/Alturino/shopping-cart/internal/validate"
	"github.com/Alturino/shopping-cart/shoppingcart/internal/cache"
	"github.com/Alturino/shopping-cart/shoppingcart/internal/controller"
	scOtel "github.com/Alturino/shopping-cart/shoppingcart/internal/otel"
	"github.com/Alturino/shopping-cart/shoppingcart/internal/service"
)

const shutdownTimeout = 15 * time.Second

// NewRouter wires every HTTP route of the service. Unmatched requests still go through the
// logging middleware so they get a request id and a completion log.
func NewRouter(
	svc controller.ShoppingCartService,
	info health.Info,
	checks map[string]health.Check,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppShoppingCartService),
		middleware.Logging,
		middleware.Metrics,
		middleware.RecoverPanic,
	)
	router.NotFoundHandler = middleware.Logging(http.HandlerFunc(controller.NotFound))
	router.MethodNotAllowedHandler = middleware.Logging(http.HandlerFunc(controller.MethodNotAllowed))

	controller.AttachShoppingCartController(router, svc, validate.New())
	health.AttachHealthController(router, info, checks)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/docs/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderYAML)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(api.OpenAPI)
	}).Methods(http.MethodGet)

	return router
}

type dependencies struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	service *service.ShoppingCartService
}

func (d dependencies) close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	d.pool.Close()
}

func (d dependencies) checks() map[string]health.Check {
	checks := map[string]health.Check{"postgres": d.pool.Ping}
	if d.redis != nil {
		checks["redis"] = func(c context.Context) error { return d.redis.Ping(c).Err() }
	}
	return checks
}

// initDependencies opens the pool, applies migrations when enabled and builds the service
// with a redis cache or, when caching is disabled, a no-op one.
func initDependencies(c context.Context, cfg *config.Config) (dependencies, error) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "main initDependencies").Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	pool, err := infra.NewDatabaseClient(logger.WithContext(c), cfg.Database)
	if err != nil {
		return dependencies{}, fmt.Errorf("failed initializing database with error=%w", err)
	}
	deps := dependencies{pool: pool}
	logger.Info().Msg("initialized database")

	if cfg.Database.AutoMigrate {
		logger = logger.With().Str(log.KeyProcess, "migrating database").Logger()
		logger.Info().Msg("migrating database")
		if err := infra.MigrateUp(logger.WithContext(c), pool, cfg.Database.MigrationPath); err != nil {
			deps.close()
			return dependencies{}, fmt.Errorf("failed migrating database with error=%w", err)
		}
		logger.Info().Msg("migrated database")
	}

	var shoppingCartCache cache.Cache = cache.NoopCache{}
	if cfg.Cache.Enabled {
		logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
		logger.Info().Msg("initializing cache")
		client, err := infra.NewCacheClient(logger.WithContext(c), cfg.Cache)
		if err != nil {
			deps.close()
			return dependencies{}, fmt.Errorf("failed initializing cache with error=%w", err)
		}
		deps.redis = client
		shoppingCartCache = cache.NewRedisCache(client, cfg.Cache.TTL)
		logger.Info().Msg("initialized cache")
	}

	deps.service = service.NewShoppingCartService(
		pool,
		repository.NewShoppingCartRepository(pool),
		shoppingCartCache,
	)
	return deps, nil
}

func RunShoppingCartService(c context.Context, cfg *config.Config) error {
	c, span := scOtel.Tracer.Start(c, "RunShoppingCartService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppShoppingCartService).
		Str(log.KeyTag, "main RunShoppingCartService").
		Logger()

	if cfg.Otel.Enabled {
		logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
		logger.Info().Msg("initializing otel sdk")
		otelShutdowns, err := otel.InitOtelSdk(
			logger.WithContext(c),
			cfg.Otel.Endpoint(),
			constants.AppShoppingCartService,
			cfg.Application.Version,
		)
		defer func() {
			c, cancel := context.WithTimeout(context.WithoutCancel(c), shutdownTimeout)
			defer cancel()
			if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
				err = fmt.Errorf("failed shutting down otel with error=%w", err)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			logger.Info().Msg("shutdown otel")
		}()
		if err != nil {
			err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		logger.Info().Msg("initialized otel sdk")
	}

	deps, err := initDependencies(logger.WithContext(c), cfg)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer func() {
		logger.Info().Msg("closing database and cache")
		deps.close()
		logger.Info().Msg("closed database and cache")
	}()

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	router := NewRouter(
		deps.service,
		health.Info{
			Service: cfg.Application.Name,
			Version: cfg.Application.Version,
			Commit:  cfg.Application.Commit,
		},
		deps.checks(),
	)
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return logger.WithContext(context.WithoutCancel(c)) },
		Handler:      otelhttp.NewHandler(router, constants.AppShoppingCartService),
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("error=%w occured while server is running", err)
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		return nil
	case <-c.Done():
		logger.Info().Msg("received interuption signal shutting down")
	}

	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("shutdown http server")

	return nil
}

// ClearShoppingCarts deletes every shopping cart and returns how many were removed.
func ClearShoppingCarts(c context.Context, cfg *config.Config) (int64, error) {
	deps, err := initDependencies(c, cfg)
	if err != nil {
		return 0, err
	}
	defer deps.close()

	return deps.service.ClearAll(c)
}

func ShoppingCartOverviews(c context.Context, cfg *config.Config) ([]byte, error) {
	deps, err := initDependencies(c, cfg)
	if err != nil {
		return nil, err
	}
	defer deps.close()

	overviews, err := deps.service.Overviews(c)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(overviews, "", "  ")
}
