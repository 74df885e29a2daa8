package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/apiforge/apiforge-server/internal/api"
	"github.com/apiforge/apiforge-server/internal/core/ports"
	"github.com/apiforge/apiforge-server/internal/core/service"
	"github.com/apiforge/apiforge-server/internal/infrastructure/config"
	mongostore "github.com/apiforge/apiforge-server/internal/infrastructure/db/mongo"
	pgstore "github.com/apiforge/apiforge-server/internal/infrastructure/db/postgres"
	redisstore "github.com/apiforge/apiforge-server/internal/infrastructure/db/redis"
	httpserver "github.com/apiforge/apiforge-server/internal/infrastructure/http"
	"github.com/apiforge/apiforge-server/internal/infrastructure/http/handlers"
	"github.com/apiforge/apiforge-server/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty || cfg.IsDevelopment(),
		Service: "apiforge",
	})
	if envErr != nil {
		log.Warn().Msg("no .env file found, using environment variables")
	}

	var hooks []shutdownHook
	store, err := openStore(ctx, cfg, &hooks)
	if err != nil {
		return err
	}
	log.Info().Str("store", store.kind).Msg("store connected")

	pingers := []handlers.Pinger{store.pinger}

	var cache ports.SessionCache
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			// The cache is optional; sessions fall back to the store.
			log.Warn().Err(err).Msg("redis unavailable, session cache disabled")
		} else {
			cache = redisstore.NewSessionCache(rdb, cfg.Redis.CacheTTL)
			pingers = append(pingers, redisstore.NewPinger(rdb))
			hooks = append(hooks, shutdownHook{"redis", func(context.Context) error { return rdb.Close() }})
		}
	}

	authService := service.NewAuthService(store.users, cache, cfg.JWTSecret, service.SessionTTL, logger.For("auth"))
	collectionService := service.NewCollectionService(store.collections, store.requests, logger.For("collections"))
	requestService := service.NewRequestService(service.NewOwnership(store.collections), store.requests, logger.For("requests"))
	proxyService := service.NewProxyService(
		httpserver.NewOutboundClient(cfg.Proxy.Timeout),
		service.ProxyOptions{Timeout: cfg.Proxy.Timeout, MaxResponseBytes: cfg.Proxy.MaxResponseBytes},
		logger.For("proxy"),
	)

	router := api.NewRouter(api.Deps{
		Config:      cfg,
		Log:         logger.For("http"),
		Auth:        authService,
		Collections: collectionService,
		Requests:    requestService,
		Proxy:       proxyService,
		Health:      handlers.NewHealthHandler(pingers...),
		SessionTTL:  authService.TokenTTL(),
	})

	srv := httpserver.NewServer(router, cfg.Port, cfg.ShutdownTimeout, log)
	for _, h := range hooks {
		srv.OnShutdown(h.name, h.fn)
	}

	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("apiforge starting")
	return srv.Run()
}

type shutdownHook struct {
	name string
	fn   httpserver.ShutdownFunc
}

type storage struct {
	kind        string
	users       ports.UserRepository
	collections ports.CollectionRepository
	requests    ports.RequestRepository
	pinger      handlers.Pinger
}

// openStore connects the backend selected by the DATABASE_URL scheme and
// prepares its schema.
func openStore(ctx context.Context, cfg *config.Config, hooks *[]shutdownHook) (*storage, error) {
	kind, err := cfg.StoreKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.StorePostgres:
		pool, err := pgstore.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		*hooks = append(*hooks, shutdownHook{"postgres", func(context.Context) error { pool.Close(); return nil }})
		if err := pgstore.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		return &storage{
			kind:        kind,
			users:       pgstore.NewUserRepository(pool),
			collections: pgstore.NewCollectionRepository(pool),
			requests:    pgstore.NewRequestRepository(pool),
			pinger:      pgstore.NewPinger(pool),
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Database.URL, Database: cfg.Database.MongoDB})
		if err != nil {
			return nil, err
		}
		*hooks = append(*hooks, shutdownHook{"mongo", client.Disconnect})
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		return &storage{
			kind:        kind,
			users:       mongostore.NewUserRepository(db),
			collections: mongostore.NewCollectionRepository(db),
			requests:    mongostore.NewRequestRepository(db),
			pinger:      mongostore.NewPinger(client),
		}, nil
	}
}
