package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/images"
	"github.com/Skotchmaster/storefront/internal/logging"
	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type store interface {
	service.ProductStore
	service.UserStore
	service.OrderStore
}

type publisher interface {
	service.EventPublisher
	Close() error
}

// openStore connects the configured backend and returns it with a readiness
// probe and a close func.
func openStore(ctx context.Context, cfg config.Config) (store, httpserver.ReadyFunc, func(), error) {
	if cfg.DBDriver == config.DriverMongo {
		m, err := repo.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, nil, err
		}
		ready := func(ctx context.Context) error { return m.Client.Ping(ctx, nil) }
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.Close(closeCtx); err != nil {
				slog.Error("mongo close error", "error", err)
			}
		}
		return m, ready, closeFn, nil
	}

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		db.Close(gdb)
		return nil, nil, nil, err
	}
	ready := func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return repo.NewGormRepo(gdb), ready, func() { db.Close(gdb) }, nil
}

func main() {
	cfg := config.Load(".env")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, ready, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		cancel()
		log.Fatalf("store open: %v", err)
	}

	var events publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			cancel()
			log.Fatalf("kafka producer: %v", err)
		}
		events = prod
	} else {
		logger.Warn("KAFKA_BROKERS is empty, domain events are dropped")
	}

	catalog := &service.CatalogService{Products: st, Events: events}

	if cfg.SearchBackend == config.SearchElasticsearch {
		client, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			cancel()
			log.Fatalf("elasticsearch: %v", err)
		}
		idx := &es.ProductIndex{Client: client, Index: cfg.ESIndex}
		reindexCtx, reindexCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		n, err := idx.Reindex(reindexCtx, st)
		reindexCancel()
		if err != nil {
			cancel()
			log.Fatalf("elasticsearch reindex: %v", err)
		}
		logger.Info("search index rebuilt", "index", cfg.ESIndex, "products", n)
		catalog.Searcher = idx
		catalog.Index = idx
	}

	if cfg.CloudinaryURL != "" {
		imgs, err := images.NewStore(cfg.CloudinaryURL)
		if err != nil {
			cancel()
			log.Fatalf("cloudinary: %v", err)
		}
		catalog.Images = imgs
	}

	var (
		limiter ratelimit.Limiter
		rdb     *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb, err = ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			cancel()
			log.Fatalf("redis: %v", err)
		}
		limiter = &ratelimit.RedisLimiter{
			Client: rdb,
			Prefix: "signin:",
			Max:    cfg.SigninMaxAttempts,
			Window: cfg.SigninWindow,
		}
	}
	cancel()

	issuer := tokens.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	gate := middleware.NewGate(issuer)
	gate.Accounts = st

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	} else {
		e.Use(echomw.CORS())
	}

	httpserver.Register(e, &httpserver.Deps{
		Catalog:       &httpserver.CatalogHTTP{Svc: catalog},
		Users:         &httpserver.UsersHTTP{Svc: &service.UserService{Users: st, Tokens: issuer, Events: events}},
		Orders:        &httpserver.OrdersHTTP{Svc: &service.OrderService{Orders: st, Products: st, Events: events}},
		Gate:          gate,
		SigninLimiter: limiter,
		Ready:         ready,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("%s listening on %s", cfg.ServiceName, srv.Addr), "db_driver", cfg.DBDriver, "search_backend", cfg.SearchBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	closeStore()

	if err := events.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
