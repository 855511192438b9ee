package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/webshop/cart-service/internal/cache"
	"github.com/webshop/cart-service/internal/consumer"
	"github.com/webshop/cart-service/internal/httpapi"
	"github.com/webshop/cart-service/internal/repository"
	"github.com/webshop/cart-service/internal/service"
	"github.com/webshop/cart-service/pkg/config"
	"github.com/webshop/cart-service/pkg/logger"
	"github.com/webshop/cart-service/pkg/shutdown"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.New("cart-service", cfg.AppEnv, cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Client().Disconnect(context.Background())

	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}
	repo := repository.NewMongoRepository(mongoDB)
	log.Info("connected to MongoDB", "uri", cfg.MongoURI)

	var cartCache cache.Cache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Redis connection failed", "error", err)
			os.Exit(1)
		}
		cartCache = cache.NewBreakerCache(cache.NewRedisCache(redisClient))
		log.Info("connected to Redis", "addr", cfg.RedisAddr)
	} else {
		cartCache = cache.NewMemoryCache()
		log.Info("no Redis configured, using in-process cache")
	}

	engine := service.NewCartService(repo, cartCache, log)
	projector := service.NewSummaryProjector(repo, cartCache, log)
	handler := httpapi.NewCartHandler(engine, projector, requestTimeout)

	if len(cfg.KafkaBrokers) > 0 {
		checkoutConsumer := consumer.NewCheckoutConsumer(engine, log, cfg.KafkaBrokers...)
		defer checkoutConsumer.Close()
		go checkoutConsumer.Run(ctx)
		log.Info("checkout consumer started", "brokers", cfg.KafkaBrokers)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httpapi.RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	handler.Routes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: otelhttp.NewHandler(r, "cart-service"),
	}

	go func() {
		log.Info("cart service listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down cart service")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	log.Info("cart service stopped")
}
