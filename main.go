package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-ordering-api/cart"
	"food-ordering-api/config"
	"food-ordering-api/events"
	"food-ordering-api/handlers"
	"food-ordering-api/kvstore"
	"food-ordering-api/middleware"
	"food-ordering-api/repository"
	"food-ordering-api/routes"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)
	defer logger.Sync() //nolint:errcheck

	gin.SetMode(cfg.GinMode)
	// Prices go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	db, err := config.OpenDB(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}

	restaurants := repository.NewRestaurantRepository(db)
	if cfg.SeedCatalog {
		catalog, err := repository.DefaultCatalog()
		if err != nil {
			logger.Fatal("parse seed catalog", zap.Error(err))
		}
		n, err := restaurants.Seed(context.Background(), catalog)
		if err != nil {
			logger.Fatal("seed catalog", zap.Error(err))
		}
		logger.Info("catalog ready", zap.Int("seeded", n))
	}

	store := newCartStore(cfg, logger)
	publisher := newPublisher(cfg, logger)

	orders := service.NewOrderService(
		repository.NewOrderRepository(db, repository.WithDeliveryWindow(cfg.DeliveryWindow)),
		restaurants,
		publisher,
		logger,
		service.WithConfirmDelay(cfg.ConfirmDelay),
	)
	sessions := cart.NewSessions(store, logger, cart.Limits{
		IdleTimeout: cfg.CartIdleTimeout,
		MaxSessions: cfg.CartMaxSessions,
	})
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Run(sweepCtx, time.Minute)
	carts := service.NewCartService(sessions, restaurants, orders, logger)

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestID(), middleware.Logger(logger))
	routes.SetupRoutes(r, routes.Handlers{
		Restaurants: handlers.NewRestaurantHandler(restaurants, logger),
		Orders:      handlers.NewOrderHandler(orders, service.NewOrderQRCode(cfg.PublicBaseURL), logger),
		Cart:        handlers.NewCartHandler(carts, logger),
		Sessions:    middleware.NewSessionIssuer(cfg.SessionSecret, cfg.CartTTL),
	})

	// CORS for the storefront; the cart token travels in a custom header
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Origin", "Content-Type", "Authorization", middleware.SessionHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.SessionHeader, middleware.RequestIDHeader},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Food Ordering API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	stopSweep()
	orders.Shutdown()
	if err := publisher.Close(); err != nil {
		logger.Error("close publisher", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if cfg.GinMode == gin.DebugMode {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

// newCartStore uses Redis when configured and process memory otherwise
func newCartStore(cfg *config.Config, logger *zap.Logger) kvstore.Store {
	if cfg.RedisAddr == "" {
		logger.Info("carts kept in memory")
		return kvstore.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, carts kept in memory", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return kvstore.NewMemoryStore()
	}
	logger.Info("carts stored in redis", zap.String("addr", cfg.RedisAddr))
	return kvstore.NewRedisStore(client, cfg.CartTTL)
}

// newPublisher picks Kafka, then RabbitMQ, then falls back to logging
func newPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		logger.Info("publishing order events to kafka", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
		return events.NewKafkaPublisher(events.NewKafkaWriter(brokers, cfg.KafkaTopic), logger)
	}
	if cfg.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.AMQPURL, cfg.EventsExchange)
		if err == nil {
			logger.Info("publishing order events to rabbitmq", zap.String("exchange", cfg.EventsExchange))
			return p
		}
		logger.Warn("rabbitmq unreachable, logging order events", zap.Error(err))
	}
	return events.NewLogPublisher(logger)
}
