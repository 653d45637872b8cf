package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"restaurant-pos/internal/api"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/consumer"
	"restaurant-pos/internal/repository"
	"restaurant-pos/internal/service"
	"restaurant-pos/migrations"
)

func connectDB(cfg config.DBConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < cfg.ConnectRetries; i++ {
		db, err = sql.Open("mysql", cfg.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("Connected to DB %s", cfg.Name)
				return db, nil
			}
			_ = db.Close()
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to DB %s (%s:%s)", i+1, cfg.Name, cfg.Host, cfg.Port)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", cfg.Name, cfg.Host, cfg.Port, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := connectDB(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Database unavailable")
	}
	defer db.Close()

	if err := migrations.AutoMigrate(3, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer rdb.Close()

	kafkaWriter := config.NewKafkaWriter(cfg.Kafka)
	defer kafkaWriter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := consumer.NewKitchenFeed(config.NewKafkaReader(cfg.Kafka))
	defer feed.Close()
	go feed.Run(ctx)

	store := repository.NewStore(db)
	productCache := service.NewProductCache(rdb, cfg.ProductCacheTTL)
	authService := service.NewAuthService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin user")
	}

	e := api.NewRouter(api.Services{
		ServingTables: service.NewServingTableService(store, kafkaWriter,
			service.NewIdempotencyGuard(rdb, cfg.IdempotencyTTL), service.PaymentPolicyFor(cfg.PaymentPolicy)),
		Orders:        service.NewOrderService(store, kafkaWriter),
		KitchenOrders: service.NewKitchenOrderService(store, kafkaWriter),
		Payments:      service.NewPaymentService(store),
		Waiters:       service.NewWaiterService(store),
		Products:      service.NewProductService(store, productCache),
		Ingredients:   service.NewIngredientService(store, productCache),
		Auth:          authService,
	}, api.Options{
		JWTSecret:   cfg.Auth.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
		HealthCheck: db.PingContext,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}
