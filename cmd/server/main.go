package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/cache"
	"github.com/shop1111/flight-booking/internal/config"
	"github.com/shop1111/flight-booking/internal/database"
	"github.com/shop1111/flight-booking/internal/handler"
	"github.com/shop1111/flight-booking/internal/middleware"
	"github.com/shop1111/flight-booking/internal/queue"
	"github.com/shop1111/flight-booking/internal/router"
	"github.com/shop1111/flight-booking/internal/service"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	entry := log.WithField("env", cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		entry.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		mg, err := database.NewMigrator(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
		if err != nil {
			entry.WithError(err).Fatal("migrator setup failed")
		}
		version, err := mg.Up()
		_ = mg.Close()
		if err != nil {
			entry.WithError(err).Fatal("migrations failed")
		}
		entry.WithField("version", version).Info("schema up to date")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		entry.WithField("addr", cfg.Redis.Addr).Warn("redis unavailable; seat cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	emitter := queue.NewEmitter(queue.NewPublisher(cfg.Events), cfg.Events.PublishTimeout, entry)
	defer emitter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Events.RunConsumer && cfg.Events.Backend == config.EventsAMQP {
		consumer := &queue.OrderLogConsumer{
			URL:   cfg.Events.AMQPURL,
			Queue: cfg.Events.AMQPQueue,
			Dir:   cfg.Events.ConsumerLogDir,
			Log:   entry.WithField("component", "order-consumer"),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				entry.WithError(err).Error("order consumer stopped")
			}
		}()
	}

	deps := service.NewDeps(db, cfg.TxMaxRetries)
	deps.HoldTTL = cfg.HoldTTL
	deps.Events = emitter
	if sc := cache.NewSeatCache(cfg.SeatCache, rdb, entry); sc != nil {
		deps.Cache = sc
	}

	orders := service.NewOrderService(deps)
	ledger := service.NewLedgerService(deps)
	handlers := router.Handlers{
		Orders:  handler.NewOrderHandler(orders, ledger, entry),
		Seats:   handler.NewSeatHandler(service.NewSeatService(deps), entry),
		Wallet:  handler.NewWalletHandler(ledger, entry),
		History: handler.NewHistoryHandler(service.NewHistoryService(deps), entry),
		Admin:   handler.NewAdminHandler(service.NewStatsService(deps), orders, entry),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(entry))
	e.Use(echomw.Recover())

	router.RegisterAll(e, db, handlers, router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		Log:       entry,
	})

	addr := ":" + cfg.Port
	go func() {
		entry.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			entry.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	entry.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		entry.WithError(err).Error("graceful shutdown failed")
	}
}
