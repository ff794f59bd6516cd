// Package app builds the store, providers and services shared by the
// server and cronjob commands.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentshare-backend/internal/config"
	"rentshare-backend/internal/events"
	"rentshare-backend/internal/lock"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/payment"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/repository/memory"
	"rentshare-backend/internal/repository/postgres"
	"rentshare-backend/internal/security"
	"rentshare-backend/internal/service"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config       *config.Config
	Store        repository.Store
	TokenManager security.TokenManager

	Users    service.UserService
	Items    service.ItemService
	Bookings service.BookingService
	Reviews  service.ReviewService

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	provider, err := newPaymentProvider(cfg.Payment)
	if err != nil {
		a.Close()
		return nil, err
	}

	locker, err := a.newLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		logger.Info("Publishing booking events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, publisher.Close)
	}

	emailSvc := service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	if cfg.Email.SendGridAPIKey == "" {
		logger.Info("SendGrid API key not set, booking emails are disabled")
	}
	notifier := service.NewNotificationService(store.Repos().Users, emailSvc, publisher)

	a.TokenManager = security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	a.Users = service.NewUserService(store.Repos().Users)
	a.Items = service.NewItemService(store)
	a.Reviews = service.NewReviewService(store)
	a.Bookings = service.NewBookingService(store, provider, locker, notifier, service.BookingConfig{
		Currency:          cfg.Payment.Currency,
		PaymentTimeout:    cfg.Payment.Timeout,
		StaleRequestGrace: cfg.Booking.StaleRequestGrace,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	cfg := a.Config
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using the in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return postgres.NewStore(db), nil
}

func (a *App) newLocker(ctx context.Context) (lock.Locker, error) {
	cfg := a.Config.Redis
	if cfg.Addr == "" {
		logger.Info("Redis not configured, payment locks are in-process")
		return lock.NewLocalLocker(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	a.closers = append(a.closers, client.Close)
	logger.Info("Redis connection established", "addr", cfg.Addr)
	return lock.NewRedisLocker(client, "rentshare:lock:", cfg.LockTTL), nil
}

func newPaymentProvider(cfg config.PaymentConfig) (payment.Provider, error) {
	switch cfg.Provider {
	case "", "simulated":
		logger.Info("Using simulated payment provider", "delay", cfg.Delay)
		return payment.NewSimulatedProvider(cfg.Delay), nil
	case "mercadopago":
		return payment.NewMercadoPagoProvider(cfg.AccessToken)
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Provider)
	}
}

// Close releases everything New opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}
