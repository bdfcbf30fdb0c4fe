package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mazoair/flightpay/config"
	"github.com/mazoair/flightpay/internal/bootstrap"
	"github.com/mazoair/flightpay/internal/cache"
	"github.com/mazoair/flightpay/internal/currency"
	"github.com/mazoair/flightpay/internal/gateway/paystack"
	"github.com/mazoair/flightpay/internal/kafka"
	"github.com/mazoair/flightpay/internal/repository"
	"github.com/mazoair/flightpay/internal/service/booking"
	"github.com/mazoair/flightpay/internal/service/flights"
	"github.com/mazoair/flightpay/internal/service/payment"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)

	gateway := paystack.NewClient(cfg.Paystack.BaseURL, time.Duration(cfg.Paystack.TimeoutSeconds)*time.Second)

	flightService := flights.NewFlightService(flightRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	reconciler := payment.NewReconciler(bookingRepo, paymentRepo, redisCache, producer, cfg.Kafka.PaymentEventsTopic, cfg.Kafka.NotificationsTopic)
	paymentService := payment.NewPaymentService(
		bookingRepo,
		flightRepo,
		credentialRepo,
		redisCache,
		gateway,
		reconciler,
		cfg.Paystack.Environment,
		cfg.Currency.Settlement,
		payment.WithCallbackURL(cfg.Paystack.CallbackURL),
		payment.WithRateTable(currency.NewTable(cfg.Currency.Rates, cfg.Currency.Settlement, cfg.Currency.Fallback)),
		payment.WithSessionTTL(time.Duration(cfg.Payment.SessionTTLMinutes)*time.Minute),
		payment.WithAmountTolerance(cfg.Payment.AmountTolerance),
	)

	if err := bootstrap.Run(ctx, cfg, flightService, bookingService, paymentService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
