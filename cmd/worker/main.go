package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mazoair/flightpay/config"
	"github.com/mazoair/flightpay/internal/cache"
	"github.com/mazoair/flightpay/internal/currency"
	"github.com/mazoair/flightpay/internal/email"
	"github.com/mazoair/flightpay/internal/gateway/paystack"
	"github.com/mazoair/flightpay/internal/kafka"
	"github.com/mazoair/flightpay/internal/repository"
	"github.com/mazoair/flightpay/internal/service/payment"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)

	bookingRepo := repository.NewBookingRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)

	gateway := paystack.NewClient(cfg.Paystack.BaseURL, time.Duration(cfg.Paystack.TimeoutSeconds)*time.Second)
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
		payment.WithAmountTolerance(cfg.Payment.AmountTolerance),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.PaymentEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			if event.Type != "payment_completed" {
				return nil
			}
			return emailSender.SendReceipt(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.ReconcileSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	batch := cfg.Worker.SweepBatchSize
	if batch == 0 {
		batch = 50
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			sweep(ctx, bookingRepo, paymentService, batch)
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}

// sweep re-verifies bookings whose charge was initiated but never reached a
// terminal payment state. A payer abandoning the callback page, or a
// client-side timeout, leaves the gateway-side charge in an unknown state;
// verification is read-only and idempotent, so polling it here is safe.
func sweep(ctx context.Context, bookings repository.BookingRepository, svc payment.PaymentUseCase, batch int) {
	pending, err := bookings.ListPendingVerification(ctx, batch)
	if err != nil {
		log.Printf("list pending verifications: %v", err)
		return
	}

	reconciled := 0
	for _, b := range pending {
		if _, err := svc.VerifyPayment(ctx, b.TransactionRef); err != nil {
			var notSuccessful *payment.NotSuccessfulError
			if errors.As(err, &notSuccessful) {
				// Still pending or abandoned on the gateway side; leave it.
				continue
			}
			log.Printf("sweep verify %s: %v", b.TransactionRef, err)
			continue
		}
		reconciled++
	}
	if reconciled > 0 {
		log.Printf("sweep reconciled %d bookings", reconciled)
	}
}
