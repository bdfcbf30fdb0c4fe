package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mazoair/flightpay/api"
	"github.com/mazoair/flightpay/config"
	"github.com/mazoair/flightpay/internal/service/booking"
	"github.com/mazoair/flightpay/internal/service/flights"
	"github.com/mazoair/flightpay/internal/service/payment"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, paymentSvc payment.PaymentUseCase) error {
	router := newRouter(flightSvc, bookingSvc, paymentSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, paymentSvc payment.PaymentUseCase) *gin.Engine {
	router := gin.Default()

	v1 := router.Group("/api/v1")
	api.NewFlightHandler(flightSvc).Register(v1.Group("/flights"))
	api.NewBookingHandler(bookingSvc).Register(v1.Group("/bookings"))
	api.NewPaymentHandler(paymentSvc).Register(v1.Group("/payments"))
	api.NewWebhookHandler(paymentSvc).Register(v1.Group("/webhooks"))

	return router
}
