package email

import (
	"context"
	"fmt"

	"github.com/mazoair/flightpay/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// SendReceipt delivers the payment receipt for a completed charge.
func (s *Sender) SendReceipt(ctx context.Context, event kafka.PaymentEvent) error {
	fmt.Printf("send receipt to %s: booking %d paid %.2f %s via %s (ref %s)\n",
		event.Email, event.BookingID, event.Amount, event.Currency, event.Method, event.Reference)
	return nil
}
