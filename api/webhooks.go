package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mazoair/flightpay/internal/gateway/paystack"
	"github.com/mazoair/flightpay/internal/service/payment"
)

type WebhookHandler struct {
	service payment.PaymentUseCase
}

func NewWebhookHandler(service payment.PaymentUseCase) *WebhookHandler {
	return &WebhookHandler{service: service}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/paystack", h.paystack)
}

// paystack accepts gateway event deliveries. The body is passed through raw
// so the signature check covers exactly what was sent. Business-level
// non-errors (ignored events, unknown references) are acknowledged with 200;
// the gateway retries on anything else.
func (h *WebhookHandler) paystack(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	signature := c.GetHeader(paystack.SignatureHeader)

	if err := h.service.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "webhook processed"})
}
