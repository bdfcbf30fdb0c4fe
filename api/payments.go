package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mazoair/flightpay/internal/currency"
	"github.com/mazoair/flightpay/internal/gateway/paystack"
	"github.com/mazoair/flightpay/internal/repository"
	"github.com/mazoair/flightpay/internal/service/payment"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/quote", h.quote)
	router.POST("/initiate", h.initiate)
	router.POST("/charge", h.charge)
	router.POST("/submit-pin", h.submitPIN)
	router.POST("/submit-otp", h.submitOTP)
	router.POST("/verify", h.verify)
}

type submitFactorRequest struct {
	PIN       string `json:"pin"`
	OTP       string `json:"otp"`
	Reference string `json:"reference"`
}

type verifyRequest struct {
	Reference string `json:"reference"`
}

type quoteRequest struct {
	BookingID int64 `json:"booking_id"`
	UserID    int64 `json:"user_id"`
}

func (h *PaymentHandler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.QuoteBooking(c.Request.Context(), req.BookingID, req.UserID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) initiate(c *gin.Context) {
	var req payment.InitiatePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.InitiatePayment(c.Request.Context(), req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) charge(c *gin.Context) {
	var req payment.ChargeCardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ChargeCard(c.Request.Context(), req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) submitPIN(c *gin.Context) {
	var req submitFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.SubmitPIN(c.Request.Context(), req.PIN, req.Reference)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) submitOTP(c *gin.Context) {
	var req submitFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.SubmitOTP(c.Request.Context(), req.OTP, req.Reference)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.VerifyPayment(c.Request.Context(), req.Reference)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondPaymentError maps the service error taxonomy onto HTTP statuses:
// caller errors 400, stale/foreign references 404, configuration problems
// 500, gateway declines 402 with the gateway's message verbatim.
func respondPaymentError(c *gin.Context, err error) {
	var unsupported *payment.UnsupportedCurrencyError
	var mismatch *payment.AmountMismatchError
	var notSuccessful *payment.NotSuccessfulError
	var unexpected *payment.UnexpectedStatusError
	var declined *paystack.GatewayError

	switch {
	case errors.Is(err, payment.ErrMissingFields), errors.Is(err, payment.ErrEmptyReference), errors.Is(err, currency.ErrNonPositiveAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &unsupported):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           err.Error(),
			"expected_amount": mismatch.Expected,
			"actual_amount":   mismatch.Actual,
			"reference":       mismatch.Reference,
		})
	case errors.As(err, &notSuccessful):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            err.Error(),
			"gateway_status":   notSuccessful.Status,
			"gateway_response": notSuccessful.GatewayResponse,
		})
	case errors.As(err, &unexpected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &declined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": declined.Message})
	case errors.Is(err, repository.ErrBookingNotFound), errors.Is(err, repository.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
