package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mazoair/flightpay/internal/domain"
	"github.com/mazoair/flightpay/internal/repository"
	"github.com/mazoair/flightpay/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	UserID        int64  `json:"user_id"`
	FlightID      int64  `json:"flight_id"`
	PassengerName string `json:"passenger_name"`
	Email         string `json:"email"`
}

type bookingResponse struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	FlightID       int64   `json:"flight_id"`
	PassengerName  string  `json:"passenger_name"`
	Email          string  `json:"email"`
	FlightAmount   float64 `json:"flight_amount"`
	Currency       string  `json:"currency"`
	TransactionRef string  `json:"transaction_ref,omitempty"`
	PaymentStatus  string  `json:"payment_status"`
	Paid           bool    `json:"paid"`
	Status         string  `json:"status"`
	UpdatedAt      string  `json:"updated_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id/approve", h.approve)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:        req.UserID,
		FlightID:      req.FlightID,
		PassengerName: req.PassengerName,
		Email:         req.Email,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrBookingNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	updated, err := h.service.ApproveBooking(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrBookingNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			status = http.StatusNotFound
		case errors.Is(err, booking.ErrBookingPaid):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		FlightID:       b.FlightID,
		PassengerName:  b.PassengerName,
		Email:          b.Email,
		FlightAmount:   b.FlightAmount,
		Currency:       b.Currency,
		TransactionRef: b.TransactionRef,
		PaymentStatus:  string(b.PaymentStatus),
		Paid:           b.Paid,
		Status:         string(b.Status),
		UpdatedAt:      b.UpdatedAt.Format(time.RFC3339),
	}
}
