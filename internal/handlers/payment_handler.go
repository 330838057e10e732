package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
	"github.com/Onlinecarrental/final-project-sub000/internal/services"
)

func CreatePaymentIntent(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			BookingID string  `json:"bookingId" binding:"required"`
			Amount    float64 `json:"amount" binding:"required,gt=0"`
			Currency  string  `json:"currency" binding:"required,len=3"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		bookingId, err := primitive.ObjectIDFromHex(body.BookingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		result, err := ps.CreatePaymentIntent(c.Request.Context(), bookingId, body.Amount, body.Currency)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(result, "Payment intent created"))
	}
}

func ConfirmPayment(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			PaymentIntentID string `json:"paymentIntentId" binding:"required"`
			PaymentID       string `json:"paymentId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		paymentId, err := primitive.ObjectIDFromHex(body.PaymentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid payment ID format"))
			return
		}

		payment, err := ps.ConfirmPayment(c.Request.Context(), body.PaymentIntentID, paymentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(payment, "Payment confirmed"))
	}
}

func CreateAdminPaymentIntent(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			PaymentID string  `json:"paymentId" binding:"required"`
			Amount    float64 `json:"amount" binding:"required,gt=0"`
			Currency  string  `json:"currency" binding:"required,len=3"`
			AgentID   string  `json:"agentId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		paymentId, err := primitive.ObjectIDFromHex(body.PaymentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid payment ID format"))
			return
		}
		agentId, err := uuid.Parse(body.AgentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid agent ID format"))
			return
		}

		result, err := ps.CreateAdminPaymentIntent(c.Request.Context(), paymentId, body.Amount, body.Currency, agentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(result, "Admin payment intent created"))
	}
}

func AdminPayAgentStripe(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentId, err := primitive.ObjectIDFromHex(c.Param("paymentId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid payment ID format"))
			return
		}

		var body struct {
			PaymentIntentID string `json:"paymentIntentId" binding:"required"`
			PaymentMethod   string `json:"paymentMethod" binding:"required"`
			TransactionID   string `json:"transactionId"`
			Notes           string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		payment, err := ps.AdminPayAgentStripeConfirm(c.Request.Context(), paymentId, body.PaymentIntentID, body.PaymentMethod, body.TransactionID, body.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(payment, "Agent payout recorded"))
	}
}

func AdminPayAgentManual(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentId, err := primitive.ObjectIDFromHex(c.Param("paymentId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid payment ID format"))
			return
		}

		var body struct {
			PaymentMethod string `json:"paymentMethod" binding:"required"`
			TransactionID string `json:"transactionId"`
			Notes         string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		payment, err := ps.AdminPayAgentManual(c.Request.Context(), paymentId, body.PaymentMethod, body.TransactionID, body.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(payment, "Agent payout recorded"))
	}
}

// ApproveWithBankDetails records the agent's payout bank details against an
// approved booking and its payment.
func ApproveWithBankDetails(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		bookingId, err := primitive.ObjectIDFromHex(c.Param("bookingId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		var details models.BankDetails
		if err := c.ShouldBindJSON(&details); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		booking, err := bs.GetBookingByID(c.Request.Context(), bookingId)
		if err != nil {
			respondError(c, err)
			return
		}
		if booking.AgentID != requesterId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("only the booking's agent can add bank details"))
			return
		}

		updated, err := bs.ApproveWithBankDetails(c.Request.Context(), bookingId, details)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Bank details recorded"))
	}
}

func GetAllPayments(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := ps.GetAllPayments(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(payments, ""))
	}
}

func GetPaymentDetails(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentId, err := primitive.ObjectIDFromHex(c.Param("paymentId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid payment ID format"))
			return
		}

		payment, err := ps.GetPaymentDetails(c.Request.Context(), paymentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(payment, ""))
	}
}
