package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
	"github.com/Onlinecarrental/final-project-sub000/internal/receipts"
	"github.com/Onlinecarrental/final-project-sub000/internal/services"
)

func CreateBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, customerId, ok := requesterClaims(c)
		if !ok {
			return
		}

		var in services.CreateBookingInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		in.CustomerID = customerId

		booking, err := bs.CreateBooking(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(booking, "Booking created successfully"))
	}
}

func ListBookings(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := bs.ListBookings(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(bookings, ""))
	}
}

func ListBookingsByAgent(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		agentId, err := uuid.Parse(c.Param("agentId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid agent ID format"))
			return
		}
		if agentId != requesterId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("you can only view your own bookings"))
			return
		}

		bookings, err := bs.ListBookingsByAgent(c.Request.Context(), agentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(bookings, ""))
	}
}

func ListBookingsByCustomer(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		customerId, err := uuid.Parse(c.Param("customerId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid customer ID format"))
			return
		}
		if customerId != requesterId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("you can only view your own bookings"))
			return
		}

		bookings, err := bs.ListBookingsByCustomer(c.Request.Context(), customerId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(bookings, ""))
	}
}

func ApproveBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		booking, err := bs.ApproveBooking(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking approved"))
	}
}

func RejectBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		booking, err := bs.RejectBooking(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking rejected"))
	}
}

func UpdateBookingPaymentStatus(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		var body struct {
			PaymentStatus models.PaymentState `json:"paymentStatus" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := bs.UpdatePaymentStatus(c.Request.Context(), id, body.PaymentStatus); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Payment status updated"))
	}
}

func DeleteBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		if err := bs.DeleteBooking(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Booking deleted"))
	}
}

// BookingReceipt streams a PDF receipt for a paid booking.
func BookingReceipt(bs *services.BookingService, cs *services.CarService, ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		booking, err := bs.GetBookingByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if booking.CustomerID != requesterId && booking.AgentID != requesterId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("you can only download receipts for your own bookings"))
			return
		}

		car, err := cs.GetCarByID(c.Request.Context(), booking.CarID)
		if err != nil {
			car = nil
		}

		var payment *models.Payment
		if booking.PaymentID != nil {
			if details, err := ps.GetPaymentDetails(c.Request.Context(), *booking.PaymentID); err == nil {
				payment = &details.Payment
			}
		}

		pdf, err := receipts.BuildBookingReceipt(booking, car, payment)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=booking-"+id.Hex()+".pdf")
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}
