package receipts

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

func TestBuildBookingReceipt(t *testing.T) {
	booking := &models.Booking{
		ID:            primitive.NewObjectID(),
		CarID:         primitive.NewObjectID(),
		CustomerID:    uuid.New(),
		AgentID:       uuid.New(),
		DateFrom:      time.Now(),
		DateTo:        time.Now().Add(48 * time.Hour),
		Location:      "Lahore",
		Price:         300,
		Status:        models.BookingStatusApproved,
		PaymentStatus: models.PaymentStatePaid,
	}
	car := &models.Car{
		Name:         "Corolla",
		Model:        "GLi",
		Year:         2021,
		LicensePlate: "LEB-1234",
	}
	payment := &models.Payment{
		Status:   models.PaymentStatusCompleted,
		Currency: "usd",
		IntentID: "pi_test_123",
	}

	data, err := BuildBookingReceipt(booking, car, payment)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildBookingReceiptRequiresPaidBooking(t *testing.T) {
	booking := &models.Booking{
		ID:            primitive.NewObjectID(),
		PaymentStatus: models.PaymentStateUnpaid,
	}

	_, err := BuildBookingReceipt(booking, nil, nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = BuildBookingReceipt(nil, nil, nil)
	assert.Error(t, err)
}
