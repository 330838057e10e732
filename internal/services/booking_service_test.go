package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedCar(t *testing.T, cars *fakeCarsRepo, status models.CarStatus) *models.Car {
	t.Helper()
	car, err := cars.CreateCar(context.Background(), &models.Car{
		AgentID: uuid.New(),
		Name:    "Corolla",
		Status:  status,
	})
	require.NoError(t, err)
	return car
}

func bookingInput(car *models.Car) CreateBookingInput {
	return CreateBookingInput{
		CarID:      car.ID,
		CustomerID: uuid.New(),
		AgentID:    car.AgentID,
		DateFrom:   time.Now().Add(24 * time.Hour),
		DateTo:     time.Now().Add(72 * time.Hour),
		Location:   "Lahore",
		Price:      150,
	}
}

func TestCreateBookingClaimsCar(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)

	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.PaymentStateUnpaid, booking.PaymentStatus)

	claimed, err := cars.GetCarByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusPending, claimed.Status)
}

func TestCreateBookingRejectsUnavailableCar(t *testing.T) {
	cars := newFakeCarsRepo()
	bs := NewBookingService(newFakeBookingsRepo(), cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusRented)

	_, err := bs.CreateBooking(context.Background(), bookingInput(car))
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateBookingValidation(t *testing.T) {
	cars := newFakeCarsRepo()
	bs := NewBookingService(newFakeBookingsRepo(), cars, newFakePaymentsRepo(), nil, discardLogger())
	car := seedCar(t, cars, models.CarStatusAvailable)

	in := bookingInput(car)
	in.DateTo = in.DateFrom.Add(-time.Hour)
	_, err := bs.CreateBooking(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrValidation)

	in = bookingInput(car)
	in.Price = 0
	_, err = bs.CreateBooking(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrValidation)
}

// Two customers race for the same car; exactly one booking may win.
func TestCreateBookingConcurrentSingleWinner(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = bs.CreateBooking(context.Background(), bookingInput(car))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, models.ErrConflict)
		}
	}
	assert.Equal(t, 1, wins)

	stored, err := bookings.ListBookings(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestApproveBookingMarksCarRented(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)

	approved, err := bs.ApproveBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusApproved, approved.Status)

	updated, err := cars.GetCarByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusRented, updated.Status)

	// Only pending bookings can be approved.
	_, err = bs.ApproveBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRejectBookingFreesCar(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)

	rejected, err := bs.RejectBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, rejected.Status)

	freed, err := cars.GetCarByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusAvailable, freed.Status)

	// Rejecting again is a no-op on state, not an error.
	_, err = bs.RejectBooking(context.Background(), booking.ID)
	assert.NoError(t, err)
}

func TestRejectApprovedBookingFails(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)
	_, err = bs.ApproveBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	_, err = bs.RejectBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestApproveWithBankDetailsMirrorsToPayment(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	paymentsRepo := newFakePaymentsRepo()
	bs := NewBookingService(bookings, cars, paymentsRepo, nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)
	_, err = bs.ApproveBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	payment, err := paymentsRepo.CreatePayment(context.Background(), &models.Payment{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		AgentID:    booking.AgentID,
		Amount:     booking.Price,
		Currency:   "usd",
		Status:     models.PaymentStatusPending,
	})
	require.NoError(t, err)

	details := models.BankDetails{
		AgentName:     "Ali Raza",
		BankName:      "HBL",
		AccountNumber: "0123456789",
		AccountTitle:  "Ali Raza",
	}
	updated, err := bs.ApproveWithBankDetails(context.Background(), booking.ID, details)
	require.NoError(t, err)
	require.NotNil(t, updated.ApprovalBank)
	assert.Equal(t, "HBL", updated.ApprovalBank.BankName)

	stored, err := paymentsRepo.GetPaymentByID(context.Background(), payment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AgentBankDetails)
	assert.Equal(t, "0123456789", stored.AgentBankDetails.AccountNumber)
}

func TestApproveWithBankDetailsRequiresApprovedBooking(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)

	_, err = bs.ApproveWithBankDetails(context.Background(), booking.ID, models.BankDetails{
		AgentName:     "Ali Raza",
		BankName:      "HBL",
		AccountNumber: "0123456789",
		AccountTitle:  "Ali Raza",
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteBookingReleasesCar(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)
	_, err = bs.ApproveBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	require.NoError(t, bs.DeleteBooking(context.Background(), booking.ID))

	freed, err := cars.GetCarByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusAvailable, freed.Status)

	_, err = bookings.GetBookingByID(context.Background(), booking.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteBookingRemovesPayments(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	payments := newFakePaymentsRepo()
	bs := NewBookingService(bookings, cars, payments, nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)

	payment, err := payments.CreatePayment(context.Background(), &models.Payment{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		AgentID:    booking.AgentID,
		Amount:     200,
		Currency:   "usd",
		Status:     models.PaymentStatusProcessing,
	})
	require.NoError(t, err)

	require.NoError(t, bs.DeleteBooking(context.Background(), booking.ID))

	_, err = payments.GetPaymentByID(context.Background(), payment.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// Deleting a rejected booking must not touch the car: the rejection already
// released it and another booking may hold it now.
func TestDeleteRejectedBookingLeavesCarAlone(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)
	_, err = bs.RejectBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	// Another customer books the freed car.
	second, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)
	_ = second

	require.NoError(t, bs.DeleteBooking(context.Background(), booking.ID))

	current, err := cars.GetCarByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusPending, current.Status)
}

func TestUpdatePaymentStatusValidatesState(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	booking, err := bs.CreateBooking(context.Background(), bookingInput(car))
	require.NoError(t, err)

	err = bs.UpdatePaymentStatus(context.Background(), booking.ID, models.PaymentState("refunded"))
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, bs.UpdatePaymentStatus(context.Background(), booking.ID, models.PaymentStatePaid))
	stored, err := bookings.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatePaid, stored.PaymentStatus)
}

func TestListBookingsJoinsCars(t *testing.T) {
	cars := newFakeCarsRepo()
	bookings := newFakeBookingsRepo()
	bs := NewBookingService(bookings, cars, newFakePaymentsRepo(), nil, discardLogger())

	car := seedCar(t, cars, models.CarStatusAvailable)
	in := bookingInput(car)
	booking, err := bs.CreateBooking(context.Background(), in)
	require.NoError(t, err)

	byCustomer, err := bs.ListBookingsByCustomer(context.Background(), in.CustomerID)
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, booking.ID, byCustomer[0].ID)
	require.NotNil(t, byCustomer[0].Car)
	assert.Equal(t, car.ID, byCustomer[0].Car.ID)

	byAgent, err := bs.ListBookingsByAgent(context.Background(), in.AgentID)
	require.NoError(t, err)
	assert.Len(t, byAgent, 1)

	_, err = bs.ListBookingsByAgent(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateBookingMissingCar(t *testing.T) {
	bs := NewBookingService(newFakeBookingsRepo(), newFakeCarsRepo(), newFakePaymentsRepo(), nil, discardLogger())

	in := CreateBookingInput{
		CarID:      primitive.NewObjectID(),
		CustomerID: uuid.New(),
		AgentID:    uuid.New(),
		DateFrom:   time.Now(),
		DateTo:     time.Now().Add(time.Hour),
		Location:   "Karachi",
		Price:      80,
	}
	_, err := bs.CreateBooking(context.Background(), in)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
