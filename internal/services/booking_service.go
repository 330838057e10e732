package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/cache"
	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

// BookingService drives the booking state machine and is the only writer of
// Car.Status. Transitions:
//
//	pending  -> approved (car -> rented)
//	pending  -> rejected (car -> available)
//
// Creation claims the car with a conditional available->pending update, so
// two concurrent requests for one car cannot both succeed.
type BookingService struct {
	bookings models.BookingsRepo
	cars     models.CarsRepo
	payments models.PaymentsRepo
	cache    *cache.Cache
	logger   *slog.Logger
}

func NewBookingService(bookings models.BookingsRepo, cars models.CarsRepo, payments models.PaymentsRepo, c *cache.Cache, logger *slog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		cars:     cars,
		payments: payments,
		cache:    c,
		logger:   logger,
	}
}

type CreateBookingInput struct {
	CarID         primitive.ObjectID `json:"car" binding:"required"`
	CustomerID    uuid.UUID          `json:"customer" binding:"required"`
	AgentID       uuid.UUID          `json:"agent" binding:"required"`
	DateFrom      time.Time          `json:"dateFrom" binding:"required"`
	DateTo        time.Time          `json:"dateTo" binding:"required"`
	Location      string             `json:"location" binding:"required"`
	Price         float64            `json:"price" binding:"required,gt=0"`
	PaymentMethod string             `json:"paymentMethod"`
}

func (bs *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.CarID.IsZero() || in.CustomerID == uuid.Nil || in.AgentID == uuid.Nil {
		return nil, models.Validationf("car, customer and agent are required")
	}
	if in.Location == "" || in.Price <= 0 {
		return nil, models.Validationf("location and a positive price are required")
	}
	if !in.DateTo.After(in.DateFrom) {
		return nil, models.Validationf("dateTo must be after dateFrom")
	}

	if _, err := bs.cars.GetCarByID(ctx, in.CarID); err != nil {
		return nil, err
	}

	// Claim the car. The conditional update only succeeds while the car is
	// still available, which closes the double-booking window.
	err := bs.cars.TransitionStatus(ctx, in.CarID, []models.CarStatus{models.CarStatusAvailable}, models.CarStatusPending)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.Conflictf("car %s is not available for booking", in.CarID.Hex())
		}
		return nil, err
	}

	booking := &models.Booking{
		CarID:         in.CarID,
		CustomerID:    in.CustomerID,
		AgentID:       in.AgentID,
		DateFrom:      in.DateFrom,
		DateTo:        in.DateTo,
		Location:      in.Location,
		Price:         in.Price,
		PaymentMethod: in.PaymentMethod,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStateUnpaid,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	created, err := bs.bookings.CreateBooking(ctx, booking)
	if err != nil {
		// The car is claimed but the booking never landed; release it.
		if revertErr := bs.cars.TransitionStatus(ctx, in.CarID, []models.CarStatus{models.CarStatusPending}, models.CarStatusAvailable); revertErr != nil {
			bs.logger.Error("failed to release car after booking insert failure",
				"car_id", in.CarID.Hex(), "error", revertErr)
		}
		return nil, err
	}

	bs.invalidateCar(ctx, in.CarID)
	return created, nil
}

func (bs *BookingService) ApproveBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending {
		return nil, models.Validationf("booking %s is %s, only pending bookings can be approved", id.Hex(), booking.Status)
	}

	updated, err := bs.bookings.UpdateBookingStatus(ctx, id, models.BookingStatusApproved)
	if err != nil {
		return nil, err
	}

	if err := bs.cars.TransitionStatus(ctx, booking.CarID, nil, models.CarStatusRented); err != nil {
		bs.logger.Error("approved booking but failed to mark car rented",
			"booking_id", id.Hex(), "car_id", booking.CarID.Hex(), "error", err)
		return nil, err
	}

	bs.invalidateCar(ctx, booking.CarID)
	return updated, nil
}

// RejectBooking moves the booking to rejected and frees the car. Re-rejecting
// an already rejected booking is allowed and resets the car again.
func (bs *BookingService) RejectBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusApproved {
		return nil, models.Validationf("booking %s is already approved", id.Hex())
	}

	updated, err := bs.bookings.UpdateBookingStatus(ctx, id, models.BookingStatusRejected)
	if err != nil {
		return nil, err
	}

	if err := bs.cars.TransitionStatus(ctx, booking.CarID, nil, models.CarStatusAvailable); err != nil {
		bs.logger.Error("rejected booking but failed to release car",
			"booking_id", id.Hex(), "car_id", booking.CarID.Hex(), "error", err)
		return nil, err
	}

	bs.invalidateCar(ctx, booking.CarID)
	return updated, nil
}

// ApproveWithBankDetails records the agent's payout details on an approved
// booking and mirrors them onto the linked payment when one exists. It does
// not re-drive the state machine.
func (bs *BookingService) ApproveWithBankDetails(ctx context.Context, id primitive.ObjectID, details models.BankDetails) (*models.Booking, error) {
	if err := models.Validate.Struct(details); err != nil {
		return nil, models.Validationf("invalid bank details: %v", err)
	}

	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusApproved {
		return nil, models.Validationf("bank details can only be added to an approved booking")
	}

	updated, err := bs.bookings.SetApprovalBankDetails(ctx, id, &details)
	if err != nil {
		return nil, err
	}

	payment, err := bs.payments.GetPaymentByBookingID(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		// No payment yet; details stay on the booking until one exists.
		return updated, nil
	}

	if err := bs.payments.SetAgentBankDetails(ctx, payment.ID, &details); err != nil {
		return nil, err
	}

	return updated, nil
}

func (bs *BookingService) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, state models.PaymentState) error {
	if state != models.PaymentStateUnpaid && state != models.PaymentStatePaid {
		return models.Validationf("invalid payment status %q", state)
	}
	return bs.bookings.UpdateBookingPaymentStatus(ctx, id, state)
}

// DeleteBooking removes the booking together with its payment records and,
// unless it was already rejected (the rejection freed the car), resets the
// car to available.
func (bs *BookingService) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bs.bookings.DeleteBooking(ctx, id); err != nil {
		return err
	}

	if err := bs.payments.DeletePaymentsByBooking(ctx, id); err != nil {
		bs.logger.Error("deleted booking but failed to delete its payments",
			"booking_id", id.Hex(), "error", err)
		return err
	}

	if booking.Status != models.BookingStatusRejected {
		if err := bs.cars.TransitionStatus(ctx, booking.CarID, nil, models.CarStatusAvailable); err != nil && !errors.Is(err, models.ErrNotFound) {
			bs.logger.Error("deleted booking but failed to release car",
				"booking_id", id.Hex(), "car_id", booking.CarID.Hex(), "error", err)
			return err
		}
		bs.invalidateCar(ctx, booking.CarID)
	}

	return nil
}

func (bs *BookingService) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return bs.bookings.GetBookingByID(ctx, id)
}

func (bs *BookingService) ListBookings(ctx context.Context) ([]*models.BookingWithCar, error) {
	bookings, err := bs.bookings.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	return bs.joinCars(ctx, bookings)
}

func (bs *BookingService) ListBookingsByAgent(ctx context.Context, agentId uuid.UUID) ([]*models.BookingWithCar, error) {
	if agentId == uuid.Nil {
		return nil, models.Validationf("invalid agent id")
	}
	bookings, err := bs.bookings.ListBookingsByAgent(ctx, agentId)
	if err != nil {
		return nil, err
	}
	return bs.joinCars(ctx, bookings)
}

func (bs *BookingService) ListBookingsByCustomer(ctx context.Context, customerId uuid.UUID) ([]*models.BookingWithCar, error) {
	if customerId == uuid.Nil {
		return nil, models.Validationf("invalid customer id")
	}
	bookings, err := bs.bookings.ListBookingsByCustomer(ctx, customerId)
	if err != nil {
		return nil, err
	}
	return bs.joinCars(ctx, bookings)
}

func (bs *BookingService) joinCars(ctx context.Context, bookings []*models.Booking) ([]*models.BookingWithCar, error) {
	ids := make([]primitive.ObjectID, 0, len(bookings))
	seen := make(map[primitive.ObjectID]bool, len(bookings))
	for _, b := range bookings {
		if !seen[b.CarID] {
			seen[b.CarID] = true
			ids = append(ids, b.CarID)
		}
	}

	cars, err := bs.cars.GetCarsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*models.BookingWithCar, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, &models.BookingWithCar{Booking: *b, Car: cars[b.CarID]})
	}
	return out, nil
}

func (bs *BookingService) invalidateCar(ctx context.Context, carId primitive.ObjectID) {
	bs.cache.Invalidate(ctx, cache.CarKey(carId.Hex()), cache.CarsListKey)
}
