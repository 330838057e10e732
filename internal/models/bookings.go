package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const BookingsColName = "bookings"

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusApproved BookingStatus = "approved"
	BookingStatusRejected BookingStatus = "rejected"
)

type PaymentState string

const (
	PaymentStateUnpaid PaymentState = "unpaid"
	PaymentStatePaid   PaymentState = "paid"
)

// BankDetails is the transfer metadata an agent supplies at approval time so
// the platform knows where to send the payout.
type BankDetails struct {
	AgentName     string `bson:"agent_name" json:"agentName" validate:"required"`
	BankName      string `bson:"bank_name" json:"bankName" validate:"required"`
	AccountNumber string `bson:"account_number" json:"accountNumber" validate:"required"`
	AccountTitle  string `bson:"account_title" json:"accountTitle"`
	BranchCode    string `bson:"branch_code" json:"branchCode"`
}

type Booking struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CarID         primitive.ObjectID  `bson:"car_id" json:"car_id"`
	CustomerID    uuid.UUID           `bson:"customer_id" json:"customer_id" validate:"required"`
	AgentID       uuid.UUID           `bson:"agent_id" json:"agent_id" validate:"required"`
	DateFrom      time.Time           `bson:"date_from" json:"date_from" validate:"required"`
	DateTo        time.Time           `bson:"date_to" json:"date_to" validate:"required"`
	Location      string              `bson:"location" json:"location" validate:"required"`
	Price         float64             `bson:"price" json:"price" validate:"required,gt=0"`
	PaymentMethod string              `bson:"payment_method" json:"payment_method"`
	Status        BookingStatus       `bson:"status" json:"status"`
	PaymentStatus PaymentState        `bson:"payment_status" json:"payment_status"`
	ApprovalBank  *BankDetails        `bson:"agent_approval_details,omitempty" json:"agent_approval_details,omitempty"`
	PaymentID     *primitive.ObjectID `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

func (b *Booking) BeforeCreate() error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentStateUnpaid
	}
	return nil
}

// BookingWithCar is the listing shape the clients consume: the booking with
// its car document joined in.
type BookingWithCar struct {
	Booking
	Car *Car `json:"car,omitempty"`
}

type BookingsRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListBookings(ctx context.Context) ([]*Booking, error)
	ListBookingsByAgent(ctx context.Context, agentId uuid.UUID) ([]*Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerId uuid.UUID) ([]*Booking, error)
	UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status BookingStatus) (*Booking, error)
	UpdateBookingPaymentStatus(ctx context.Context, id primitive.ObjectID, state PaymentState) error
	SetApprovalBankDetails(ctx context.Context, id primitive.ObjectID, details *BankDetails) (*Booking, error)
	SetBookingPayment(ctx context.Context, id, paymentId primitive.ObjectID) error
	DeleteBooking(ctx context.Context, id primitive.ObjectID) error
	CarHasActiveBookings(ctx context.Context, carId primitive.ObjectID) (bool, error)
}
