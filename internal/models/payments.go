package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const PaymentsColName = "payments"

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// AdminPaymentDetails records the payout leg: how and when the platform paid
// the agent. Its presence means the payout is settled, independent of the
// customer-facing Status.
type AdminPaymentDetails struct {
	Method        string    `bson:"method" json:"paymentMethod"`
	TransactionID string    `bson:"transaction_id" json:"transactionId"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
	PaidAt        time.Time `bson:"paid_at" json:"paidAt"`
}

// Payment tracks the customer->platform charge for a booking in Status, and
// carries the platform->agent payout sub-record once the admin settles it.
type Payment struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	BookingID        primitive.ObjectID   `bson:"booking_id" json:"booking_id"`
	CustomerID       uuid.UUID            `bson:"customer_id" json:"customer_id"`
	AgentID          uuid.UUID            `bson:"agent_id" json:"agent_id"`
	Amount           float64              `bson:"amount" json:"amount" validate:"required,gt=0"`
	Currency         string               `bson:"currency" json:"currency" validate:"required,len=3"`
	Status           PaymentStatus        `bson:"status" json:"status"`
	IntentID         string               `bson:"stripe_payment_intent_id,omitempty" json:"paymentIntentId,omitempty"`
	AdminIntentID    string               `bson:"admin_payment_intent_id,omitempty" json:"adminPaymentIntentId,omitempty"`
	AgentBankDetails *BankDetails         `bson:"agent_bank_details,omitempty" json:"agentBankDetails,omitempty"`
	AdminPayment     *AdminPaymentDetails `bson:"admin_payment_details,omitempty" json:"adminPaymentDetails,omitempty"`
	CreatedAt        time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updated_at"`
}

func (p *Payment) BeforeCreate() error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	return nil
}

// PaymentWithBooking joins the payment with its booking for admin reads.
type PaymentWithBooking struct {
	Payment
	Booking *Booking `json:"booking,omitempty"`
}

type PaymentsRepo interface {
	CreatePayment(ctx context.Context, payment *Payment) (*Payment, error)
	GetPaymentByID(ctx context.Context, id primitive.ObjectID) (*Payment, error)
	GetPaymentByBookingID(ctx context.Context, bookingId primitive.ObjectID) (*Payment, error)
	ListPayments(ctx context.Context) ([]*Payment, error)
	SetPaymentIntent(ctx context.Context, id primitive.ObjectID, intentId string) error
	SetAdminPaymentIntent(ctx context.Context, id primitive.ObjectID, intentId string) error
	UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status PaymentStatus) (*Payment, error)
	SetAgentBankDetails(ctx context.Context, id primitive.ObjectID, details *BankDetails) error
	SetAdminPaymentDetails(ctx context.Context, id primitive.ObjectID, details *AdminPaymentDetails) (*Payment, error)
	DeletePaymentsByBooking(ctx context.Context, bookingId primitive.ObjectID) error
}
