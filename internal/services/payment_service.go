package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
	"github.com/Onlinecarrental/final-project-sub000/internal/payments"
)

// PaymentService keeps the ledger for two money movements on one Payment
// record: the customer->platform charge (tracked in Status) and the
// platform->agent payout (tracked in AdminPayment).
type PaymentService struct {
	payments  models.PaymentsRepo
	bookings  models.BookingsRepo
	chats     *ChatService
	processor payments.Processor
	logger    *slog.Logger
}

func NewPaymentService(paymentsRepo models.PaymentsRepo, bookings models.BookingsRepo, chats *ChatService, processor payments.Processor, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		payments:  paymentsRepo,
		bookings:  bookings,
		chats:     chats,
		processor: processor,
		logger:    logger,
	}
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	PaymentID       string `json:"paymentId"`
}

func (ps *PaymentService) CreatePaymentIntent(ctx context.Context, bookingId primitive.ObjectID, amount float64, currency string) (*PaymentIntentResult, error) {
	if amount <= 0 {
		return nil, models.Validationf("amount must be positive")
	}
	if len(currency) != 3 {
		return nil, models.Validationf("currency must be a 3-letter code")
	}

	booking, err := ps.bookings.GetBookingByID(ctx, bookingId)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		AgentID:    booking.AgentID,
		Amount:     amount,
		Currency:   currency,
		Status:     models.PaymentStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	created, err := ps.payments.CreatePayment(ctx, payment)
	if err != nil {
		return nil, err
	}

	intent, err := ps.processor.CreateIntent(ctx, amount, currency, map[string]string{
		"booking_id": booking.ID.Hex(),
		"payment_id": created.ID.Hex(),
	})
	if err != nil {
		if _, stErr := ps.payments.UpdatePaymentStatus(ctx, created.ID, models.PaymentStatusFailed); stErr != nil {
			ps.logger.Error("failed to mark payment failed", "payment_id", created.ID.Hex(), "error", stErr)
		}
		return nil, fmt.Errorf("payment processor error: %w", err)
	}

	if err := ps.payments.SetPaymentIntent(ctx, created.ID, intent.ID); err != nil {
		return nil, err
	}
	if err := ps.bookings.SetBookingPayment(ctx, booking.ID, created.ID); err != nil {
		return nil, err
	}

	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		PaymentID:       created.ID.Hex(),
	}, nil
}

// ConfirmPayment checks the processor's verdict on the intent. On success the
// payment completes, the booking flips to paid, and the agent gets a chat
// notification. Re-confirming an already completed payment returns the
// current state without posting another message.
func (ps *PaymentService) ConfirmPayment(ctx context.Context, intentId string, paymentId primitive.ObjectID) (*models.Payment, error) {
	payment, err := ps.payments.GetPaymentByID(ctx, paymentId)
	if err != nil {
		return nil, err
	}

	if payment.Status == models.PaymentStatusCompleted {
		return payment, nil
	}

	if intentId == "" || payment.IntentID != intentId {
		return nil, models.Validationf("payment intent does not match payment %s", paymentId.Hex())
	}

	intent, err := ps.processor.RetrieveIntent(ctx, intentId)
	if err != nil {
		return nil, fmt.Errorf("payment processor error: %w", err)
	}
	if intent.Status != payments.IntentStatusSucceeded {
		return nil, fmt.Errorf("%w: processor reports %s", models.ErrPaymentNotCompleted, intent.Status)
	}

	updated, err := ps.payments.UpdatePaymentStatus(ctx, paymentId, models.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	if err := ps.bookings.UpdateBookingPaymentStatus(ctx, payment.BookingID, models.PaymentStatePaid); err != nil {
		return nil, err
	}

	ps.notifyAgent(ctx, updated)
	return updated, nil
}

// notifyAgent posts the payment confirmation into the customer<->agent chat.
// Best effort: a failure here is logged and never rolls back the payment.
func (ps *PaymentService) notifyAgent(ctx context.Context, payment *models.Payment) {
	chat, err := ps.chats.CreateOrGetChat(ctx, payment.CustomerID, payment.AgentID)
	if err != nil {
		ps.logger.Error("payment confirmed but chat lookup failed",
			"payment_id", payment.ID.Hex(), "error", err)
		return
	}

	text := fmt.Sprintf("Payment of %.2f %s received for booking %s.",
		payment.Amount, payment.Currency, payment.BookingID.Hex())

	// The notification is authored as the customer, matching what the agent
	// sees when the customer messages directly.
	_, err = ps.chats.SendMessage(ctx, chat.ID, payment.CustomerID, models.SenderRoleCustomer, text)
	if err != nil {
		ps.logger.Error("payment confirmed but chat notification failed",
			"payment_id", payment.ID.Hex(), "chat_id", chat.ID.Hex(), "error", err)
	}
}

// CreateAdminPaymentIntent opens the payout leg: a second processor intent
// tagged as an admin->agent transfer, reusing the existing payment record.
func (ps *PaymentService) CreateAdminPaymentIntent(ctx context.Context, paymentId primitive.ObjectID, amount float64, currency string, agentId uuid.UUID) (*PaymentIntentResult, error) {
	if amount <= 0 {
		return nil, models.Validationf("amount must be positive")
	}
	if len(currency) != 3 {
		return nil, models.Validationf("currency must be a 3-letter code")
	}

	payment, err := ps.payments.GetPaymentByID(ctx, paymentId)
	if err != nil {
		return nil, err
	}

	intent, err := ps.processor.CreateIntent(ctx, amount, currency, map[string]string{
		"payment_id": payment.ID.Hex(),
		"agent_id":   agentId.String(),
		"transfer":   "admin_to_agent",
	})
	if err != nil {
		return nil, fmt.Errorf("payment processor error: %w", err)
	}

	if err := ps.payments.SetAdminPaymentIntent(ctx, payment.ID, intent.ID); err != nil {
		return nil, err
	}

	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		PaymentID:       payment.ID.Hex(),
	}, nil
}

// AdminPayAgentStripeConfirm settles the payout after the processor confirms
// the admin transfer intent succeeded.
func (ps *PaymentService) AdminPayAgentStripeConfirm(ctx context.Context, paymentId primitive.ObjectID, intentId, method, transactionId, notes string) (*models.Payment, error) {
	payment, err := ps.payments.GetPaymentByID(ctx, paymentId)
	if err != nil {
		return nil, err
	}

	if intentId == "" || payment.AdminIntentID != intentId {
		return nil, models.Validationf("payout intent does not match payment %s", paymentId.Hex())
	}

	intent, err := ps.processor.RetrieveIntent(ctx, intentId)
	if err != nil {
		return nil, fmt.Errorf("payment processor error: %w", err)
	}
	if intent.Status != payments.IntentStatusSucceeded {
		return nil, fmt.Errorf("%w: processor reports %s", models.ErrPaymentNotCompleted, intent.Status)
	}

	return ps.payments.SetAdminPaymentDetails(ctx, paymentId, &models.AdminPaymentDetails{
		Method:        method,
		TransactionID: transactionId,
		Notes:         notes,
		PaidAt:        time.Now(),
	})
}

// AdminPayAgentManual records an offline payout. Trusted admin input; there
// is no processor involvement to verify.
func (ps *PaymentService) AdminPayAgentManual(ctx context.Context, paymentId primitive.ObjectID, method, transactionId, notes string) (*models.Payment, error) {
	if method == "" {
		return nil, models.Validationf("payment method is required")
	}

	if _, err := ps.payments.GetPaymentByID(ctx, paymentId); err != nil {
		return nil, err
	}

	return ps.payments.SetAdminPaymentDetails(ctx, paymentId, &models.AdminPaymentDetails{
		Method:        method,
		TransactionID: transactionId,
		Notes:         notes,
		PaidAt:        time.Now(),
	})
}

func (ps *PaymentService) GetPaymentDetails(ctx context.Context, paymentId primitive.ObjectID) (*models.PaymentWithBooking, error) {
	payment, err := ps.payments.GetPaymentByID(ctx, paymentId)
	if err != nil {
		return nil, err
	}
	return ps.joinBooking(ctx, payment), nil
}

func (ps *PaymentService) GetAllPayments(ctx context.Context) ([]*models.PaymentWithBooking, error) {
	all, err := ps.payments.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*models.PaymentWithBooking, 0, len(all))
	for _, p := range all {
		out = append(out, ps.joinBooking(ctx, p))
	}
	return out, nil
}

func (ps *PaymentService) joinBooking(ctx context.Context, payment *models.Payment) *models.PaymentWithBooking {
	joined := &models.PaymentWithBooking{Payment: *payment}
	booking, err := ps.bookings.GetBookingByID(ctx, payment.BookingID)
	if err != nil {
		ps.logger.Warn("payment references missing booking",
			"payment_id", payment.ID.Hex(), "booking_id", payment.BookingID.Hex())
		return joined
	}
	joined.Booking = booking
	return joined
}
