package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
	"github.com/Onlinecarrental/final-project-sub000/internal/payments"
)

// In-memory repositories backing the service tests. Each fake guards its maps
// with a mutex so the concurrency tests exercise the same atomicity the
// conditional database updates provide.

type fakeCarsRepo struct {
	mu   sync.Mutex
	cars map[primitive.ObjectID]*models.Car
}

func newFakeCarsRepo() *fakeCarsRepo {
	return &fakeCarsRepo{cars: map[primitive.ObjectID]*models.Car{}}
}

func (f *fakeCarsRepo) CreateCar(ctx context.Context, car *models.Car) (*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if car.ID.IsZero() {
		car.ID = primitive.NewObjectID()
	}
	cp := *car
	f.cars[car.ID] = &cp
	return car, nil
}

func (f *fakeCarsRepo) GetCarByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[id]
	if !ok {
		return nil, models.NotFoundf("car %s", id.Hex())
	}
	cp := *car
	return &cp, nil
}

func (f *fakeCarsRepo) GetCarsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[primitive.ObjectID]*models.Car{}
	for _, id := range ids {
		if car, ok := f.cars[id]; ok {
			cp := *car
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeCarsRepo) ListCars(ctx context.Context) ([]*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Car{}
	for _, car := range f.cars {
		cp := *car
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCarsRepo) ListCarsByAgent(ctx context.Context, agentId uuid.UUID) ([]*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Car{}
	for _, car := range f.cars {
		if car.AgentID == agentId {
			cp := *car
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCarsRepo) UpdateCar(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[id]
	if !ok {
		return nil, models.NotFoundf("car %s", id.Hex())
	}
	if name, ok := fields["name"].(string); ok {
		car.Name = name
	}
	cp := *car
	return &cp, nil
}

func (f *fakeCarsRepo) DeleteCar(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cars[id]; !ok {
		return models.NotFoundf("car %s", id.Hex())
	}
	delete(f.cars, id)
	return nil
}

func (f *fakeCarsRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.CarStatus, to models.CarStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	car, ok := f.cars[id]
	if !ok {
		return models.NotFoundf("car %s", id.Hex())
	}
	if len(from) > 0 {
		matched := false
		for _, s := range from {
			if car.Status == s {
				matched = true
				break
			}
		}
		if !matched {
			return models.Conflictf("car %s is %s", id.Hex(), car.Status)
		}
	}
	car.Status = to
	return nil
}

type fakeBookingsRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newFakeBookingsRepo() *fakeBookingsRepo {
	return &fakeBookingsRepo{bookings: map[primitive.ObjectID]*models.Booking{}}
}

func (f *fakeBookingsRepo) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	cp := *booking
	f.bookings[booking.ID] = &cp
	return booking, nil
}

func (f *fakeBookingsRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.NotFoundf("booking %s", id.Hex())
	}
	cp := *booking
	return &cp, nil
}

func (f *fakeBookingsRepo) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range f.bookings {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeBookingsRepo) ListBookingsByAgent(ctx context.Context, agentId uuid.UUID) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range f.bookings {
		if b.AgentID == agentId {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookingsRepo) ListBookingsByCustomer(ctx context.Context, customerId uuid.UUID) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range f.bookings {
		if b.CustomerID == customerId {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookingsRepo) UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.NotFoundf("booking %s", id.Hex())
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	cp := *booking
	return &cp, nil
}

func (f *fakeBookingsRepo) UpdateBookingPaymentStatus(ctx context.Context, id primitive.ObjectID, state models.PaymentState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return models.NotFoundf("booking %s", id.Hex())
	}
	booking.PaymentStatus = state
	return nil
}

func (f *fakeBookingsRepo) SetApprovalBankDetails(ctx context.Context, id primitive.ObjectID, details *models.BankDetails) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.NotFoundf("booking %s", id.Hex())
	}
	booking.ApprovalBank = details
	cp := *booking
	return &cp, nil
}

func (f *fakeBookingsRepo) SetBookingPayment(ctx context.Context, id, paymentId primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return models.NotFoundf("booking %s", id.Hex())
	}
	booking.PaymentID = &paymentId
	return nil
}

func (f *fakeBookingsRepo) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[id]; !ok {
		return models.NotFoundf("booking %s", id.Hex())
	}
	delete(f.bookings, id)
	return nil
}

func (f *fakeBookingsRepo) CarHasActiveBookings(ctx context.Context, carId primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.CarID == carId && b.Status != models.BookingStatusRejected {
			return true, nil
		}
	}
	return false, nil
}

type fakePaymentsRepo struct {
	mu       sync.Mutex
	payments map[primitive.ObjectID]*models.Payment
}

func newFakePaymentsRepo() *fakePaymentsRepo {
	return &fakePaymentsRepo{payments: map[primitive.ObjectID]*models.Payment{}}
}

func (f *fakePaymentsRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	cp := *payment
	f.payments[payment.ID] = &cp
	return payment, nil
}

func (f *fakePaymentsRepo) GetPaymentByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return nil, models.NotFoundf("payment %s", id.Hex())
	}
	cp := *payment
	return &cp, nil
}

func (f *fakePaymentsRepo) GetPaymentByBookingID(ctx context.Context, bookingId primitive.ObjectID) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.BookingID == bookingId {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.NotFoundf("payment for booking %s", bookingId.Hex())
}

func (f *fakePaymentsRepo) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range f.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePaymentsRepo) SetPaymentIntent(ctx context.Context, id primitive.ObjectID, intentId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return models.NotFoundf("payment %s", id.Hex())
	}
	payment.IntentID = intentId
	payment.Status = models.PaymentStatusProcessing
	return nil
}

func (f *fakePaymentsRepo) SetAdminPaymentIntent(ctx context.Context, id primitive.ObjectID, intentId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return models.NotFoundf("payment %s", id.Hex())
	}
	payment.AdminIntentID = intentId
	return nil
}

func (f *fakePaymentsRepo) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return nil, models.NotFoundf("payment %s", id.Hex())
	}
	payment.Status = status
	payment.UpdatedAt = time.Now()
	cp := *payment
	return &cp, nil
}

func (f *fakePaymentsRepo) SetAgentBankDetails(ctx context.Context, id primitive.ObjectID, details *models.BankDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return models.NotFoundf("payment %s", id.Hex())
	}
	payment.AgentBankDetails = details
	return nil
}

func (f *fakePaymentsRepo) SetAdminPaymentDetails(ctx context.Context, id primitive.ObjectID, details *models.AdminPaymentDetails) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return nil, models.NotFoundf("payment %s", id.Hex())
	}
	payment.AdminPayment = details
	cp := *payment
	return &cp, nil
}

func (f *fakePaymentsRepo) DeletePaymentsByBooking(ctx context.Context, bookingId primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.payments {
		if p.BookingID == bookingId {
			delete(f.payments, id)
		}
	}
	return nil
}

type fakeChatsRepo struct {
	mu       sync.Mutex
	chats    map[primitive.ObjectID]*models.Chat
	messages map[primitive.ObjectID]*models.Message
}

func newFakeChatsRepo() *fakeChatsRepo {
	return &fakeChatsRepo{
		chats:    map[primitive.ObjectID]*models.Chat{},
		messages: map[primitive.ObjectID]*models.Message{},
	}
}

func (f *fakeChatsRepo) CreateOrGetChat(ctx context.Context, userId, agentId uuid.UUID) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.chats {
		if ch.UserID == userId && ch.AgentID == agentId {
			cp := *ch
			return &cp, nil
		}
	}
	chat := &models.Chat{
		ID:           primitive.NewObjectID(),
		UserID:       userId,
		AgentID:      agentId,
		Participants: []string{userId.String(), agentId.String()},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.chats[chat.ID] = chat
	cp := *chat
	return &cp, nil
}

func (f *fakeChatsRepo) GetChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[id]
	if !ok {
		return nil, models.NotFoundf("chat %s", id.Hex())
	}
	cp := *chat
	return &cp, nil
}

func (f *fakeChatsRepo) ListChats(ctx context.Context) ([]*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Chat{}
	for _, ch := range f.chats {
		cp := *ch
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeChatsRepo) ListChatsByParticipant(ctx context.Context, participant uuid.UUID) ([]*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Chat{}
	for _, ch := range f.chats {
		if ch.HasParticipant(participant) {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeChatsRepo) SetLastMessage(ctx context.Context, id primitive.ObjectID, text string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[id]
	if !ok {
		return models.NotFoundf("chat %s", id.Hex())
	}
	chat.LastMessage = text
	chat.LastMessageAt = &at
	return nil
}

func (f *fakeChatsRepo) DeleteChat(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.chats[id]; !ok {
		return models.NotFoundf("chat %s", id.Hex())
	}
	delete(f.chats, id)
	return nil
}

func (f *fakeChatsRepo) CreateMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	cp := *message
	f.messages[message.ID] = &cp
	return message, nil
}

func (f *fakeChatsRepo) GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message, ok := f.messages[id]
	if !ok {
		return nil, models.NotFoundf("message %s", id.Hex())
	}
	cp := *message
	return &cp, nil
}

func (f *fakeChatsRepo) ListMessagesByChat(ctx context.Context, chatId primitive.ObjectID, hiddenFor string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Message{}
	for _, m := range f.messages {
		if m.ChatID != chatId {
			continue
		}
		hidden := false
		for _, cleared := range m.ClearedFor {
			if cleared == hiddenFor {
				hidden = true
				break
			}
		}
		if !hidden {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeChatsRepo) UpdateMessageText(ctx context.Context, id primitive.ObjectID, text string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message, ok := f.messages[id]
	if !ok {
		return nil, models.NotFoundf("message %s", id.Hex())
	}
	message.Text = text
	now := time.Now()
	message.EditedAt = &now
	cp := *message
	return &cp, nil
}

func (f *fakeChatsRepo) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[id]; !ok {
		return models.NotFoundf("message %s", id.Hex())
	}
	delete(f.messages, id)
	return nil
}

func (f *fakeChatsRepo) DeleteMessagesByChat(ctx context.Context, chatId primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, m := range f.messages {
		if m.ChatID == chatId {
			delete(f.messages, id)
		}
	}
	return nil
}

func (f *fakeChatsRepo) ClearMessagesForUser(ctx context.Context, chatId primitive.ObjectID, userId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ChatID != chatId {
			continue
		}
		already := false
		for _, cleared := range m.ClearedFor {
			if cleared == userId {
				already = true
				break
			}
		}
		if !already {
			m.ClearedFor = append(m.ClearedFor, userId)
		}
	}
	return nil
}

// fakeProcessor is a scripted payment processor. Intents it creates are
// retrievable; retrieveStatus overrides the status the processor reports.
type fakeProcessor struct {
	mu             sync.Mutex
	createErr      error
	retrieveStatus payments.IntentStatus
	created        []*payments.Intent
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{retrieveStatus: payments.IntentStatusSucceeded}
}

func (f *fakeProcessor) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*payments.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	intent := &payments.Intent{
		ID:           "pi_" + primitive.NewObjectID().Hex(),
		ClientSecret: "secret_" + primitive.NewObjectID().Hex(),
		Status:       payments.IntentStatusProcessing,
	}
	f.created = append(f.created, intent)
	return intent, nil
}

func (f *fakeProcessor) RetrieveIntent(ctx context.Context, id string) (*payments.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, intent := range f.created {
		if intent.ID == id {
			return &payments.Intent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: f.retrieveStatus}, nil
		}
	}
	return nil, models.NotFoundf("intent %s", id)
}
