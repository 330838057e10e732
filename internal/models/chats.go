package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ChatsColName    = "chats"
	MessagesColName = "messages"
)

type SenderRole string

const (
	SenderRoleCustomer SenderRole = "customer"
	SenderRoleAgent    SenderRole = "agent"
	SenderRoleAdmin    SenderRole = "admin"
	SenderRoleSystem   SenderRole = "system"
)

// Chat is a two-party conversation between a customer and an agent. One chat
// exists per (user, agent) pair; CreateOrGetChat enforces that with an upsert.
type Chat struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        uuid.UUID          `bson:"user_id" json:"user_id"`
	AgentID       uuid.UUID          `bson:"agent_id" json:"agent_id"`
	Participants  []string           `bson:"participants" json:"participants"`
	LastMessage   string             `bson:"last_message,omitempty" json:"last_message,omitempty"`
	LastMessageAt *time.Time         `bson:"last_message_at,omitempty" json:"last_message_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasParticipant reports whether the given user id is one of the two parties.
func (ch *Chat) HasParticipant(id uuid.UUID) bool {
	return ch.UserID == id || ch.AgentID == id
}

type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID     primitive.ObjectID `bson:"chat_id" json:"chat_id"`
	SenderID   uuid.UUID          `bson:"sender_id" json:"sender_id"`
	SenderRole SenderRole         `bson:"sender_role" json:"sender_role"`
	Text       string             `bson:"text" json:"text"`
	// User ids the message is hidden from (per-user soft clear).
	ClearedFor []string   `bson:"cleared_for,omitempty" json:"-"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	EditedAt   *time.Time `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
}

func (m *Message) BeforeCreate() error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	return nil
}

type ChatsRepo interface {
	CreateOrGetChat(ctx context.Context, userId, agentId uuid.UUID) (*Chat, error)
	GetChatByID(ctx context.Context, id primitive.ObjectID) (*Chat, error)
	ListChats(ctx context.Context) ([]*Chat, error)
	ListChatsByParticipant(ctx context.Context, participant uuid.UUID) ([]*Chat, error)
	SetLastMessage(ctx context.Context, id primitive.ObjectID, text string, at time.Time) error
	DeleteChat(ctx context.Context, id primitive.ObjectID) error

	CreateMessage(ctx context.Context, message *Message) (*Message, error)
	GetMessageByID(ctx context.Context, id primitive.ObjectID) (*Message, error)
	ListMessagesByChat(ctx context.Context, chatId primitive.ObjectID, hiddenFor string) ([]*Message, error)
	UpdateMessageText(ctx context.Context, id primitive.ObjectID, text string) (*Message, error)
	DeleteMessage(ctx context.Context, id primitive.ObjectID) error
	DeleteMessagesByChat(ctx context.Context, chatId primitive.ObjectID) error
	ClearMessagesForUser(ctx context.Context, chatId primitive.ObjectID, userId string) error
}
