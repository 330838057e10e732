package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

// ChatService gates every chat operation on participation: a requester must
// be one of the two parties or an admin.
type ChatService struct {
	chats  models.ChatsRepo
	logger *slog.Logger
}

func NewChatService(chats models.ChatsRepo, logger *slog.Logger) *ChatService {
	return &ChatService{
		chats:  chats,
		logger: logger,
	}
}

func (cs *ChatService) CreateOrGetChat(ctx context.Context, userId, agentId uuid.UUID) (*models.Chat, error) {
	if userId == uuid.Nil || agentId == uuid.Nil {
		return nil, models.Validationf("both participants are required")
	}
	if userId == agentId {
		return nil, models.Validationf("a chat needs two distinct participants")
	}
	return cs.chats.CreateOrGetChat(ctx, userId, agentId)
}

func (cs *ChatService) ListChats(ctx context.Context, requesterId uuid.UUID, requesterRole string) ([]*models.Chat, error) {
	if requesterRole == models.RoleAdmin {
		return cs.chats.ListChats(ctx)
	}
	if requesterId == uuid.Nil {
		return nil, models.Validationf("requester id is required")
	}
	return cs.chats.ListChatsByParticipant(ctx, requesterId)
}

func (cs *ChatService) ListMessages(ctx context.Context, chatId primitive.ObjectID, requesterId uuid.UUID, requesterRole string) ([]*models.Message, error) {
	chat, err := cs.chats.GetChatByID(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(chat, requesterId, requesterRole); err != nil {
		return nil, err
	}

	return cs.chats.ListMessagesByChat(ctx, chatId, requesterId.String())
}

func (cs *ChatService) SendMessage(ctx context.Context, chatId primitive.ObjectID, senderId uuid.UUID, senderRole models.SenderRole, text string) (*models.Message, error) {
	if text == "" {
		return nil, models.Validationf("message text is required")
	}

	chat, err := cs.chats.GetChatByID(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(chat, senderId, string(senderRole)); err != nil {
		return nil, err
	}

	now := time.Now()
	message := &models.Message{
		ChatID:     chatId,
		SenderID:   senderId,
		SenderRole: senderRole,
		Text:       text,
		CreatedAt:  now,
	}

	created, err := cs.chats.CreateMessage(ctx, message)
	if err != nil {
		return nil, err
	}

	if err := cs.chats.SetLastMessage(ctx, chatId, text, now); err != nil {
		cs.logger.Warn("message stored but chat preview not updated",
			"chat_id", chatId.Hex(), "error", err)
	}

	return created, nil
}

// EditMessage rewrites the text. Only the original sender or an admin may
// edit.
func (cs *ChatService) EditMessage(ctx context.Context, messageId primitive.ObjectID, requesterId uuid.UUID, requesterRole, newText string) (*models.Message, error) {
	if newText == "" {
		return nil, models.Validationf("message text is required")
	}

	message, err := cs.chats.GetMessageByID(ctx, messageId)
	if err != nil {
		return nil, err
	}
	if message.SenderID != requesterId && requesterRole != models.RoleAdmin {
		return nil, models.Forbiddenf("only the sender or an admin can edit a message")
	}

	return cs.chats.UpdateMessageText(ctx, messageId, newText)
}

func (cs *ChatService) DeleteMessage(ctx context.Context, messageId primitive.ObjectID, requesterId uuid.UUID, requesterRole string) error {
	message, err := cs.chats.GetMessageByID(ctx, messageId)
	if err != nil {
		return err
	}
	if message.SenderID != requesterId && requesterRole != models.RoleAdmin {
		return models.Forbiddenf("only the sender or an admin can delete a message")
	}

	return cs.chats.DeleteMessage(ctx, messageId)
}

// ClearChat empties the conversation from the requester's point of view. An
// admin clear is a hard delete of every message; a participant clear only
// hides the history for that participant.
func (cs *ChatService) ClearChat(ctx context.Context, chatId primitive.ObjectID, requesterId uuid.UUID, requesterRole string) error {
	chat, err := cs.chats.GetChatByID(ctx, chatId)
	if err != nil {
		return err
	}
	if err := authorizeParticipant(chat, requesterId, requesterRole); err != nil {
		return err
	}

	if requesterRole == models.RoleAdmin {
		return cs.chats.DeleteMessagesByChat(ctx, chatId)
	}
	return cs.chats.ClearMessagesForUser(ctx, chatId, requesterId.String())
}

func (cs *ChatService) DeleteChat(ctx context.Context, chatId primitive.ObjectID, requesterId uuid.UUID, requesterRole string) error {
	chat, err := cs.chats.GetChatByID(ctx, chatId)
	if err != nil {
		return err
	}
	if err := authorizeParticipant(chat, requesterId, requesterRole); err != nil {
		return err
	}

	if err := cs.chats.DeleteMessagesByChat(ctx, chatId); err != nil {
		return err
	}
	return cs.chats.DeleteChat(ctx, chatId)
}

func authorizeParticipant(chat *models.Chat, requesterId uuid.UUID, requesterRole string) error {
	if requesterRole == models.RoleAdmin {
		return nil
	}
	if !chat.HasParticipant(requesterId) {
		return models.Forbiddenf("not a participant of this chat")
	}
	return nil
}
