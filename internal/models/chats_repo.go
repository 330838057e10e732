package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateOrGetChat upserts on the (user_id, agent_id) pair so a second call
// for the same pair always returns the existing conversation.
func (mdb *MongodbRepo) CreateOrGetChat(ctx context.Context, userId, agentId uuid.UUID) (*Chat, error) {
	col, err := mdb.GetCollection(ctx, DBName, ChatsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	filter := bson.M{"user_id": userId, "agent_id": agentId}
	update := bson.M{
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"user_id":      userId,
			"agent_id":     agentId,
			"participants": []string{userId.String(), agentId.String()},
			"created_at":   now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var chat Chat
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&chat); err != nil {
		return nil, fmt.Errorf("error upserting chat: %v", err)
	}

	return &chat, nil
}

func (mdb *MongodbRepo) GetChatByID(ctx context.Context, id primitive.ObjectID) (*Chat, error) {
	col, err := mdb.GetCollection(ctx, DBName, ChatsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var chat Chat
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&chat); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("chat %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to find chat: %v", err)
	}

	return &chat, nil
}

func (mdb *MongodbRepo) ListChats(ctx context.Context) ([]*Chat, error) {
	return mdb.findChats(ctx, bson.M{})
}

func (mdb *MongodbRepo) ListChatsByParticipant(ctx context.Context, participant uuid.UUID) ([]*Chat, error) {
	return mdb.findChats(ctx, bson.M{"participants": participant.String()})
}

func (mdb *MongodbRepo) findChats(ctx context.Context, filter bson.M) ([]*Chat, error) {
	col, err := mdb.GetCollection(ctx, DBName, ChatsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.M{"last_message_at": -1})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding chats: %v", err)
	}
	defer cursor.Close(ctx)

	chats := []*Chat{}
	for cursor.Next(ctx) {
		var chat Chat
		if err := cursor.Decode(&chat); err != nil {
			return nil, fmt.Errorf("error decoding chat: %v", err)
		}
		chats = append(chats, &chat)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return chats, nil
}

func (mdb *MongodbRepo) SetLastMessage(ctx context.Context, id primitive.ObjectID, text string, at time.Time) error {
	col, err := mdb.GetCollection(ctx, DBName, ChatsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"last_message":    text,
		"last_message_at": at,
		"updated_at":      at,
	}})
	if err != nil {
		return fmt.Errorf("failed to update chat: %v", err)
	}
	if res.MatchedCount == 0 {
		return NotFoundf("chat %s", id.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) DeleteChat(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, ChatsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete chat: %v", err)
	}
	if res.DeletedCount == 0 {
		return NotFoundf("chat %s", id.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) CreateMessage(ctx context.Context, message *Message) (*Message, error) {
	if err := message.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare message for creation: %w", err)
	}

	col, err := mdb.GetCollection(ctx, DBName, MessagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to insert message: %v", err)
	}

	return message, nil
}

func (mdb *MongodbRepo) GetMessageByID(ctx context.Context, id primitive.ObjectID) (*Message, error) {
	col, err := mdb.GetCollection(ctx, DBName, MessagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var message Message
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&message); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("message %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to find message: %v", err)
	}

	return &message, nil
}

// ListMessagesByChat returns the chat history oldest first, skipping messages
// the given user has cleared.
func (mdb *MongodbRepo) ListMessagesByChat(ctx context.Context, chatId primitive.ObjectID, hiddenFor string) ([]*Message, error) {
	col, err := mdb.GetCollection(ctx, DBName, MessagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"chat_id": chatId}
	if hiddenFor != "" {
		filter["cleared_for"] = bson.M{"$ne": hiddenFor}
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding messages: %v", err)
	}
	defer cursor.Close(ctx)

	messages := []*Message{}
	for cursor.Next(ctx) {
		var message Message
		if err := cursor.Decode(&message); err != nil {
			return nil, fmt.Errorf("error decoding message: %v", err)
		}
		messages = append(messages, &message)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return messages, nil
}

func (mdb *MongodbRepo) UpdateMessageText(ctx context.Context, id primitive.ObjectID, text string) (*Message, error) {
	col, err := mdb.GetCollection(ctx, DBName, MessagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	var updated Message
	err = col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"text": text, "edited_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("message %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to update message: %v", err)
	}

	return &updated, nil
}

func (mdb *MongodbRepo) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, MessagesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete message: %v", err)
	}
	if res.DeletedCount == 0 {
		return NotFoundf("message %s", id.Hex())
	}
	return nil
}

func (mdb *MongodbRepo) DeleteMessagesByChat(ctx context.Context, chatId primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, MessagesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.DeleteMany(ctx, bson.M{"chat_id": chatId}); err != nil {
		return fmt.Errorf("failed to delete messages: %v", err)
	}
	return nil
}

// ClearMessagesForUser hides every message in the chat from one user without
// touching what the other participant sees.
func (mdb *MongodbRepo) ClearMessagesForUser(ctx context.Context, chatId primitive.ObjectID, userId string) error {
	col, err := mdb.GetCollection(ctx, DBName, MessagesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = col.UpdateMany(
		ctx,
		bson.M{"chat_id": chatId},
		bson.M{"$addToSet": bson.M{"cleared_for": userId}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear messages: %v", err)
	}
	return nil
}
