package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

func TestCreateOrGetChatIsStable(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	customer := uuid.New()
	agent := uuid.New()

	first, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{customer.String(), agent.String()}, first.Participants)

	second, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateOrGetChatValidation(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	_, err := cs.CreateOrGetChat(context.Background(), uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, models.ErrValidation)

	same := uuid.New()
	_, err = cs.CreateOrGetChat(context.Background(), same, same)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSendAndListMessages(t *testing.T) {
	repo := newFakeChatsRepo()
	cs := NewChatService(repo, discardLogger())

	customer := uuid.New()
	agent := uuid.New()
	chat, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)

	sent, err := cs.SendMessage(context.Background(), chat.ID, customer, models.SenderRoleCustomer, "Is the car free this weekend?")
	require.NoError(t, err)
	assert.Equal(t, customer, sent.SenderID)

	_, err = cs.SendMessage(context.Background(), chat.ID, agent, models.SenderRoleAgent, "Yes, from Saturday morning.")
	require.NoError(t, err)

	messages, err := cs.ListMessages(context.Background(), chat.ID, customer, models.RoleCustomer)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	// The chat preview tracks the most recent message.
	updated, err := repo.GetChatByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yes, from Saturday morning.", updated.LastMessage)
	require.NotNil(t, updated.LastMessageAt)
}

func TestSendMessageRequiresParticipant(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	chat, err := cs.CreateOrGetChat(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)

	outsider := uuid.New()
	_, err = cs.SendMessage(context.Background(), chat.ID, outsider, models.SenderRoleCustomer, "hello")
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = cs.ListMessages(context.Background(), chat.ID, outsider, models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// Admins see everything.
	_, err = cs.ListMessages(context.Background(), chat.ID, outsider, models.RoleAdmin)
	assert.NoError(t, err)
}

func TestSendMessageEmptyText(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	customer := uuid.New()
	chat, err := cs.CreateOrGetChat(context.Background(), customer, uuid.New())
	require.NoError(t, err)

	_, err = cs.SendMessage(context.Background(), chat.ID, customer, models.SenderRoleCustomer, "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestEditMessagePermissions(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	customer := uuid.New()
	agent := uuid.New()
	chat, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)

	sent, err := cs.SendMessage(context.Background(), chat.ID, customer, models.SenderRoleCustomer, "original")
	require.NoError(t, err)

	// The other participant cannot edit it.
	_, err = cs.EditMessage(context.Background(), sent.ID, agent, models.RoleAgent, "tampered")
	assert.ErrorIs(t, err, models.ErrForbidden)

	// The sender can.
	edited, err := cs.EditMessage(context.Background(), sent.ID, customer, models.RoleCustomer, "corrected")
	require.NoError(t, err)
	assert.Equal(t, "corrected", edited.Text)
	require.NotNil(t, edited.EditedAt)

	// So can an admin.
	_, err = cs.EditMessage(context.Background(), sent.ID, uuid.New(), models.RoleAdmin, "moderated")
	assert.NoError(t, err)
}

func TestDeleteMessagePermissions(t *testing.T) {
	repo := newFakeChatsRepo()
	cs := NewChatService(repo, discardLogger())

	customer := uuid.New()
	agent := uuid.New()
	chat, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)

	sent, err := cs.SendMessage(context.Background(), chat.ID, customer, models.SenderRoleCustomer, "delete me")
	require.NoError(t, err)

	err = cs.DeleteMessage(context.Background(), sent.ID, agent, models.RoleAgent)
	assert.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, cs.DeleteMessage(context.Background(), sent.ID, customer, models.RoleCustomer))
	_, err = repo.GetMessageByID(context.Background(), sent.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// A participant clear hides history only for that participant; the other side
// keeps the conversation.
func TestClearChatPerParticipant(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	customer := uuid.New()
	agent := uuid.New()
	chat, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)

	_, err = cs.SendMessage(context.Background(), chat.ID, customer, models.SenderRoleCustomer, "one")
	require.NoError(t, err)
	_, err = cs.SendMessage(context.Background(), chat.ID, agent, models.SenderRoleAgent, "two")
	require.NoError(t, err)

	require.NoError(t, cs.ClearChat(context.Background(), chat.ID, customer, models.RoleCustomer))

	forCustomer, err := cs.ListMessages(context.Background(), chat.ID, customer, models.RoleCustomer)
	require.NoError(t, err)
	assert.Empty(t, forCustomer)

	forAgent, err := cs.ListMessages(context.Background(), chat.ID, agent, models.RoleAgent)
	require.NoError(t, err)
	assert.Len(t, forAgent, 2)
}

// An admin clear is a hard wipe for everyone.
func TestClearChatAdmin(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	customer := uuid.New()
	agent := uuid.New()
	chat, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)

	_, err = cs.SendMessage(context.Background(), chat.ID, customer, models.SenderRoleCustomer, "one")
	require.NoError(t, err)

	require.NoError(t, cs.ClearChat(context.Background(), chat.ID, uuid.New(), models.RoleAdmin))

	forAgent, err := cs.ListMessages(context.Background(), chat.ID, agent, models.RoleAgent)
	require.NoError(t, err)
	assert.Empty(t, forAgent)
}

// Messages sent after a clear are visible to the participant who cleared.
func TestClearChatThenNewMessages(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	customer := uuid.New()
	agent := uuid.New()
	chat, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)

	_, err = cs.SendMessage(context.Background(), chat.ID, customer, models.SenderRoleCustomer, "old")
	require.NoError(t, err)
	require.NoError(t, cs.ClearChat(context.Background(), chat.ID, customer, models.RoleCustomer))

	_, err = cs.SendMessage(context.Background(), chat.ID, agent, models.SenderRoleAgent, "new")
	require.NoError(t, err)

	forCustomer, err := cs.ListMessages(context.Background(), chat.ID, customer, models.RoleCustomer)
	require.NoError(t, err)
	require.Len(t, forCustomer, 1)
	assert.Equal(t, "new", forCustomer[0].Text)
}

func TestDeleteChatCascades(t *testing.T) {
	repo := newFakeChatsRepo()
	cs := NewChatService(repo, discardLogger())

	customer := uuid.New()
	agent := uuid.New()
	chat, err := cs.CreateOrGetChat(context.Background(), customer, agent)
	require.NoError(t, err)

	sent, err := cs.SendMessage(context.Background(), chat.ID, customer, models.SenderRoleCustomer, "bye")
	require.NoError(t, err)

	outsider := uuid.New()
	err = cs.DeleteChat(context.Background(), chat.ID, outsider, models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, cs.DeleteChat(context.Background(), chat.ID, customer, models.RoleCustomer))
	_, err = repo.GetChatByID(context.Background(), chat.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repo.GetMessageByID(context.Background(), sent.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListChatsByRole(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	customer := uuid.New()
	agentA := uuid.New()
	agentB := uuid.New()

	_, err := cs.CreateOrGetChat(context.Background(), customer, agentA)
	require.NoError(t, err)
	_, err = cs.CreateOrGetChat(context.Background(), uuid.New(), agentB)
	require.NoError(t, err)

	mine, err := cs.ListChats(context.Background(), customer, models.RoleCustomer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := cs.ListChats(context.Background(), uuid.New(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListMessagesMissingChat(t *testing.T) {
	cs := NewChatService(newFakeChatsRepo(), discardLogger())

	_, err := cs.ListMessages(context.Background(), primitive.NewObjectID(), uuid.New(), models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
