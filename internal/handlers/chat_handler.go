package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
	"github.com/Onlinecarrental/final-project-sub000/internal/services"
)

func CreateChat(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		var body struct {
			UserID  string `json:"userId" binding:"required"`
			AgentID string `json:"agentId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		userId, err := uuid.Parse(body.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID format"))
			return
		}
		agentId, err := uuid.Parse(body.AgentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid agent ID format"))
			return
		}

		if requesterId != userId && requesterId != agentId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("you can only start chats you participate in"))
			return
		}

		chat, err := cs.CreateOrGetChat(c.Request.Context(), userId, agentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(chat, ""))
	}
}

func ListChats(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		chats, err := cs.ListChats(c.Request.Context(), requesterId, claims.GetSafeRole())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(chats, ""))
	}
}

func ListMessages(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		chatId, err := primitive.ObjectIDFromHex(c.Param("chatId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid chat ID format"))
			return
		}

		messages, err := cs.ListMessages(c.Request.Context(), chatId, requesterId, claims.GetSafeRole())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(messages, ""))
	}
}

func SendMessage(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, senderId, ok := requesterClaims(c)
		if !ok {
			return
		}

		var body struct {
			ChatID string `json:"chatId" binding:"required"`
			Text   string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		chatId, err := primitive.ObjectIDFromHex(body.ChatID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid chat ID format"))
			return
		}

		message, err := cs.SendMessage(c.Request.Context(), chatId, senderId, models.SenderRole(claims.GetSafeRole()), body.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(message, ""))
	}
}

func EditMessage(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		messageId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid message ID format"))
			return
		}

		var body struct {
			Text string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		message, err := cs.EditMessage(c.Request.Context(), messageId, requesterId, claims.GetSafeRole(), body.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(message, ""))
	}
}

func DeleteMessage(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		messageId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid message ID format"))
			return
		}

		if err := cs.DeleteMessage(c.Request.Context(), messageId, requesterId, claims.GetSafeRole()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Message deleted"))
	}
}

// ClearChat hides the conversation for the requester, or wipes it entirely
// when the requester is an admin.
func ClearChat(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		chatId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid chat ID format"))
			return
		}

		if err := cs.ClearChat(c.Request.Context(), chatId, requesterId, claims.GetSafeRole()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Chat cleared"))
	}
}

func DeleteChat(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		chatId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid chat ID format"))
			return
		}

		if err := cs.DeleteChat(c.Request.Context(), chatId, requesterId, claims.GetSafeRole()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Chat deleted"))
	}
}
