package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Onlinecarrental/final-project-sub000/internal/helpers"
	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

// respondError maps the service error taxonomy onto HTTP status codes and the
// shared response envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, models.ErrPaymentNotCompleted):
		status = http.StatusBadRequest
	}
	c.JSON(status, models.ErrorResponse(err.Error()))
}

// requesterClaims pulls the authenticated claims placed by AuthMiddleware.
func requesterClaims(c *gin.Context) (*helpers.EnhancedClaims, uuid.UUID, bool) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, uuid.Nil, false
	}

	claims, ok := userClaims.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user claims"))
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
		return nil, uuid.Nil, false
	}

	return claims, id, true
}
