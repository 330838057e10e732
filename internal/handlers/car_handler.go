package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
	"github.com/Onlinecarrental/final-project-sub000/internal/services"
)

func CreateCarHandler(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, agentId, ok := requesterClaims(c)
		if !ok {
			return
		}
		if !claims.IsAgent() && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("only agents can list cars for rent"))
			return
		}

		var car models.Car
		if err := c.ShouldBindJSON(&car); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := cs.CreateCar(c.Request.Context(), &car, agentId)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Car created successfully"))
	}
}

func ListCars(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cars, err := cs.ListCars(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(cars, ""))
	}
}

func GetCarByID(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid car ID format"))
			return
		}

		car, err := cs.GetCarByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(car, ""))
	}
}

func ListCarsByAgent(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentId, err := uuid.Parse(c.Param("agentId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid agent ID format"))
			return
		}

		cars, err := cs.ListCarsByAgent(c.Request.Context(), agentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(cars, ""))
	}
}

func UpdateCar(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, agentId, ok := requesterClaims(c)
		if !ok {
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid car ID format"))
			return
		}

		car, err := cs.GetCarByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if car.AgentID != agentId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("you can only edit your own cars"))
			return
		}

		var fields map[string]interface{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := cs.UpdateCar(c.Request.Context(), id, fields)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Car updated successfully"))
	}
}

func DeleteCar(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, agentId, ok := requesterClaims(c)
		if !ok {
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid car ID format"))
			return
		}

		car, err := cs.GetCarByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if car.AgentID != agentId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("you can only delete your own cars"))
			return
		}

		if err := cs.DeleteCar(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Car deleted successfully"))
	}
}
