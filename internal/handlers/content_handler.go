package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/models"
	"github.com/Onlinecarrental/final-project-sub000/internal/services"
)

func CreateReview(cs *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		var review models.CarReview
		if err := c.ShouldBindJSON(&review); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		carId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid car ID format"))
			return
		}
		review.CarID = carId
		review.UserID = requesterId

		if err := review.ValidateReview(); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := cs.CreateReview(c.Request.Context(), &review, requesterId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, ""))
	}
}

func GetCarReviews(cs *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		carId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid car ID format"))
			return
		}

		reviews, err := cs.GetReviewsByCar(c.Request.Context(), carId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(reviews, ""))
	}
}

func DeleteReview(cs *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid review ID format"))
			return
		}

		if err := cs.DeleteReview(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Review deleted"))
	}
}

func CreateBlog(cs *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		var blog models.Blog
		if err := c.ShouldBindJSON(&blog); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := cs.CreateBlog(c.Request.Context(), &blog, requesterId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, ""))
	}
}

func ListBlogs(cs *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		blogs, err := cs.ListBlogs(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(blogs, ""))
	}
}

func GetBlogByID(cs *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid blog ID format"))
			return
		}

		blog, err := cs.GetBlogByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(blog, ""))
	}
}

func UpdateBlog(cs *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid blog ID format"))
			return
		}

		existing, err := cs.GetBlogByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if existing.AuthorID != requesterId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("only the author or an admin can update a blog post"))
			return
		}

		var body struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Image   string `json:"image"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		fields := map[string]interface{}{}
		if body.Title != "" {
			fields["title"] = body.Title
		}
		if body.Content != "" {
			fields["content"] = body.Content
		}
		if body.Image != "" {
			fields["image"] = body.Image
		}
		if len(fields) == 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("no fields to update"))
			return
		}

		updated, err := cs.UpdateBlog(c.Request.Context(), id, fields)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, ""))
	}
}

func DeleteBlog(cs *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, requesterId, ok := requesterClaims(c)
		if !ok {
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid blog ID format"))
			return
		}

		existing, err := cs.GetBlogByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if existing.AuthorID != requesterId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("only the author or an admin can delete a blog post"))
			return
		}

		if err := cs.DeleteBlog(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Blog deleted"))
	}
}
