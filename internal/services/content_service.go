package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/helpers"
	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

// ContentService covers the data-entry surfaces: car reviews and blog posts.
type ContentService struct {
	reviews models.ReviewsRepo
	blogs   models.BlogsRepo
}

func NewContentService(reviews models.ReviewsRepo, blogs models.BlogsRepo) *ContentService {
	return &ContentService{
		reviews: reviews,
		blogs:   blogs,
	}
}

func (cs *ContentService) CreateReview(ctx context.Context, review *models.CarReview, userId uuid.UUID) (*models.CarReview, error) {
	review.UserID = userId
	review.Comment = helpers.StringTrim(review.Comment)

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	return cs.reviews.CreateReview(ctx, review)
}

func (cs *ContentService) GetReviewsByCar(ctx context.Context, carId primitive.ObjectID) ([]*models.CarReview, error) {
	return cs.reviews.GetReviewsByCar(ctx, carId)
}

func (cs *ContentService) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	return cs.reviews.DeleteReview(ctx, id)
}

func (cs *ContentService) CreateBlog(ctx context.Context, blog *models.Blog, authorId uuid.UUID) (*models.Blog, error) {
	if err := models.Validate.Struct(blog); err != nil {
		return nil, models.Validationf("invalid blog data: %v", err)
	}
	blog.AuthorID = authorId

	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	return cs.blogs.CreateBlog(ctx, blog)
}

func (cs *ContentService) GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return cs.blogs.GetBlogByID(ctx, id)
}

func (cs *ContentService) ListBlogs(ctx context.Context) ([]*models.Blog, error) {
	return cs.blogs.ListBlogs(ctx)
}

func (cs *ContentService) UpdateBlog(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Blog, error) {
	return cs.blogs.UpdateBlog(ctx, id, fields)
}

func (cs *ContentService) DeleteBlog(ctx context.Context, id primitive.ObjectID) error {
	return cs.blogs.DeleteBlog(ctx, id)
}
