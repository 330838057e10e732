package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ReviewsColName = "car_reviews"

type CarReview struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CarID     primitive.ObjectID `bson:"car_id" json:"car_id"`
	UserID    uuid.UUID          `bson:"user_id" json:"user_id"`
	Rating    int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (r *CarReview) BeforeCreate() error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	return nil
}

func (r CarReview) ValidateReview() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if r.UserID == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}
	if r.CarID.IsZero() {
		return fmt.Errorf("invalid car ID")
	}
	return nil
}

type ReviewsRepo interface {
	CreateReview(ctx context.Context, review *CarReview) (*CarReview, error)
	GetReviewsByCar(ctx context.Context, carId primitive.ObjectID) ([]*CarReview, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
}
