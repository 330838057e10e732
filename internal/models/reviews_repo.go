package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateReview(ctx context.Context, review *CarReview) (*CarReview, error) {
	if err := review.ValidateReview(); err != nil {
		return nil, Validationf("invalid review data: %v", err)
	}
	if err := review.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare review for creation: %w", err)
	}

	col, err := mdb.GetCollection(ctx, DBName, ReviewsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to insert review: %v", err)
	}

	return review, nil
}

func (mdb *MongodbRepo) GetReviewsByCar(ctx context.Context, carId primitive.ObjectID) ([]*CarReview, error) {
	col, err := mdb.GetCollection(ctx, DBName, ReviewsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"car_id": carId}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("error finding reviews: %v", err)
	}
	defer cursor.Close(ctx)

	reviews := []*CarReview{}
	for cursor.Next(ctx) {
		var review CarReview
		if err := cursor.Decode(&review); err != nil {
			return nil, fmt.Errorf("error decoding review: %v", err)
		}
		reviews = append(reviews, &review)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return reviews, nil
}

func (mdb *MongodbRepo) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, ReviewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %v", err)
	}
	if res.DeletedCount == 0 {
		return NotFoundf("review %s", id.Hex())
	}
	return nil
}
