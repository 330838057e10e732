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

func (mdb *MongodbRepo) CreateCar(ctx context.Context, car *Car) (*Car, error) {
	if err := car.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare car for creation: %w", err)
	}

	col, err := mdb.GetCollection(ctx, DBName, CarsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, car); err != nil {
		return nil, fmt.Errorf("failed to insert car: %v", err)
	}

	return car, nil
}

func (mdb *MongodbRepo) GetCarByID(ctx context.Context, id primitive.ObjectID) (*Car, error) {
	col, err := mdb.GetCollection(ctx, DBName, CarsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var car Car
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&car); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("car %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to find car: %v", err)
	}

	return &car, nil
}

func (mdb *MongodbRepo) GetCarsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Car, error) {
	out := make(map[primitive.ObjectID]*Car, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	col, err := mdb.GetCollection(ctx, DBName, CarsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding cars: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var car Car
		if err := cursor.Decode(&car); err != nil {
			return nil, fmt.Errorf("error decoding car: %v", err)
		}
		out[car.ID] = &car
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return out, nil
}

func (mdb *MongodbRepo) ListCars(ctx context.Context) ([]*Car, error) {
	return mdb.findCars(ctx, bson.M{})
}

func (mdb *MongodbRepo) ListCarsByAgent(ctx context.Context, agentId uuid.UUID) ([]*Car, error) {
	return mdb.findCars(ctx, bson.M{"agent_id": agentId})
}

func (mdb *MongodbRepo) findCars(ctx context.Context, filter bson.M) ([]*Car, error) {
	col, err := mdb.GetCollection(ctx, DBName, CarsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding cars: %v", err)
	}
	defer cursor.Close(ctx)

	cars := []*Car{}
	for cursor.Next(ctx) {
		var car Car
		if err := cursor.Decode(&car); err != nil {
			return nil, fmt.Errorf("error decoding car: %v", err)
		}
		cars = append(cars, &car)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return cars, nil
}

// UpdateCar applies a partial update of descriptive fields. Status is not a
// legal key here; it moves only through TransitionStatus.
func (mdb *MongodbRepo) UpdateCar(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Car, error) {
	if len(fields) == 0 {
		return nil, Validationf("no fields to update")
	}
	if _, ok := fields["status"]; ok {
		return nil, Validationf("car status cannot be updated directly")
	}

	col, err := mdb.GetCollection(ctx, DBName, CarsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updated_at"] = time.Now()

	var updated Car
	err = col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("car %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to update car: %v", err)
	}

	return &updated, nil
}

func (mdb *MongodbRepo) DeleteCar(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, CarsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete car: %v", err)
	}
	if res.DeletedCount == 0 {
		return NotFoundf("car %s", id.Hex())
	}
	return nil
}

// TransitionStatus performs a single conditional update on the car status.
// With a non-empty from set the write succeeds only while the car is still in
// one of those states, which is what keeps two concurrent booking requests
// from both claiming the same car.
func (mdb *MongodbRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []CarStatus, to CarStatus) error {
	col, err := mdb.GetCollection(ctx, DBName, CarsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}

	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("failed to transition car status: %v", err)
	}

	if res.MatchedCount == 0 {
		n, countErr := col.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && n == 0 {
			return NotFoundf("car %s", id.Hex())
		}
		return Conflictf("car %s is not in state %v", id.Hex(), from)
	}

	return nil
}
