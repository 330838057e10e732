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

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	if err := booking.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare booking for creation: %w", err)
	}

	col, err := mdb.GetCollection(ctx, DBName, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to insert booking: %v", err)
	}

	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var booking Booking
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("booking %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to find booking: %v", err)
	}

	return &booking, nil
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{})
}

func (mdb *MongodbRepo) ListBookingsByAgent(ctx context.Context, agentId uuid.UUID) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{"agent_id": agentId})
}

func (mdb *MongodbRepo) ListBookingsByCustomer(ctx context.Context, customerId uuid.UUID) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{"customer_id": customerId})
}

func (mdb *MongodbRepo) findBookings(ctx context.Context, filter bson.M) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	bookings := []*Booking{}
	for cursor.Next(ctx) {
		var booking Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, fmt.Errorf("error decoding booking: %v", err)
		}
		bookings = append(bookings, &booking)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return bookings, nil
}

func (mdb *MongodbRepo) UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status BookingStatus) (*Booking, error) {
	return mdb.findOneBookingAndSet(ctx, id, bson.M{"status": status})
}

func (mdb *MongodbRepo) UpdateBookingPaymentStatus(ctx context.Context, id primitive.ObjectID, state PaymentState) error {
	_, err := mdb.findOneBookingAndSet(ctx, id, bson.M{"payment_status": state})
	return err
}

func (mdb *MongodbRepo) SetApprovalBankDetails(ctx context.Context, id primitive.ObjectID, details *BankDetails) (*Booking, error) {
	return mdb.findOneBookingAndSet(ctx, id, bson.M{"agent_approval_details": details})
}

func (mdb *MongodbRepo) SetBookingPayment(ctx context.Context, id, paymentId primitive.ObjectID) error {
	_, err := mdb.findOneBookingAndSet(ctx, id, bson.M{"payment_id": paymentId})
	return err
}

func (mdb *MongodbRepo) findOneBookingAndSet(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updated_at"] = time.Now()

	var updated Booking
	err = col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("booking %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to update booking: %v", err)
	}

	return &updated, nil
}

func (mdb *MongodbRepo) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, BookingsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %v", err)
	}
	if res.DeletedCount == 0 {
		return NotFoundf("booking %s", id.Hex())
	}
	return nil
}

// CarHasActiveBookings reports whether any non-rejected booking still
// references the car. Used to block car deletion.
func (mdb *MongodbRepo) CarHasActiveBookings(ctx context.Context, carId primitive.ObjectID) (bool, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}

	n, err := col.CountDocuments(ctx, bson.M{
		"car_id": carId,
		"status": bson.M{"$ne": BookingStatusRejected},
	})
	if err != nil {
		return false, fmt.Errorf("failed to count bookings: %v", err)
	}
	return n > 0, nil
}
