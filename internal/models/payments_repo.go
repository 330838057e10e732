package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreatePayment(ctx context.Context, payment *Payment) (*Payment, error) {
	if err := payment.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare payment for creation: %w", err)
	}

	col, err := mdb.GetCollection(ctx, DBName, PaymentsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to insert payment: %v", err)
	}

	return payment, nil
}

func (mdb *MongodbRepo) GetPaymentByID(ctx context.Context, id primitive.ObjectID) (*Payment, error) {
	col, err := mdb.GetCollection(ctx, DBName, PaymentsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var payment Payment
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&payment); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("payment %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to find payment: %v", err)
	}

	return &payment, nil
}

func (mdb *MongodbRepo) GetPaymentByBookingID(ctx context.Context, bookingId primitive.ObjectID) (*Payment, error) {
	col, err := mdb.GetCollection(ctx, DBName, PaymentsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var payment Payment
	err = col.FindOne(
		ctx,
		bson.M{"booking_id": bookingId},
		options.FindOne().SetSort(bson.M{"created_at": -1}),
	).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("payment for booking %s", bookingId.Hex())
		}
		return nil, fmt.Errorf("failed to find payment: %v", err)
	}

	return &payment, nil
}

func (mdb *MongodbRepo) ListPayments(ctx context.Context) ([]*Payment, error) {
	col, err := mdb.GetCollection(ctx, DBName, PaymentsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("error finding payments: %v", err)
	}
	defer cursor.Close(ctx)

	payments := []*Payment{}
	for cursor.Next(ctx) {
		var payment Payment
		if err := cursor.Decode(&payment); err != nil {
			return nil, fmt.Errorf("error decoding payment: %v", err)
		}
		payments = append(payments, &payment)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return payments, nil
}

func (mdb *MongodbRepo) SetPaymentIntent(ctx context.Context, id primitive.ObjectID, intentId string) error {
	_, err := mdb.findOnePaymentAndSet(ctx, id, bson.M{
		"stripe_payment_intent_id": intentId,
		"status":                   PaymentStatusProcessing,
	})
	return err
}

func (mdb *MongodbRepo) SetAdminPaymentIntent(ctx context.Context, id primitive.ObjectID, intentId string) error {
	_, err := mdb.findOnePaymentAndSet(ctx, id, bson.M{"admin_payment_intent_id": intentId})
	return err
}

func (mdb *MongodbRepo) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status PaymentStatus) (*Payment, error) {
	return mdb.findOnePaymentAndSet(ctx, id, bson.M{"status": status})
}

func (mdb *MongodbRepo) SetAgentBankDetails(ctx context.Context, id primitive.ObjectID, details *BankDetails) error {
	_, err := mdb.findOnePaymentAndSet(ctx, id, bson.M{"agent_bank_details": details})
	return err
}

func (mdb *MongodbRepo) SetAdminPaymentDetails(ctx context.Context, id primitive.ObjectID, details *AdminPaymentDetails) (*Payment, error) {
	return mdb.findOnePaymentAndSet(ctx, id, bson.M{"admin_payment_details": details})
}

func (mdb *MongodbRepo) findOnePaymentAndSet(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Payment, error) {
	col, err := mdb.GetCollection(ctx, DBName, PaymentsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updated_at"] = time.Now()

	var updated Payment
	err = col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundf("payment %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to update payment: %v", err)
	}

	return &updated, nil
}

func (mdb *MongodbRepo) DeletePaymentsByBooking(ctx context.Context, bookingId primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, PaymentsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.DeleteMany(ctx, bson.M{"booking_id": bookingId}); err != nil {
		return fmt.Errorf("failed to delete payments: %v", err)
	}
	return nil
}
