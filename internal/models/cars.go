package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CarsColName = "cars"

type CarStatus string

const (
	CarStatusAvailable CarStatus = "available"
	CarStatusPending   CarStatus = "pending"
	CarStatusRented    CarStatus = "rented"
)

type Car struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID      uuid.UUID          `bson:"agent_id" json:"agent_id" validate:"required"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Model        string             `bson:"model" json:"model" validate:"required"`
	Year         int                `bson:"year" json:"year" validate:"required,min=1980"`
	LicensePlate string             `bson:"license_plate" json:"license_plate" validate:"required"`
	Color        string             `bson:"color" json:"color"`
	Seats        int                `bson:"seats" json:"seats" validate:"required,min=1,max=60"`
	Category     string             `bson:"category" json:"category"`
	Transmission string             `bson:"transmission" json:"transmission" validate:"omitempty,oneof=manual automatic"`
	FuelType     string             `bson:"fuel_type" json:"fuel_type"`
	RatePerDay   float64            `bson:"rate_per_day" json:"rate_per_day" validate:"required,gt=0"`
	RatePerHour  float64            `bson:"rate_per_hour" json:"rate_per_hour"`
	Images       []string           `bson:"images" json:"images"`
	// Cloudinary public ids, kept so media can be removed with the car.
	ImagePublicIDs []string  `bson:"image_public_ids,omitempty" json:"-"`
	Status         CarStatus `bson:"status" json:"status"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

func (c *Car) BeforeCreate() error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Status == "" {
		c.Status = CarStatusAvailable
	}
	return nil
}

// CarsRepo owns the cars collection. TransitionStatus is the only way to
// write Car.Status; it is reserved for the booking lifecycle.
type CarsRepo interface {
	CreateCar(ctx context.Context, car *Car) (*Car, error)
	GetCarByID(ctx context.Context, id primitive.ObjectID) (*Car, error)
	GetCarsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Car, error)
	ListCars(ctx context.Context) ([]*Car, error)
	ListCarsByAgent(ctx context.Context, agentId uuid.UUID) ([]*Car, error)
	UpdateCar(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Car, error)
	DeleteCar(ctx context.Context, id primitive.ObjectID) error
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []CarStatus, to CarStatus) error
}
