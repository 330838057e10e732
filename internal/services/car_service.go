package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Onlinecarrental/final-project-sub000/internal/cache"
	"github.com/Onlinecarrental/final-project-sub000/internal/connect"
	"github.com/Onlinecarrental/final-project-sub000/internal/helpers"
	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

type CarService struct {
	cars     models.CarsRepo
	bookings models.BookingsRepo
	cache    *cache.Cache
	logger   *slog.Logger
}

func NewCarService(cars models.CarsRepo, bookings models.BookingsRepo, c *cache.Cache, logger *slog.Logger) *CarService {
	return &CarService{
		cars:     cars,
		bookings: bookings,
		cache:    c,
		logger:   logger,
	}
}

func (cs *CarService) CreateCar(ctx context.Context, car *models.Car, agentId uuid.UUID) (*models.Car, error) {
	if agentId == uuid.Nil {
		return nil, models.Validationf("owning agent id is required")
	}
	car.AgentID = agentId

	if err := models.Validate.Struct(car); err != nil {
		return nil, models.Validationf("invalid car data: %v", err)
	}
	if len(car.Images) == 0 {
		return nil, models.Validationf("at least one car image is required")
	}

	urls, publicIDs, err := helpers.UploadImages(ctx, connect.Cld, car.Images, helpers.CarsFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images: %v", err)
	}
	car.Images = urls
	car.ImagePublicIDs = publicIDs

	now := time.Now()
	car.Status = models.CarStatusAvailable
	car.CreatedAt = now
	car.UpdatedAt = now

	created, err := cs.cars.CreateCar(ctx, car)
	if err != nil {
		// Creation failed after upload: drop the orphaned media.
		if delErr := helpers.DeleteImages(ctx, connect.Cld, publicIDs); delErr != nil {
			cs.logger.Warn("failed to clean up uploaded car images", "error", delErr)
		}
		return nil, err
	}

	cs.cache.Invalidate(ctx, cache.CarsListKey)
	return created, nil
}

func (cs *CarService) GetCarByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	var cached models.Car
	if cs.cache.GetJSON(ctx, cache.CarKey(id.Hex()), &cached) {
		return &cached, nil
	}

	car, err := cs.cars.GetCarByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cs.cache.SetJSON(ctx, cache.CarKey(id.Hex()), car)
	return car, nil
}

func (cs *CarService) ListCars(ctx context.Context) ([]*models.Car, error) {
	var cached []*models.Car
	if cs.cache.GetJSON(ctx, cache.CarsListKey, &cached) {
		return cached, nil
	}

	cars, err := cs.cars.ListCars(ctx)
	if err != nil {
		return nil, err
	}

	cs.cache.SetJSON(ctx, cache.CarsListKey, cars)
	return cars, nil
}

func (cs *CarService) ListCarsByAgent(ctx context.Context, agentId uuid.UUID) ([]*models.Car, error) {
	if agentId == uuid.Nil {
		return nil, models.Validationf("invalid agent id")
	}
	return cs.cars.ListCarsByAgent(ctx, agentId)
}

// UpdateCar applies a partial edit. When the update carries images, only the
// supplied slots are replaced; the new files are uploaded first and merged
// into the existing slot list.
func (cs *CarService) UpdateCar(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Car, error) {
	if images, ok := fields["images"].([]interface{}); ok {
		current, err := cs.cars.GetCarByID(ctx, id)
		if err != nil {
			return nil, err
		}

		merged := append([]string(nil), current.Images...)
		mergedIDs := append([]string(nil), current.ImagePublicIDs...)
		for slot, raw := range images {
			name, ok := raw.(string)
			if !ok || helpers.StringTrim(name) == "" {
				continue
			}
			urls, publicIDs, err := helpers.UploadImages(ctx, connect.Cld, []string{name}, helpers.CarsFolder)
			if err != nil {
				return nil, fmt.Errorf("failed to upload image: %v", err)
			}
			if slot < len(merged) {
				merged[slot] = urls[0]
				if slot < len(mergedIDs) {
					mergedIDs[slot] = publicIDs[0]
				} else {
					mergedIDs = append(mergedIDs, publicIDs[0])
				}
			} else {
				merged = append(merged, urls[0])
				mergedIDs = append(mergedIDs, publicIDs[0])
			}
		}
		fields["images"] = merged
		fields["image_public_ids"] = mergedIDs
	}

	updated, err := cs.cars.UpdateCar(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	cs.cache.Invalidate(ctx, cache.CarKey(id.Hex()), cache.CarsListKey)
	return updated, nil
}

func (cs *CarService) DeleteCar(ctx context.Context, id primitive.ObjectID) error {
	car, err := cs.cars.GetCarByID(ctx, id)
	if err != nil {
		return err
	}

	active, err := cs.bookings.CarHasActiveBookings(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return models.Conflictf("car %s has active bookings", id.Hex())
	}

	if err := cs.cars.DeleteCar(ctx, id); err != nil {
		return err
	}

	if len(car.ImagePublicIDs) > 0 {
		if err := helpers.DeleteImages(ctx, connect.Cld, car.ImagePublicIDs); err != nil {
			cs.logger.Warn("failed to delete car media", "car_id", id.Hex(), "error", err)
		}
	}

	cs.cache.Invalidate(ctx, cache.CarKey(id.Hex()), cache.CarsListKey)
	return nil
}
