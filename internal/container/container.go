package container

import (
	"log/slog"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Onlinecarrental/final-project-sub000/internal/cache"
	"github.com/Onlinecarrental/final-project-sub000/internal/models"
	"github.com/Onlinecarrental/final-project-sub000/internal/payments"
	"github.com/Onlinecarrental/final-project-sub000/internal/services"
)

const listingCacheTTL = 5 * time.Minute

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client

	UserService    *services.UserService
	CarService     *services.CarService
	BookingService *services.BookingService
	PaymentService *services.PaymentService
	ChatService    *services.ChatService
	ContentService *services.ContentService
}

// NewContainer creates a new dependency injection container. redisClient may
// be nil, in which case listing caches are disabled.
func NewContainer(
	logger *slog.Logger,
	cloudinary *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	supaUrl, supaKey, stripeSecretKey string,
) *Container {
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	mongo := models.MongodbNewRepo(mongoDBClient)

	var listingCache *cache.Cache
	if redisClient != nil {
		listingCache = cache.New(redisClient, listingCacheTTL)
	}

	processor := payments.NewStripeProcessor(stripeSecretKey, 15*time.Second)

	userService := services.NewUserService(supa)
	carService := services.NewCarService(mongo, mongo, listingCache, logger)
	bookingService := services.NewBookingService(mongo, mongo, mongo, listingCache, logger)
	chatService := services.NewChatService(mongo, logger)
	paymentService := services.NewPaymentService(mongo, mongo, chatService, processor, logger)
	contentService := services.NewContentService(mongo, mongo)

	return &Container{
		Logger:         logger,
		Cloudinary:     cloudinary,
		SupabaseClient: supabaseClient,
		MongoDBClient:  mongoDBClient,
		UserService:    userService,
		CarService:     carService,
		BookingService: bookingService,
		PaymentService: paymentService,
		ChatService:    chatService,
		ContentService: contentService,
	}
}
