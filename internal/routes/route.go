package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Onlinecarrental/final-project-sub000/internal/container"
	"github.com/Onlinecarrental/final-project-sub000/internal/handlers"
	"github.com/Onlinecarrental/final-project-sub000/internal/helpers"
	"github.com/Onlinecarrental/final-project-sub000/internal/middleware"
	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "carrental-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.CreateUser(container.UserService))
		v1.POST("/login", handlers.AuthenticateUser(container.UserService))
		v1.POST("/refresh", handlers.RefreshToken(container.UserService))
		v1.POST("/logout", handlers.Logout())

		// public catalog
		v1.GET("/cars", handlers.ListCars(container.CarService))
		v1.GET("/cars/:id", handlers.GetCarByID(container.CarService))
		v1.GET("/cars/:id/reviews", handlers.GetCarReviews(container.ContentService))
		v1.GET("/blogs", handlers.ListBlogs(container.ContentService))
		v1.GET("/blogs/:id", handlers.GetBlogByID(container.ContentService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.SupabaseClient, container.UserService, container.Logger))

	userRoutes := protected.Group("/users")
	{
		protected.GET("/profile", func(c *gin.Context) {
			user, exist := c.Get("user")
			if !exist {
				c.JSON(401, gin.H{"error": "Unauthorized"})
				return
			}

			enhancedClaims, ok := user.(*helpers.EnhancedClaims)
			if !ok {
				c.JSON(500, gin.H{"error": "Invalid user claims format"})
				return
			}

			c.JSON(200, gin.H{
				"status":   "OK",
				"user_id":  enhancedClaims.UserID,
				"email":    enhancedClaims.Email,
				"role":     enhancedClaims.Role,
				"username": enhancedClaims.Username,
				"is_admin": enhancedClaims.IsAdmin(),
			})
		})

		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
		userRoutes.POST("/avatar", handlers.UploadAvatar(container.UserService))
	}

	carRoutes := protected.Group("/cars")
	{
		carRoutes.POST("/", middleware.RequireRoles(models.RoleAgent, models.RoleAdmin), handlers.CreateCarHandler(container.CarService))
		carRoutes.GET("/agent/:agentId", handlers.ListCarsByAgent(container.CarService))
		carRoutes.PATCH("/:id", handlers.UpdateCar(container.CarService))
		carRoutes.DELETE("/:id", handlers.DeleteCar(container.CarService))
		carRoutes.POST("/:id/reviews", handlers.CreateReview(container.ContentService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("/", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("/", middleware.RequireRoles(models.RoleAdmin), handlers.ListBookings(container.BookingService))
		bookingRoutes.GET("/agent/:agentId", handlers.ListBookingsByAgent(container.BookingService))
		bookingRoutes.GET("/customer/:customerId", handlers.ListBookingsByCustomer(container.BookingService))
		bookingRoutes.PATCH("/:id/approve", middleware.RequireRoles(models.RoleAgent, models.RoleAdmin), handlers.ApproveBooking(container.BookingService))
		bookingRoutes.PATCH("/:id/reject", middleware.RequireRoles(models.RoleAgent, models.RoleAdmin), handlers.RejectBooking(container.BookingService))
		bookingRoutes.PATCH("/:id/payment-status", handlers.UpdateBookingPaymentStatus(container.BookingService))
		bookingRoutes.DELETE("/:id", handlers.DeleteBooking(container.BookingService))
		bookingRoutes.GET("/:id/receipt", handlers.BookingReceipt(container.BookingService, container.CarService, container.PaymentService))
	}

	paymentRoutes := protected.Group("/payments")
	{
		paymentRoutes.POST("/create-payment-intent", handlers.CreatePaymentIntent(container.PaymentService))
		paymentRoutes.POST("/confirm-payment", handlers.ConfirmPayment(container.PaymentService))
		paymentRoutes.GET("/admin/all", middleware.RequireRoles(models.RoleAdmin), handlers.GetAllPayments(container.PaymentService))
		paymentRoutes.GET("/:paymentId", handlers.GetPaymentDetails(container.PaymentService))
		paymentRoutes.POST("/booking/:bookingId/approve-with-bank-details", middleware.RequireRoles(models.RoleAgent, models.RoleAdmin), handlers.ApproveWithBankDetails(container.BookingService))

		adminOnly := middleware.RequireRoles(models.RoleAdmin)
		paymentRoutes.POST("/create-admin-payment-intent", adminOnly, handlers.CreateAdminPaymentIntent(container.PaymentService))
		paymentRoutes.POST("/:paymentId/admin-pay-agent-stripe", adminOnly, handlers.AdminPayAgentStripe(container.PaymentService))
		paymentRoutes.POST("/:paymentId/admin-pay-agent", adminOnly, handlers.AdminPayAgentManual(container.PaymentService))
	}

	chatRoutes := protected.Group("/chats")
	{
		chatRoutes.POST("/", handlers.CreateChat(container.ChatService))
		chatRoutes.GET("/", handlers.ListChats(container.ChatService))
		chatRoutes.GET("/:chatId/messages", handlers.ListMessages(container.ChatService))
		chatRoutes.POST("/messages", handlers.SendMessage(container.ChatService))
		chatRoutes.PATCH("/messages/:id", handlers.EditMessage(container.ChatService))
		chatRoutes.DELETE("/messages/:id", handlers.DeleteMessage(container.ChatService))
		chatRoutes.DELETE("/:id", handlers.DeleteChat(container.ChatService))
		chatRoutes.DELETE("/:id/messages", handlers.ClearChat(container.ChatService))
	}

	blogRoutes := protected.Group("/blogs")
	{
		blogRoutes.POST("/", handlers.CreateBlog(container.ContentService))
		blogRoutes.PATCH("/:id", handlers.UpdateBlog(container.ContentService))
		blogRoutes.DELETE("/:id", handlers.DeleteBlog(container.ContentService))
	}

	reviewRoutes := protected.Group("/reviews")
	{
		reviewRoutes.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), handlers.DeleteReview(container.ContentService))
	}

	return r
}
