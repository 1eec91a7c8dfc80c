package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/okaneren/inkpost/internal/auditlog"
	"github.com/okaneren/inkpost/internal/config"
	"github.com/okaneren/inkpost/internal/database"
	"github.com/okaneren/inkpost/internal/handler"
	"github.com/okaneren/inkpost/internal/middleware"
	"github.com/okaneren/inkpost/internal/models"
	"github.com/okaneren/inkpost/internal/repository"
	"github.com/okaneren/inkpost/internal/service"
	"github.com/okaneren/inkpost/internal/storage"
	"github.com/okaneren/inkpost/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	isProduction := cfg.Environment == "production"
	if err := logger.Init(!isProduction); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Database connection is acquired once and injected; a failure here
	// stops the process instead of limping along with a disconnected flag.
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize audit log
	audit, err := auditlog.New(cfg.AuditLogPath)
	if err != nil {
		log.Fatalf("Failed to initialize audit log: %v", err)
	}
	defer audit.Close()

	// Initialize media store for post uploads
	media, err := storage.NewMediaStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	// Initialize Redis for rate limiting
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, audit, cfg.JWTSecret, cfg.JWTExpiry)
	postService := service.NewPostService(postRepo, audit)
	commentService := service.NewCommentService(commentRepo, audit)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	postHandler := handler.NewPostHandler(postService, media)
	commentHandler := handler.NewCommentHandler(commentService)

	// Setup Gin router
	router := gin.Default()
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(isProduction))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Uploaded media
	router.Static("/images", media.Dir())

	api := router.Group("/api")

	// Public routes (rate limited)
	public := api.Group("/")
	public.Use(rateLimiter.Middleware())
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
	}

	// Comment listing stays readable without a token
	api.GET("/posts/:postId/comments", commentHandler.List)

	// Protected routes (require JWT)
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/users", middleware.RequireRole(models.RoleAdmin), userHandler.List)
		protected.GET("/users/:userId", userHandler.GetByID)
		protected.DELETE("/users", middleware.RequireRole(models.RoleAdmin), userHandler.Delete)
		protected.GET("/user", userHandler.GetSelf)
		protected.PATCH("/user", userHandler.UpdateSelf)

		protected.GET("/posts", postHandler.List)
		protected.GET("/posts/user", postHandler.ListMine)
		protected.GET("/post/:slug", postHandler.GetBySlug)
		protected.POST("/posts", postHandler.Create)

		protected.POST("/posts/:postId/comments", commentHandler.Add)
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
