package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-service/internal/clients"
	"catalog-service/internal/config"
	"catalog-service/internal/events"
	"catalog-service/internal/handlers"
	"catalog-service/internal/importer"
	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
)

// @title Catalog Admin API
// @version 1.0.0
// @description Product catalog management service with AI-assisted spreadsheet import

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8087
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client (optional, caching and the import lock degrade
	// gracefully without it)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		} else {
			redisClient = redis.NewClient(redisOpts)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
				redisClient = nil
			} else {
				log.Println("✓ Redis connected successfully")
			}
			cancel()
		}
	} else {
		log.Println("REDIS_URL not set, caching disabled")
	}

	// Initialize repository
	catalogRepo := repository.NewCatalogRepository(db, redisClient)

	// Initialize event publisher only if NATS_URL is set
	eventsPublisher, err := events.NewPublisher(cfg.NATSUrl, logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
	} else if eventsPublisher != nil {
		log.Println("✓ Events publisher initialized (NATS connected)")
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	// Initialize the extraction client
	var extractor importer.Extractor
	geminiClient, err := clients.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		log.Printf("WARNING: %v (imports will fail until configured)", err)
		extractor = &clients.UnconfiguredExtractor{Reason: err.Error()}
	} else {
		extractor = geminiClient
		log.Println("✓ Gemini extraction client initialized")
	}

	engine := importer.NewEngine(catalogRepo, extractor, cfg.ExtractionBatchSize, logger)

	// Initialize handlers (events publisher may be nil if NATS not configured)
	productsHandler := handlers.NewProductsHandler(catalogRepo, eventsPublisher, cfg.DefaultPageSize, cfg.MaxPageSize)
	categoriesHandler := handlers.NewCategoriesHandler(catalogRepo, eventsPublisher)
	materialsHandler := handlers.NewMaterialsHandler(catalogRepo)
	dimensionsHandler := handlers.NewDimensionsHandler(catalogRepo)
	importHandler := handlers.NewImportHandler(catalogRepo, engine, eventsPublisher, logger)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AdminAuth(cfg.AdminToken))

	{
		products := api.Group("/products")
		{
			products.GET("", productsHandler.GetProducts)
			products.GET("/:id", productsHandler.GetProduct)
			products.POST("", productsHandler.CreateProduct)
			products.PUT("/:id", productsHandler.UpdateProduct)
			products.DELETE("/:id", productsHandler.DeleteProduct)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", categoriesHandler.GetCategories)
			categories.GET("/:id", categoriesHandler.GetCategory)
			categories.POST("", categoriesHandler.CreateCategory)
			categories.PUT("/:id", categoriesHandler.UpdateCategory)
			categories.DELETE("/:id", categoriesHandler.DeleteCategory)
		}

		materials := api.Group("/materials")
		{
			materials.GET("", materialsHandler.GetMaterials)
			materials.GET("/:id", materialsHandler.GetMaterial)
			materials.POST("", materialsHandler.CreateMaterial)
			materials.PUT("/:id", materialsHandler.UpdateMaterial)
			materials.DELETE("/:id", materialsHandler.DeleteMaterial)
		}

		dimensions := api.Group("/dimensions")
		{
			dimensions.GET("", dimensionsHandler.GetDimensions)
			dimensions.GET("/:id", dimensionsHandler.GetDimension)
			dimensions.POST("", dimensionsHandler.CreateDimension)
			dimensions.PUT("/:id", dimensionsHandler.UpdateDimension)
			dimensions.DELETE("/:id", dimensionsHandler.DeleteDimension)
		}

		imports := api.Group("/imports")
		{
			imports.GET("/template", importHandler.GetTemplate)
			imports.GET("/progress", importHandler.GetProgress)
			imports.POST("/preview", importHandler.Preview)
			imports.POST("", importHandler.Import)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8087"
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Catalog service stopped")
}
