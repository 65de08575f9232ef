package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/events"
	"github.com/Vjossaab/commercify-backend/internal/handler"
	"github.com/Vjossaab/commercify-backend/internal/repository"
	"github.com/Vjossaab/commercify-backend/internal/service"
	"github.com/Vjossaab/commercify-backend/internal/stock"
	"github.com/Vjossaab/commercify-backend/pkg/config"
	"github.com/Vjossaab/commercify-backend/pkg/middleware"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	var (
		products  repository.ProductStore
		publisher events.Publisher
	)

	if cfg.LocalMode {
		logger.Info("Running in local mode: in-memory store and broker")
		products = repository.NewMemoryProductStore()
		publisher = events.NewBroker()
	} else {
		dynamoClient, err := repository.NewDynamoDBClient(cfg)
		if err != nil {
			log.Fatal("Failed to create DynamoDB client:", err)
		}
		products = repository.NewProductRepository(dynamoClient, cfg.ProductTableName)

		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	emitter := events.NewEmitter(publisher, logger)
	guard := stock.NewGuard(products, emitter, logger, cfg.ReserveMaxAttempts)
	catalogService := service.NewCatalogService(products, guard, emitter, logger)
	productHandler := handler.NewProductHandler(catalogService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Identity())

	router.GET("/products", productHandler.ListProducts)
	router.GET("/products/:id", productHandler.GetProduct)
	router.POST("/products", productHandler.CreateProduct)
	router.PUT("/products/:id", productHandler.UpdateProduct)
	router.DELETE("/products/:id", productHandler.DeleteProduct)
	router.POST("/stock/:id", productHandler.SetStock)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "catalog_service"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting catalog service", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down catalog service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
