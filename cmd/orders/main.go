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
		orders    repository.OrderStore
		publisher events.Publisher
	)

	if cfg.LocalMode {
		logger.Info("Running in local mode: in-memory stores and broker")
		products = repository.NewMemoryProductStore()
		orders = repository.NewMemoryOrderStore()
		publisher = events.NewBroker()
	} else {
		dynamoClient, err := repository.NewDynamoDBClient(cfg)
		if err != nil {
			log.Fatal("Failed to create DynamoDB client:", err)
		}
		products = repository.NewProductRepository(dynamoClient, cfg.ProductTableName)
		orders = repository.NewOrderRepository(dynamoClient, cfg.OrderTableName)

		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	emitter := events.NewEmitter(publisher, logger)
	guard := stock.NewGuard(products, emitter, logger, cfg.ReserveMaxAttempts)
	orderService := service.NewOrderService(orders, products, guard, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Identity())

	router.POST("/orders", orderHandler.CreateOrder)
	router.GET("/orders/:id", orderHandler.ListOrders)
	router.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "order_service"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting order service", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down order service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
