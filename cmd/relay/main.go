package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vjossaab/commercify-backend/internal/events"
	"github.com/Vjossaab/commercify-backend/internal/relay"
	"github.com/Vjossaab/commercify-backend/pkg/config"
	pkgtls "github.com/Vjossaab/commercify-backend/pkg/tls"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := relay.NewHub(logger, cfg.SendBufferSize)

	channels := []string{events.ChannelStockUpdates, events.ChannelProductUpdates}
	var sub events.Subscriber
	if cfg.LocalMode {
		logger.Warn("Running in local mode: in-process broker, no cross-process events")
		sub = events.NewBroker().Subscribe(channels...)
	} else {
		kafkaSub := events.NewKafkaSubscriber(cfg.KafkaBrokers, cfg.RelayGroupID, channels, logger)
		kafkaSub.Start(ctx)
		defer kafkaSub.Close()
		sub = kafkaSub
	}

	tlsProvider, err := pkgtls.NewProvider(ctx, cfg.TLS, logger)
	if err != nil {
		log.Fatal("Failed to load TLS config:", err)
	}
	defer tlsProvider.Close()

	rel := relay.NewRelay(sub, hub, logger)
	server := relay.NewServer(cfg.RelayAddr, hub, logger, cfg.ConnIdleTimeout, tlsProvider.ServerConfig())

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "event_relay"})
	})
	healthSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rel.Run(ctx) })
	g.Go(func() error { return server.Serve(ctx) })
	g.Go(func() error {
		logger.Info("Starting relay health endpoint", zap.String("port", cfg.Port))
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return healthSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Relay exited with error", zap.Error(err))
	}
	logger.Info("Relay exited")
}
