package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/DevYoma/zora-be/internal/adapter/chain"
	"github.com/DevYoma/zora-be/internal/adapter/handler"
	"github.com/DevYoma/zora-be/internal/adapter/storage"
	"github.com/DevYoma/zora-be/internal/config"
	"github.com/DevYoma/zora-be/internal/core/service"
	"github.com/DevYoma/zora-be/internal/port"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.WithError(err).Fatal("failed to ping mysql")
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect redis")
	}
	logger.Info("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	var verifier port.ChainVerifier = chain.UnconfiguredVerifier{}
	if cfg.EthRPCURL != "" {
		ethVerifier, err := chain.NewEthereumVerifier(ctx, cfg.EthRPCURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect ethereum rpc")
		}
		defer ethVerifier.Close()
		verifier = ethVerifier
		logger.Info("connected to ethereum rpc")
	} else {
		logger.Warn("ETH_RPC_URL not set; proof-gated redemptions will fail")
	}

	var blobs port.BlobRepository
	if cfg.GCSBucket != "" {
		gcsClient, err := gcs.NewClient(ctx)
		if err != nil {
			logger.WithError(err).Warn("failed to init cloud storage; uploads disabled")
		} else {
			defer gcsClient.Close()
			blobs = storage.NewGCSAdapter(gcsClient, cfg.GCSBucket)
			logger.WithField("bucket", cfg.GCSBucket).Info("cloud storage ready")
		}
	}

	// Initialize services
	ticketService := service.NewTicketService(mysqlAdapter, redisAdapter, verifier, logger, cfg.EnforceOnePerBuyer)
	eventService := service.NewEventService(mysqlAdapter, redisAdapter, logger)

	// Initialize HTTP server
	router := mux.NewRouter()
	httpHandler := handler.NewHTTPHandler(ticketService, eventService, blobs, logger)
	httpHandler.Register(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: cors.AllowAll().Handler(router),
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}
