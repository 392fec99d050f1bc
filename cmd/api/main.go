package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/reefcloud/catalog-provision-service/internal/config"
	"github.com/reefcloud/catalog-provision-service/internal/db"
	"github.com/reefcloud/catalog-provision-service/internal/events"
	httpserver "github.com/reefcloud/catalog-provision-service/internal/http"
	"github.com/reefcloud/catalog-provision-service/internal/metrics"
	"github.com/reefcloud/catalog-provision-service/internal/models"
	"github.com/reefcloud/catalog-provision-service/internal/provision"
	"github.com/reefcloud/catalog-provision-service/internal/repository"
	"github.com/reefcloud/catalog-provision-service/internal/service"
)

func main() {
	log.Println("Starting Catalog Provision Service...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	cfg := config.Load()

	if err := db.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := db.NewPool(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Repositories
	orderItemRepo := repository.NewOrderItemRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	logRepo := repository.NewLogRepository(pool)

	// Status events (optional)
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Brokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(strings.Split(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("[main] Kafka status events enabled (topic=%s)", cfg.Kafka.Topic)
	}

	// Provisioning core
	registry := provision.NewRegistry()
	registry.Register(models.BackendManageIQ, provision.NewManageIQBackend(orderItemRepo, settingsRepo, cfg.DefaultURL))
	registry.Register(models.BackendAWSDatabase, provision.NewAWSDatabaseBackend(orderItemRepo, settingsRepo))
	registry.Register(models.BackendAWSStorage, provision.NewAWSStorageBackend(orderItemRepo, settingsRepo))

	provisionMetrics := metrics.NewProvisionMetrics()
	provisioner := provision.NewProvisioner(orderItemRepo, productRepo, registry, provisionMetrics, publisher)

	dispatcher := provision.NewDispatcher(provisioner, cfg.Provision.QueueSize,
		time.Duration(cfg.Provision.AttemptTimeout)*time.Second)
	dispatcher.Start(cfg.Provision.Workers)

	// Services and HTTP surface
	orderService := service.NewOrderService(orderItemRepo, productRepo, logRepo, dispatcher)
	server := httpserver.NewServer(cfg, pool, orderService)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("Server starting on %s", addr)
		if err := server.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting work, drain the provisioning queue.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down, draining provisioning workers...")
	dispatcher.Stop()
	log.Println("Server exited")
}
