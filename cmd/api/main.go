package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platefull/backend/config"
	"github.com/platefull/backend/internal/database"
	"github.com/platefull/backend/internal/server"
	"github.com/platefull/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	var imageStore service.ImageStore
	if cfg.S3Bucket != "" {
		s3Config, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to configure S3: %v", err)
		}
		imageStore = service.NewS3ImageStore(s3Config)
	} else {
		imageStore = service.NewDiskImageStore(cfg.MediaDir, "https://"+cfg.SiteDomain+"/media")
	}

	srv := server.New(cfg, db, redisClient, imageStore)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
