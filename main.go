package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reactorviz/internal"
	"reactorviz/internal/config"
	"reactorviz/internal/container"
	"reactorviz/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if appConfig.Database.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := appContainer.InitWithDatabase(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
	}

	// Warm the cache so a broken spreadsheet fails at startup
	if _, err := appContainer.Pipeline.Dataset(context.Background()); err != nil {
		log.Fatalf("Failed to load %s: %v", appContainer.Source.Describe(), err)
	}

	server, err := ui.NewApp(ui.Config{
		Port:    appConfig.Server.Port,
		GinMode: appConfig.Server.GinMode,
	}, appContainer.UIServices(), logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
	if err := appContainer.Shutdown(ctx); err != nil {
		logger.Error("Container shutdown failed: %v", err)
	}
}
