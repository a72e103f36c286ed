package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"notes-store/internal/config"
	"notes-store/internal/logger"
	"notes-store/internal/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "config.yml", "path to config file")
	flag.Parse()

	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to load .env")
	}

	appConfig, err := config.Load(*configFile)
	if err != nil {
		logrus.Fatalf("Error initializing config: %v", err)
	}

	if err := logger.Init(appConfig.Logger.Level, appConfig.Logger.Format); err != nil {
		logrus.Fatalf("Error initializing logger: %v", err)
	}

	srv, err := server.NewServer(appConfig)
	if err != nil {
		logrus.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Initialize(context.Background()); err != nil {
		logrus.Fatalf("Failed to initialize server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := srv.Start()

	select {
	case err := <-errChan:
		logrus.Errorf("Server error: %v", err)
	case sig := <-sigChan:
		logrus.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	}

	if err := srv.Shutdown(); err != nil {
		logrus.Errorf("Shutdown finished with error: %v", err)
		os.Exit(1)
	}

	logrus.Info("Notes Store stopped")
}
