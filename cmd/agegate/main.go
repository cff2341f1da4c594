package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tg-agegate/internal/bot"
	"tg-agegate/internal/config"
	"tg-agegate/internal/crash"
	"tg-agegate/internal/handler"
	"tg-agegate/internal/logger"
	"tg-agegate/internal/storage"
)

func main() {
	defer crash.RecoverWithStackAndExit("main")

	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if cfg.Database.Enabled {
		if err := storage.Initialize(cfg); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		logger.Info("Database connection established")
	} else {
		logger.Info("Database support is disabled, policy state will not survive restarts")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	botService, server, err := bot.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}

	handler.Initialize(cfg)

	crash.SafeGoroutine("http-server", func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("HTTP server error: %v", err)
		}
	})

	// Give the server time to start
	time.Sleep(500 * time.Millisecond)
	logger.Info("HTTP server is ready, starting bot handler...")

	handler.SetupMessageHandlers(botService.Handler, botService.Bot)
	botService.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	logger.Infof("Received signal: %v, shutting down...", sig)

	// Let in-flight decisions run their side effects to completion
	done := make(chan struct{})
	go func() {
		handler.WaitForHandlers()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("All update handlers completed")
	case <-time.After(30 * time.Second):
		logger.Warning("Timeout waiting for update handlers, proceeding with shutdown")
	}

	botService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("HTTP server shutdown error: %v", err)
	}

	logger.Info("Server gracefully stopped")
}
