package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	apigrpc "rentshare-backend/internal/api/grpc"
	httpapi "rentshare-backend/internal/api/http"
	"rentshare-backend/internal/app"
	"rentshare-backend/internal/config"
	"rentshare-backend/internal/logger"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentShare Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "database", cfg.Database.Database)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	router := httpapi.NewRouter(httpapi.Handlers{
		Items:    httpapi.NewItemHandler(application.Items, application.Bookings),
		Bookings: httpapi.NewBookingHandler(application.Bookings),
		Reviews:  httpapi.NewReviewHandler(application.Reviews),
		Users:    httpapi.NewUserHandler(application.Users),
	}, application.TokenManager, application.Store)

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Set up gRPC health server
	var health *apigrpc.HealthServer
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		health = apigrpc.NewHealthServer(application.Store, 0)
		go health.Watch(ctx)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := health.Server().Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	if health != nil {
		health.Server().GracefulStop()
	}
	logger.Info("Server stopped. Goodbye!")
}
