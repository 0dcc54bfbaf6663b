/*
Package main is the entry point for the pairchat server.

It is responsible for loading configuration, initializing the global logging system,
connecting to the durable store and the pub/sub relay, starting the WebSocket Hub,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairchat/internal/app/broadcast"
	"pairchat/internal/app/chat"
	"pairchat/internal/app/convo"
	"pairchat/internal/app/friend"
	"pairchat/internal/app/storage"
	"pairchat/internal/app/store"
	"pairchat/internal/app/user"
	"pairchat/internal/configs"
	"pairchat/internal/handler"
	"pairchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("redis_addr", cfg.RedisAddr).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Redis: the durable store and the pub/sub relay share one client.
	redisStore, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logx.Fatal(err, "Failed to connect to Redis")
	}
	defer redisStore.Close()

	avatars, err := storage.NewAvatarStorage(storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize avatar storage")
	}

	// Wire the domain services.
	users := user.NewDirectory(redisStore)
	bcast := broadcast.NewRedisBroadcaster(redisStore.Client())
	graph := friend.NewGraph(redisStore, users, bcast)
	log := convo.NewLog(redisStore)
	chats := chat.NewService(log, graph, bcast, func(ctx context.Context, userID string) (string, error) {
		record, customErr := users.ByID(ctx, userID)
		if customErr != nil {
			return "", customErr
		}
		return record.Name, nil
	})

	// Start the fan-out hub.
	hub := broadcast.NewHub(redisStore.Client())
	go hub.Run()

	deps := &handler.AppDeps{
		Config:  cfg,
		Hub:     hub,
		Users:   users,
		Graph:   graph,
		Chats:   chats,
		Avatars: avatars,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("pairchat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
