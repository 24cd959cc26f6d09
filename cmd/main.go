package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"courier/auth"
	"courier/infrastructure/web"
	"courier/internal"
	"courier/observability"
	"courier/repositories"
	"courier/runtime"
	"courier/runtime/workers"
	"courier/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.NewLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Live state: router, presence, registry
	router := runtime.NewRouter()
	presence := runtime.NewPresence()
	registry := runtime.NewRegistry(router, presence, log)

	// 4. Supervision, persistence, coordination
	sup := workers.NewSupervisor(log, config.RestartInterval)
	monitoring := observability.NewMonitoringManager()
	messageRepository := repositories.NewMessageRepository(db, log)
	coordinator := runtime.NewCoordinator(
		log, messageRepository, registry, router, sup, monitoring,
		config.MaxBodyLength, config.HistoryLimit,
		config.DeliveryTimeout, config.MailboxSize,
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Start the supervised workers
	sup.Add(workers.NewHeartbeatWorker(
		log, config.HeartbeatInterval, registry, router, presence, monitoring))
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()
	coordinator.Start(ctx)

	// 7. HTTP & WebSocket server
	chatService := services.NewChatService(registry, presence, coordinator)
	authValidator := auth.NewValidator(config.AuthSecret, config.AuthIssuer, config.AuthTokenDuration)
	server := web.NewServer(log, chatService, authValidator, monitoring, config.ConnectionBufferSize)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address)
		if err := server.Listen(address); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	if err := server.Shutdown(); err != nil {
		log.Warn("Server shutdown error", "error", err)
	}
	sup.Stop()
	// Room workers may still be mid-append; the database must not close
	// underneath them.
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
