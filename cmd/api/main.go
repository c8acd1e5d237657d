// Package main provides the entry point for the ThreadKeep server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/threadkeep/threadkeep-server/internal/di"
	"github.com/threadkeep/threadkeep-server/internal/di/providers"
	"github.com/threadkeep/threadkeep-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The stores use wrapper types, so close them explicitly in case the
	// container missed them.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing database...")
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}

	if viewHandle, err := do.Invoke[*providers.ViewStoreHandle](injector); err == nil {
		log.Info("Closing view store...")
		if err := viewHandle.Shutdown(); err != nil {
			log.Error("Failed to close view store", "error", err)
		}
	}

	log.Info("All threads dropped. Goodbye.")
}
