package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/threadkeep/threadkeep-server/internal/config"
	"github.com/threadkeep/threadkeep-server/internal/logger"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
	"github.com/threadkeep/threadkeep-server/internal/store/views"
)

// StoreHandle wraps the relational store with Shutdownable for lifecycle management.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the sqlite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s, err := sqlite.Open(cfg.SQLitePath(), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Info("Database opened", "path", cfg.SQLitePath())
	return &StoreHandle{Store: s}, nil
}

// ViewStoreHandle wraps the public view document store with Shutdownable.
type ViewStoreHandle struct {
	*views.Store
}

// Shutdown implements do.Shutdownable.
func (h *ViewStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideViewStore provides the badger-backed public view store.
func ProvideViewStore(i do.Injector) (*ViewStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	s, err := views.Open(cfg.ViewStorePath(), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open view store: %w", err)
	}

	log.Info("View store opened", "path", cfg.ViewStorePath())
	return &ViewStoreHandle{Store: s}, nil
}
