package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/threadkeep/threadkeep-server/internal/api"
	"github.com/threadkeep/threadkeep-server/internal/config"
	"github.com/threadkeep/threadkeep-server/internal/logger"
	"github.com/threadkeep/threadkeep-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server with all routes configured.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	viewHandle := do.MustInvoke[*ViewStoreHandle](i)

	services := &api.Services{
		Auth:      do.MustInvoke[*service.AuthService](i),
		Character: do.MustInvoke[*service.CharacterService](i),
		Thread:    do.MustInvoke[*service.ThreadService](i),
		Tag:       do.MustInvoke[*service.TagService](i),
		View:      do.MustInvoke[*service.ViewService](i),
		Export:    do.MustInvoke[*service.ExportService](i),
	}

	handler := api.NewServer(cfg, storeHandle.Store, viewHandle.Store, services, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
