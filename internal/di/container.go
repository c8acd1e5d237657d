// Package di provides dependency injection configuration for the ThreadKeep server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/threadkeep/threadkeep-server/internal/auth"
	"github.com/threadkeep/threadkeep-server/internal/config"
	"github.com/threadkeep/threadkeep-server/internal/di/providers"
	"github.com/threadkeep/threadkeep-server/internal/logger"
	"github.com/threadkeep/threadkeep-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideViewStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideOwnershipGuard)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCharacterService)
	do.Provide(injector, providers.ProvideThreadService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideViewService)
	do.Provide(injector, providers.ProvideExportService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ViewStoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.OwnershipGuard](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.CharacterService](injector)
	_ = do.MustInvoke[*service.ThreadService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.ViewService](injector)
	_ = do.MustInvoke[*service.ExportService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
