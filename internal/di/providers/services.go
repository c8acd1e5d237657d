package providers

import (
	"github.com/samber/do/v2"

	"github.com/threadkeep/threadkeep-server/internal/auth"
	"github.com/threadkeep/threadkeep-server/internal/logger"
	"github.com/threadkeep/threadkeep-server/internal/service"
)

// ProvideOwnershipGuard provides the ownership guard shared by the business services.
func ProvideOwnershipGuard(i do.Injector) (*service.OwnershipGuard, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	viewHandle := do.MustInvoke[*ViewStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOwnershipGuard(storeHandle.Store, viewHandle.Store, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, log.Logger), nil
}

// ProvideCharacterService provides the character service.
func ProvideCharacterService(i do.Injector) (*service.CharacterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	guard := do.MustInvoke[*service.OwnershipGuard](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCharacterService(storeHandle.Store, guard, log.Logger), nil
}

// ProvideThreadService provides the thread service.
func ProvideThreadService(i do.Injector) (*service.ThreadService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	guard := do.MustInvoke[*service.OwnershipGuard](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewThreadService(storeHandle.Store, guard, log.Logger), nil
}

// ProvideTagService provides the tag and partner vocabulary service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideViewService provides the public view service.
func ProvideViewService(i do.Injector) (*service.ViewService, error) {
	viewHandle := do.MustInvoke[*ViewStoreHandle](i)
	guard := do.MustInvoke[*service.OwnershipGuard](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewViewService(viewHandle.Store, guard, log.Logger), nil
}

// ProvideExportService provides the spreadsheet export service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	threads := do.MustInvoke[*service.ThreadService](i)
	characters := do.MustInvoke[*service.CharacterService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(threads, characters, log.Logger), nil
}
