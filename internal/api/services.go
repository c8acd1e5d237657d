package api

import (
	"github.com/threadkeep/threadkeep-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Character *service.CharacterService
	Thread    *service.ThreadService
	Tag       *service.TagService
	View      *service.ViewService
	Export    *service.ExportService
}
