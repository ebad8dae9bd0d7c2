package router

import (
	"github.com/oksasatya/go-marketplace-api/internal/application"
	"github.com/oksasatya/go-marketplace-api/internal/container"
	handlers "github.com/oksasatya/go-marketplace-api/internal/interface/http"
	"github.com/oksasatya/go-marketplace-api/internal/router/modules"
)

// InitModules builds the application services from the container
// singletons and registers every feature module. Call once during
// startup after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userSvc := application.NewUserService(
		container.GetUserRepo(),
		container.GetTokens(),
		container.GetRedis(),
		container.GetRabbitPub(),
		logger,
	)
	itemSvc := application.NewItemService(
		container.GetItemRepo(),
		container.GetUploads(),
		container.GetES(),
		cfg.ESItemsIndex,
		container.GetRabbitPub(),
		logger,
		!cfg.AuthDisabled,
	)

	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), userSvc))
	r.Add(modules.NewItemModule(handlers.NewItemHandler(itemSvc, logger), userSvc, container.GetTokens(), cfg.AuthDisabled, cfg.AuthRevalidate))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
