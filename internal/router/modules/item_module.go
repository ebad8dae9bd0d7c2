package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-marketplace-api/internal/application"
	handlers "github.com/oksasatya/go-marketplace-api/internal/interface/http"
	"github.com/oksasatya/go-marketplace-api/internal/interface/middleware"
	"github.com/oksasatya/go-marketplace-api/pkg/helpers"
)

// ItemModule wires the listing endpoints. Reads are public; mutations
// sit behind the bearer gate unless the deployment disables auth.
type ItemModule struct {
	Handler    *handlers.ItemHandler
	Users      *application.UserService
	Tokens     *helpers.TokenManager
	Disabled   bool // AUTH_DISABLED deployments skip the gate entirely
	Revalidate bool
}

func NewItemModule(h *handlers.ItemHandler, users *application.UserService, tm *helpers.TokenManager, disabled, revalidate bool) *ItemModule {
	return &ItemModule{Handler: h, Users: users, Tokens: tm, Disabled: disabled, Revalidate: revalidate}
}

func (m *ItemModule) Register(rg *gin.RouterGroup) {
	item := rg.Group("/item")

	item.GET("", m.Handler.List)
	item.GET("/search/:searchtype/:keyword", m.Handler.Search)
	item.GET("/:id", m.Handler.Get)

	gated := item.Group("")
	if !m.Disabled {
		gated.Use(middleware.BearerAuth(m.Tokens, m.Users, m.Revalidate))
	}
	{
		gated.POST("", m.Handler.Create)
		gated.PUT("/:id", m.Handler.Update)
		gated.DELETE("/:id", m.Handler.Delete)
	}
}
