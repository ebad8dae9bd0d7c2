package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-marketplace-api/internal/application"
	handlers "github.com/oksasatya/go-marketplace-api/internal/interface/http"
	"github.com/oksasatya/go-marketplace-api/internal/interface/middleware"
)

// UserModule wires the user endpoints.
// Public: POST /user/register, GET /user
// Basic-auth gated: GET /user/login
type UserModule struct {
	Handler *handlers.UserHandler
	Svc     *application.UserService
}

func NewUserModule(h *handlers.UserHandler, svc *application.UserService) *UserModule {
	return &UserModule{Handler: h, Svc: svc}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	{
		user.POST("/register", m.Handler.Register)
		user.GET("/login", middleware.BasicAuth(m.Svc), m.Handler.Login)
		user.GET("", m.Handler.ListUsers)
	}
}
