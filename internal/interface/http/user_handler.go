package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-marketplace-api/internal/application"
	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/interface/middleware"
	"github.com/oksasatya/go-marketplace-api/pkg/response"
	"github.com/oksasatya/go-marketplace-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// Register POST /user/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrUsernameTaken) {
			response.Error(c, http.StatusConflict, "username already taken", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error(c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"newUser": u}, "user registered")
}

// Login GET /user/login — runs behind the basic-auth gate; the resolved
// identity is read back from the request context.
func (h *UserHandler) Login(c *gin.Context) {
	u := &entity.User{
		ID:       c.GetInt64(middleware.CtxUserIDKey),
		Username: c.GetString(middleware.CtxUsernameKey),
		Email:    c.GetString(middleware.CtxEmailKey),
	}
	token, exp, err := h.Svc.Login(c.Request.Context(), u)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "token generation failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token, "expires_at": exp}, "login successful")
}

// ListUsers GET /user — diagnostic enumeration of registered users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list users failed")
		response.Error(c, http.StatusInternalServerError, "list users failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users}, "users")
}
