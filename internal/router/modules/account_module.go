package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/internal/application"
	handlers "github.com/oksasatya/go-session-auth/internal/interface/http"
	"github.com/oksasatya/go-session-auth/internal/interface/middleware"
)

// AccountModule wires the JSON API.
// Public: POST /api/register, POST /api/login, POST /api/logout, GET /api/me
// Protected: GET /api/profile, PUT /api/profile
type AccountModule struct {
	Handler *handlers.APIHandler
	Auth    *application.Authenticator
	Logger  *logrus.Logger
}

func NewAccountModule(h *handlers.APIHandler, auth *application.Authenticator, logger *logrus.Logger) *AccountModule {
	return &AccountModule{Handler: h, Auth: auth, Logger: logger}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Handler.Register)
	rg.POST("/login", m.Handler.Login)
	rg.POST("/logout", m.Handler.Logout)
	rg.GET("/me", m.Handler.Me)

	auth := rg.Group("/")
	auth.Use(middleware.RequireLoginAPI(m.Auth, m.Logger))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
	}
}
