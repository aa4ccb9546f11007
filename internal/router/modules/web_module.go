package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/internal/application"
	handlers "github.com/oksasatya/go-session-auth/internal/interface/http"
	"github.com/oksasatya/go-session-auth/internal/interface/middleware"
)

// WebModule wires the HTML pages.
// Public: GET /, GET|POST /login, GET|POST /register
// Protected: GET /protected, GET|POST /logout, GET|POST /profile
type WebModule struct {
	Handler *handlers.WebHandler
	Auth    *application.Authenticator
	Logger  *logrus.Logger
}

func NewWebModule(h *handlers.WebHandler, auth *application.Authenticator, logger *logrus.Logger) *WebModule {
	return &WebModule{Handler: h, Auth: auth, Logger: logger}
}

func (m *WebModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Index)
	rg.GET("/login", m.Handler.LoginPage)
	rg.POST("/login", m.Handler.Login)
	rg.GET("/register", m.Handler.RegisterPage)
	rg.POST("/register", m.Handler.Register)

	auth := rg.Group("/")
	auth.Use(middleware.RequireLogin(m.Auth, m.Logger))
	{
		auth.GET("/protected", m.Handler.Protected)
		auth.GET("/logout", m.Handler.Logout)
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.ProfilePage)
		auth.POST("/profile", m.Handler.UpdateProfile)
	}
}
