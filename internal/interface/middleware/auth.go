package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/internal/application"
	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	"github.com/oksasatya/go-session-auth/pkg/response"
)

const ContextAccountKey = "account"

// LoginPath is where anonymous browsers are sent by RequireLogin.
const LoginPath = "/login"

// RequireLogin guards HTML routes. Anonymous visitors are redirected to the
// login page with the requested path in ?next=.
func RequireLogin(auth *application.Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := auth.RequireAuthenticated(c.Request.Context(), Session(c))
		if err != nil {
			if !errors.Is(err, application.ErrUnauthorized) && logger != nil {
				logger.WithError(err).WithField("path", c.Request.URL.Path).Error("load session identity")
			}
			target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Set(ContextAccountKey, acc)
		c.Next()
	}
}

// RequireLoginAPI guards JSON routes and answers 401 for anonymous callers.
func RequireLoginAPI(auth *application.Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := auth.RequireAuthenticated(c.Request.Context(), Session(c))
		if err != nil {
			if errors.Is(err, application.ErrUnauthorized) {
				response.Abort(c, http.StatusUnauthorized, "authentication required", nil)
				return
			}
			if logger != nil {
				logger.WithError(err).WithField("path", c.Request.URL.Path).Error("load session identity")
			}
			response.Abort(c, http.StatusInternalServerError, "internal error", nil)
			return
		}
		c.Set(ContextAccountKey, acc)
		c.Next()
	}
}

// CurrentAccount returns the account stored by RequireLogin or RequireLoginAPI.
func CurrentAccount(c *gin.Context) (*entity.Account, bool) {
	v, ok := c.Get(ContextAccountKey)
	if !ok {
		return nil, false
	}
	acc, ok := v.(*entity.Account)
	return acc, ok && acc != nil
}
