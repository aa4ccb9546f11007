package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/internal/application"
	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	"github.com/oksasatya/go-session-auth/internal/interface/middleware"
	"github.com/oksasatya/go-session-auth/pkg/helpers"
	"github.com/oksasatya/go-session-auth/pkg/validation"
)

// Messages shown inline on the HTML forms.
const (
	msgInvalidCredentials = "Invalid email or password."
	msgPasswordMismatch   = "Passwords do not match."
	msgEmailTaken         = "Email is already registered."
	msgUpdateFailed       = "Could not update profile."
	msgProfileUpdated     = "Profile updated."
	msgInternal           = "Something went wrong. Please try again."
	msgBadRequest         = "The form could not be read. Please try again."
)

// WebHandler serves the server-rendered pages.
type WebHandler struct {
	Auth   *application.Authenticator
	Logger *logrus.Logger
}

func NewWebHandler(auth *application.Authenticator, logger *logrus.Logger) *WebHandler {
	return &WebHandler{Auth: auth, Logger: logger}
}

type pageData struct {
	Title     string
	Error     string
	Notice    string
	Next      string
	Email     string
	FirstName string
	LastName  string
	Account   *entity.Account
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

type registerForm struct {
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required"`
	PasswordConfirm string `form:"password_confirm"`
	FirstName       string `form:"first_name" binding:"max=100"`
	LastName        string `form:"last_name" binding:"max=100"`
}

type profileForm struct {
	FirstName string `form:"first_name" binding:"max=100"`
	LastName  string `form:"last_name" binding:"max=100"`
}

func (h *WebHandler) Index(c *gin.Context) {
	acc, err := h.Auth.CurrentIdentity(c.Request.Context(), middleware.Session(c))
	if err != nil {
		h.logError(c, "load current identity", err)
	}
	c.HTML(http.StatusOK, "index.html", pageData{Title: "Home", Account: acc})
}

func (h *WebHandler) LoginPage(c *gin.Context) {
	if h.redirectIfAuthenticated(c) {
		return
	}
	c.HTML(http.StatusOK, "login.html", pageData{Title: "Log in", Next: safeNext(c.Query("next"))})
}

func (h *WebHandler) Login(c *gin.Context) {
	if h.redirectIfAuthenticated(c) {
		return
	}
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", pageData{Title: "Log in", Error: msgBadRequest})
		return
	}
	page := pageData{Title: "Log in", Email: form.Email, Next: safeNext(form.Next)}

	_, err := h.Auth.Login(c.Request.Context(), middleware.Session(c), form.Email, form.Password)
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		count(statLoginFailures)
		if h.Logger != nil {
			h.Logger.WithField("ip", c.GetString(middleware.ContextRealIPKey)).Info("login rejected")
		}
		page.Error = msgInvalidCredentials
		c.HTML(http.StatusOK, "login.html", page)
		return
	case err != nil:
		h.logError(c, "login", err)
		page.Error = msgInternal
		c.HTML(http.StatusInternalServerError, "login.html", page)
		return
	}

	count(statLogins)
	target := page.Next
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusFound, target)
}

func (h *WebHandler) RegisterPage(c *gin.Context) {
	if h.redirectIfAuthenticated(c) {
		return
	}
	c.HTML(http.StatusOK, "register.html", pageData{Title: "Register"})
}

func (h *WebHandler) Register(c *gin.Context) {
	if h.redirectIfAuthenticated(c) {
		return
	}
	var form registerForm
	bindErr := c.ShouldBind(&form)
	page := pageData{Title: "Register", Email: form.Email, FirstName: form.FirstName, LastName: form.LastName}

	// a mismatch is reported ahead of field validation
	if form.Password != form.PasswordConfirm {
		count(statRegisterRejected)
		page.Error = msgPasswordMismatch
		c.HTML(http.StatusOK, "register.html", page)
		return
	}
	if bindErr != nil {
		count(statRegisterRejected)
		page.Error = validation.Summary(validation.ToDetails(bindErr), "email", "password", "first_name", "last_name")
		c.HTML(http.StatusOK, "register.html", page)
		return
	}

	_, err := h.Auth.Register(c.Request.Context(), middleware.Session(c), application.RegisterInput{
		Email:                form.Email,
		Password:             form.Password,
		PasswordConfirmation: form.PasswordConfirm,
		FirstName:            form.FirstName,
		LastName:             form.LastName,
	})
	switch {
	case errors.Is(err, application.ErrPasswordMismatch):
		count(statRegisterRejected)
		page.Error = msgPasswordMismatch
	case errors.Is(err, application.ErrEmailAlreadyRegistered):
		count(statRegisterRejected)
		page.Error = msgEmailTaken
	case err != nil:
		h.logError(c, "register", err)
		page.Error = msgInternal
		c.HTML(http.StatusInternalServerError, "register.html", page)
		return
	default:
		count(statRegistrations)
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", page)
}

// Protected requires middleware.RequireLogin.
func (h *WebHandler) Protected(c *gin.Context) {
	acc, _ := middleware.CurrentAccount(c)
	c.String(http.StatusOK, "Hello, %s! You are logged in!", acc.Email)
}

func (h *WebHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), middleware.Session(c)); err != nil {
		h.logError(c, "logout", err)
	} else {
		count(statLogouts)
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *WebHandler) ProfilePage(c *gin.Context) {
	acc, _ := middleware.CurrentAccount(c)
	page := pageData{Title: "Profile", Account: acc, FirstName: acc.FirstName, LastName: acc.LastName}
	if c.Query("updated") != "" {
		page.Notice = msgProfileUpdated
	}
	c.HTML(http.StatusOK, "profile.html", page)
}

func (h *WebHandler) UpdateProfile(c *gin.Context) {
	acc, _ := middleware.CurrentAccount(c)
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "profile.html", pageData{
			Title:     "Profile",
			Account:   acc,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Error:     validation.Summary(validation.ToDetails(err), "first_name", "last_name"),
		})
		return
	}

	_, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.Session(c), application.ProfileInput{
		FirstName: &form.FirstName,
		LastName:  &form.LastName,
	})
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		c.Redirect(http.StatusFound, middleware.LoginPath)
		return
	case err != nil:
		count(statProfileFailures)
		h.logError(c, "update profile", err)
		c.HTML(http.StatusInternalServerError, "profile.html", pageData{
			Title:     "Profile",
			Account:   acc,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Error:     msgUpdateFailed,
		})
		return
	}
	count(statProfileUpdates)
	c.Redirect(http.StatusFound, "/profile?updated=1")
}

func (h *WebHandler) redirectIfAuthenticated(c *gin.Context) bool {
	acc, err := h.Auth.CurrentIdentity(c.Request.Context(), middleware.Session(c))
	if err != nil {
		h.logError(c, "load current identity", err)
		return false
	}
	if acc == nil {
		return false
	}
	c.Redirect(http.StatusFound, "/")
	return true
}

func (h *WebHandler) logError(c *gin.Context, msg string, err error) {
	helpers.LogError(h.Logger, msg, err, logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
	})
}

// safeNext keeps redirects on this site: only absolute paths, never "//host".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
