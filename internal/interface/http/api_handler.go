package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/internal/application"
	"github.com/oksasatya/go-session-auth/internal/domain/entity"
	"github.com/oksasatya/go-session-auth/internal/interface/middleware"
	"github.com/oksasatya/go-session-auth/pkg/helpers"
	"github.com/oksasatya/go-session-auth/pkg/response"
	"github.com/oksasatya/go-session-auth/pkg/validation"
)

// APIHandler exposes the same flows as WebHandler as JSON under /api.
type APIHandler struct {
	Auth   *application.Authenticator
	Logger *logrus.Logger
}

func NewAPIHandler(auth *application.Authenticator, logger *logrus.Logger) *APIHandler {
	return &APIHandler{Auth: auth, Logger: logger}
}

type registerRequest struct {
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation"`
	FirstName            string `json:"first_name" binding:"max=100"`
	LastName             string `json:"last_name" binding:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
}

type AccountResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func toAccountResponse(a *entity.Account) *AccountResponse {
	if a == nil {
		return nil
	}
	return &AccountResponse{
		ID:          a.ID,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DisplayName: a.DisplayName(),
		CreatedAt:   a.CreatedAt,
		LastLogin:   a.LastLogin,
	}
}

func (h *APIHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	acc, err := h.Auth.Register(c.Request.Context(), middleware.Session(c), application.RegisterInput{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
	})
	if err != nil {
		count(statRegisterRejected)
		h.fail(c, "register", err)
		return
	}
	count(statRegistrations)
	response.Success(c, http.StatusCreated, toAccountResponse(acc), "registered", nil)
}

func (h *APIHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	acc, err := h.Auth.Login(c.Request.Context(), middleware.Session(c), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			count(statLoginFailures)
		}
		h.fail(c, "login", err)
		return
	}
	count(statLogins)
	response.Success(c, http.StatusOK, toAccountResponse(acc), "login successful", nil)
}

func (h *APIHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), middleware.Session(c)); err != nil {
		h.fail(c, "logout", err)
		return
	}
	count(statLogouts)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// Me reports the current identity; anonymous callers get data=null.
func (h *APIHandler) Me(c *gin.Context) {
	acc, err := h.Auth.CurrentIdentity(c.Request.Context(), middleware.Session(c))
	if err != nil {
		h.fail(c, "me", err)
		return
	}
	meta := gin.H{"authenticated": acc != nil}
	response.Success(c, http.StatusOK, toAccountResponse(acc), "ok", meta)
}

// GetProfile requires middleware.RequireLoginAPI.
func (h *APIHandler) GetProfile(c *gin.Context) {
	acc, _ := middleware.CurrentAccount(c)
	response.Success(c, http.StatusOK, toAccountResponse(acc), "ok", nil)
}

func (h *APIHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	acc, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.Session(c), application.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, application.ErrUpdateFailed) {
			count(statProfileFailures)
		}
		h.fail(c, opUpdateProfile, err)
		return
	}
	count(statProfileUpdates)
	response.Success(c, http.StatusOK, toAccountResponse(acc), "profile updated", nil)
}

const opUpdateProfile = "update profile"

// fail maps authentication outcomes to status codes. Anything unexpected is
// logged and reported without detail. A failed last_login write during login
// is an internal error, not a profile failure.
func (h *APIHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, application.ErrPasswordMismatch):
		response.Error[any](c, http.StatusBadRequest, msgPasswordMismatch, nil)
	case errors.Is(err, application.ErrInvalidAccountInput):
		response.Error[any](c, http.StatusBadRequest, "Email and password are required.", nil)
	case errors.Is(err, application.ErrEmailAlreadyRegistered):
		response.Error[any](c, http.StatusConflict, msgEmailTaken, nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, msgInvalidCredentials, nil)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
	case op == opUpdateProfile && errors.Is(err, application.ErrUpdateFailed):
		helpers.LogError(h.Logger, op, err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, msgUpdateFailed, nil)
	default:
		helpers.LogError(h.Logger, op, err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

// Health is a liveness probe.
func Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil)
}
