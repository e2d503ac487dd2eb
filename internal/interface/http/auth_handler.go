package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fraudwatch/internal/application"
	"github.com/oksasatya/fraudwatch/internal/domain/entity"
	"github.com/oksasatya/fraudwatch/internal/interface/middleware"
	"github.com/oksasatya/fraudwatch/pkg/helpers"
	"github.com/oksasatya/fraudwatch/pkg/response"
	"github.com/oksasatya/fraudwatch/pkg/validation"
)

// AuthUseCase is the slice of application.AuthService the handlers need.
type AuthUseCase interface {
	Register(ctx context.Context, in application.RegisterInput) (*application.AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*application.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
}

type AuthHandler struct {
	Svc     AuthUseCase
	Logger  logrus.FieldLogger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc AuthUseCase, logger logrus.FieldLogger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authResponse puts user and token next to the envelope fields instead of under data.
type authResponse struct {
	response.APIResponse[any]
	User  entity.PublicUser `json:"user"`
	Token string            `json:"token"`
}

const (
	msgSignupRequired = "Email, password and name are required"
	msgUserExists     = "User already exists"
	msgServerConfig   = "Server configuration error"
	msgSignupFailed   = "Failed to create account. Please try again later."
	msgSignupOK       = "User created successfully"

	msgSigninRequired = "Email and password are required"
	msgInvalidCreds   = "Invalid email or password"
	msgSigninFailed   = "An error occurred during sign in"
	msgSigninOK       = "Login successful"
)

// Signup POST /api/signup {email, password, name}
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, msgSignupRequired, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrValidation):
			response.Error[any](c, http.StatusBadRequest, msgSignupRequired, nil)
		case errors.Is(err, application.ErrUserExists):
			response.Error[any](c, http.StatusBadRequest, msgUserExists, nil)
		case errors.Is(err, application.ErrServerConfig):
			response.Error[any](c, http.StatusInternalServerError, msgServerConfig, nil)
		default:
			helpers.LogError(h.Logger, "signup failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
			response.Error[any](c, http.StatusInternalServerError, msgSignupFailed, nil)
		}
		return
	}

	h.respondAuth(c, http.StatusCreated, msgSignupOK, res)
}

// Signin POST /api/signin {email, password}
func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, msgSigninRequired, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrValidation):
			response.Error[any](c, http.StatusBadRequest, msgSigninRequired, nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error[any](c, http.StatusUnauthorized, msgInvalidCreds, nil)
		case errors.Is(err, application.ErrServerConfig):
			response.Error[any](c, http.StatusInternalServerError, msgServerConfig, nil)
		default:
			helpers.LogError(h.Logger, "signin failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
			response.Error[any](c, http.StatusInternalServerError, msgSigninFailed, nil)
		}
		return
	}

	h.respondAuth(c, http.StatusOK, msgSigninOK, res)
}

func (h *AuthHandler) respondAuth(c *gin.Context, status int, msg string, res *application.AuthResult) {
	h.Cookies.SetAccess(c, res.Token, res.ExpiresAt)
	c.JSON(status, authResponse{
		APIResponse: response.Envelope(c, status, true, msg),
		User:        res.User.Public(),
		Token:       res.Token,
	})
}

// Me GET /api/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		helpers.LogError(h.Logger, "load profile failed", err, logrus.Fields{"user_id": uid})
		response.Error[any](c, http.StatusInternalServerError, "failed to load profile", nil)
		return
	}
	response.Success(c, http.StatusOK, u.Public(), "profile", nil)
}

// Signout POST /api/signout
func (h *AuthHandler) Signout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}
