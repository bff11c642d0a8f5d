package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/middleware"
	"github.com/kendall-kelly/otica-api/services"
	"github.com/rs/zerolog/log"
)

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the request body for self-registration
type RegisterRequest struct {
	Name            string `json:"name" binding:"required,min=2"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Phone           string `json:"phone" binding:"omitempty,phone"`
	Address         string `json:"address"`
}

// ChangePasswordRequest represents the request body for changing the password
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required,min=6"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required,eqfield=NewPassword"`
}

// NewAuthService builds the auth service from the current configuration and database
func NewAuthService() (*services.AuthService, error) {
	tokens, err := services.NewTokenService(config.GetConfig())
	if err != nil {
		return nil, err
	}
	return services.NewAuthService(config.GetDB(), tokens), nil
}

func secureCookies() bool {
	cfg := config.GetConfig()
	return cfg != nil && cfg.IsProduction()
}

// Login handles POST /api/auth/login
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	auth, err := NewAuthService()
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := auth.Me(c.Request.Context(), session.User.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuthCookies(c, session, auth.Tokens(), secureCookies())
	respondMessage(c, http.StatusOK, gin.H{"user": user}, "Login realizado com sucesso")
}

// Register handles POST /api/auth/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	auth, err := NewAuthService()
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuthCookies(c, session, auth.Tokens(), secureCookies())
	respondMessage(c, http.StatusCreated, gin.H{"user": session.User}, "Conta criada com sucesso")
}

// Refresh handles POST /api/auth/refresh. A failed refresh clears both cookies.
func Refresh(c *gin.Context) {
	auth, err := NewAuthService()
	if err != nil {
		respondError(c, err)
		return
	}

	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	session, err := auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if _, ok := services.AsAppError(err); !ok {
			log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("Refresh failed")
		}
		middleware.ClearAuthCookies(c, secureCookies())
		respondError(c, services.ErrInvalidRefresh)
		return
	}

	middleware.SetAuthCookies(c, session, auth.Tokens(), secureCookies())
	respondMessage(c, http.StatusOK, gin.H{"user": session.User}, "Tokens renovados com sucesso")
}

// Me handles GET /api/auth/me
func Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	auth, err := NewAuthService()
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

// ChangePassword handles POST /api/auth/change-password. Every other session of the
// user is revoked and the caller receives a fresh pair of cookies.
func ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	auth, err := NewAuthService()
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuthCookies(c, session, auth.Tokens(), secureCookies())
	respondMessage(c, http.StatusOK, nil, "Senha alterada com sucesso")
}

// Logout handles POST /api/auth/logout. It always succeeds.
func Logout(c *gin.Context) {
	if auth, err := NewAuthService(); err == nil {
		refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
		if err := auth.Logout(c.Request.Context(), refreshToken); err != nil {
			log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("Failed to revoke session on logout")
		}
	}

	middleware.ClearAuthCookies(c, secureCookies())
	respondMessage(c, http.StatusOK, nil, "Logout realizado com sucesso")
}
