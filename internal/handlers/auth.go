package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/taskpad/internal/dto"
	apierrors "github.com/yukikurage/taskpad/internal/errors"
	"github.com/yukikurage/taskpad/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService    *services.AuthService
	sessionService *services.SessionService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, sessionService *services.SessionService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
	}
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username        string `json:"username" binding:"required,min=3,max=50"`
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirmPassword" binding:"omitempty,eqfield=Password"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "", describeBindError(err))
		return
	}

	account, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.sessionService.Establish(c.Request.Context(), *account)
	c.JSON(http.StatusCreated, dto.ToAccountDTO(*account))
}

// Login checks credentials and makes the account the active session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required,min=3"`
		Password string `json:"password" binding:"required,min=6"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "", describeBindError(err))
		return
	}

	account, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.sessionService.Establish(c.Request.Context(), *account)
	c.JSON(http.StatusOK, dto.ToAccountDTO(*account))
}

// Logout ends the active session. The account's tasks stay in storage.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessionService.Clear(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentAccount returns the logged-in account.
func (h *AuthHandler) GetCurrentAccount(c *gin.Context) {
	account := h.sessionService.Current()
	if account == nil {
		apierrors.Unauthorized(c, apierrors.ErrCodeNoActiveSession, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountDTO(*account))
}

// UpdateProfile changes profile fields of the logged-in account.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	type UpdateProfileRequest struct {
		Email *string `json:"email" binding:"omitempty,email"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "", describeBindError(err))
		return
	}

	current := h.sessionService.Current()
	if current == nil {
		apierrors.Unauthorized(c, apierrors.ErrCodeNoActiveSession, "Not authenticated")
		return
	}

	account, err := h.authService.UpdateProfile(c.Request.Context(), current.Username, services.ProfilePatch{
		Email: req.Email,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.sessionService.Refresh(c.Request.Context(), *account)
	c.JSON(http.StatusOK, dto.ToAccountDTO(*account))
}

// ChangePassword replaces the password of the logged-in account.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "", describeBindError(err))
		return
	}

	current := h.sessionService.Current()
	if current == nil {
		apierrors.Unauthorized(c, apierrors.ErrCodeNoActiveSession, "Not authenticated")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), current.Username, req.CurrentPassword, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated",
	})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		apierrors.Conflict(c, apierrors.ErrCodeDuplicateUsername, "Username already exists")
	case errors.Is(err, services.ErrDuplicateEmail):
		apierrors.Conflict(c, apierrors.ErrCodeDuplicateEmail, "Email already registered")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrInvalidPassword):
		apierrors.Unauthorized(c, apierrors.ErrCodeInvalidCredentials, "Invalid password")
	default:
		respondStorageError(c, err)
	}
}
