package handlers

import (
	"errors"
	"net/http"

	"bar_pos_backend/internal/services"
	"bar_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

func respondAuthError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", ""))
	case errors.Is(err, services.ErrDuplicateUser):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Username or email already taken.", err.Error()))
	case errors.Is(err, services.ErrInvalidRole):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid role.", err.Error()))
	case errors.Is(err, services.ErrInvalidRegistration):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid registration details.", err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, action, "Internal error"))
	}
}

// Register handles account creation.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	user, err := h.authService.RegisterUser(req)
	if err != nil {
		respondAuthError(c, err, "Failed to register user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles credential verification and token issuance.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	resp, err := h.authService.LoginUser(req)
	if err != nil {
		respondAuthError(c, err, "Failed to log in user.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfile returns the authenticated user's account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}
	id, ok := userID.(int64)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Invalid user context.", ""))
		return
	}

	user, err := h.authService.GetUserProfile(id)
	if err != nil {
		respondAuthError(c, err, "Failed to fetch profile.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUsers lists all accounts.
func (h *AuthHandler) GetUsers(c *gin.Context) {
	users, err := h.authService.GetUsers()
	if err != nil {
		respondAuthError(c, err, "Failed to fetch users.")
		return
	}
	c.JSON(http.StatusOK, users)
}

// DeleteUser removes an account.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid user ID")
		return
	}

	if err := h.authService.DeleteUser(id); err != nil {
		respondAuthError(c, err, "Failed to delete user.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
