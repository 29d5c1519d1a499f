package handlers

import (
	"errors"
	"net/http"

	"todoapi/internal/auth"
	"todoapi/internal/dto"
	"todoapi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles register, login, logout and the current-user lookup.
type AuthHandler struct {
	tokens  *auth.Store
	userSvc *service.UserService
	log     zerolog.Logger
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(tokens *auth.Store, userSvc *service.UserService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, userSvc: userSvc, log: log}
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Credentials"
// @Success      201  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": dto.BindingErrors(err)})
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Username already taken"})
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"errors":  gin.H{"username": "The username and password fields are required."},
			})
			return
		}
		h.log.Error().Err(err).Msg("register user")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Registration failed"})
		return
	}
	h.issueToken(c, http.StatusCreated, user.ID, user.Username)
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": dto.BindingErrors(err)})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
			return
		}
		h.log.Error().Err(err).Msg("login user")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		return
	}
	h.issueToken(c, http.StatusOK, user.ID, user.Username)
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, ok := auth.BearerToken(c.GetHeader("Authorization")); ok {
		_ = h.tokens.Revoke(c.Request.Context(), token)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /user [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	user, err := h.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("fetch current user")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.UserResponse{ID: user.ID, Username: user.Username},
	})
}

func (h *AuthHandler) issueToken(c *gin.Context, status int, userID int64, username string) {
	token, err := h.tokens.Issue(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create token"})
		return
	}
	c.JSON(status, gin.H{
		"success": true,
		"data": gin.H{
			"user":  dto.UserResponse{ID: userID, Username: username},
			"token": token,
		},
	})
}
