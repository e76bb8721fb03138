package authHandler

import (
	"errors"
	"io"
	"net/http"

	"files-manager/internal/handler/respond"
	"files-manager/internal/model/apperr"
	"files-manager/internal/service"
	"files-manager/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func New(service *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: service}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Register handles POST /users.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, apperr.Validation("Invalid request body"))
		return
	}

	u, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse{ID: u.ID, Email: u.Email})
}

// Connect handles GET /connect with Basic credentials and returns a session token.
func (h *AuthHandler) Connect(c *gin.Context) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		respond.Error(c, apperr.Unauthorized("Unauthorized"))
		return
	}

	token, err := h.authService.Connect(c.Request.Context(), email, password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Disconnect handles GET /disconnect behind RequireSession.
func (h *AuthHandler) Disconnect(c *gin.Context) {
	if err := h.authService.RevokeSession(c.Request.Context(), middleware.Token(c)); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /users/me behind RequireSession.
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.authService.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{ID: u.ID, Email: u.Email})
}
