package transport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/identity"
)

const contextUserKey = "session_user"

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// requireSession resolves the Authorization bearer token and stores
// the account on the request context.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			respondAppError(c, apperrors.NewUnauthorizedError("missing bearer token", nil))
			return
		}

		user, err := h.identity.Resolve(c.Request.Context(), token)
		if err != nil {
			respondAppError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Set("session_token", token)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func (h *Handler) register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	user, err := h.identity.Register(c.Request.Context(), req)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	session, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) logout(c *gin.Context) {
	if token, ok := c.Get("session_token"); ok {
		if t, ok := token.(string); ok {
			h.identity.Logout(t)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (h *Handler) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, sessionUser(c))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var upd identity.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	user, err := h.identity.UpdateProfile(c.Request.Context(), sessionUser(c).ID, upd)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
