package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"academy/internal/infra/security"
	"academy/internal/infra/storage/memory"
)

type AuthHandler struct {
	Store  *memory.Academy
	Hasher security.BcryptHasher
	Tokens security.TokenIssuer
	Logger *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := h.Store.UserByEmail(strings.TrimSpace(req.Email))
	if err == nil {
		err = h.Hasher.Compare(user.PasswordHash, req.Password)
	}
	if err != nil {
		if !errors.Is(err, memory.ErrNotFound) && !errors.Is(err, security.ErrPasswordMismatch) && h.Logger != nil {
			h.Logger.Error("login failed", "error", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	token, expires, err := h.Tokens.Issue(user.ID.Hex(), user.Name)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("issue token", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expires.UTC().Format("2006-01-02T15:04:05.000Z"),
		"user":      renderUser(user),
	})
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	user, err := h.Store.UserByID(p.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": renderUser(user)})
}
