package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arung-agamani/denpa-radio/internal/auth"
	"github.com/gin-gonic/gin"
)

// AuthHandlers exposes the operator login flow over HTTP.
type AuthHandlers struct {
	a *auth.Auth
}

func NewAuthHandlers(a *auth.Auth) *AuthHandlers {
	return &AuthHandlers{a: a}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) valid() bool {
	return len(r.Username) > 0 && len(r.Username) <= 256 &&
		len(r.Password) > 0 && len(r.Password) <= 256
}

// Login handles POST /api/auth/login, exchanging operator credentials for a
// bearer token the protected routes accept.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid credentials format"})
		return
	}

	token, err := h.a.Authenticate(req.Username, req.Password, c.Request.RemoteAddr)
	switch {
	case err == auth.ErrRateLimited:
		retry := int(h.a.RemainingLockout(c.Request.RemoteAddr).Seconds())
		slog.Warn("Login locked out", "remote", c.Request.RemoteAddr, "retry_after_s", retry)
		c.Header("Retry-After", fmt.Sprintf("%d", retry))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"status": "error",
			"error":  "too many login attempts, please try again later",
		})
		return
	case err != nil:
		slog.Warn("Failed login attempt", "remote", c.Request.RemoteAddr)
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid credentials"})
		return
	}

	slog.Info("operator logged in", "username", req.Username, "remote", c.Request.RemoteAddr)
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"token":    token,
		"username": req.Username,
	})
}

// VerifyToken handles GET /api/auth/verify; the auth middleware has already
// validated the token by the time this runs.
func (h *AuthHandlers) VerifyToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "token is valid"})
}
