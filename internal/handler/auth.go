package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/pkg/jwt"
)

// AuthHandler issues and introspects access tokens. Token minting is gated on
// a shared access key; there is no user database behind it.
type AuthHandler struct {
	jwtSecret   string
	accessKey   string
	tokenExpire time.Duration
}

func NewAuthHandler(jwtSecret, accessKey string, tokenExpire time.Duration) *AuthHandler {
	return &AuthHandler{jwtSecret: jwtSecret, accessKey: accessKey, tokenExpire: tokenExpire}
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		UserID    string `json:"user_id" binding:"required"`
		Name      string `json:"name"`
		AccessKey string `json:"access_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, apperr.CodeValidation, "invalid request: "+err.Error())
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.AccessKey), []byte(h.accessKey)) != 1 {
		Error(c, http.StatusUnauthorized, 40102, "invalid access key")
		return
	}

	token, err := jwt.GenerateToken(h.jwtSecret, req.UserID, req.Name, h.tokenExpire)
	if err != nil {
		InternalError(c, "generate token: "+err.Error())
		return
	}
	Success(c, gin.H{
		"token":      token,
		"expires_in": int(h.tokenExpire.Seconds()),
	})
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	Success(c, gin.H{
		"user_id": c.GetString("userID"),
		"name":    c.GetString("userName"),
	})
}
