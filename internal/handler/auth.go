package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmendez/supercerca/internal/service"
)

// Token handles POST /auth/token
//
// Exchanges the admin API key (X-API-Key header) for a short-lived
// Bearer token accepted by the /admin endpoints.
//
// Response 200: {"token":"...","expires_in":900}
// Response 400: missing header. Response 401: wrong key.
// Response 503: token issuance not configured (no JWT secret).
func (h *Handler) Token(c *gin.Context) {
	apiKey := c.GetHeader("X-API-Key")
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-API-Key header is required"})
		return
	}

	token, err := h.auth.IssueToken(apiKey)
	switch {
	case errors.Is(err, service.ErrInvalidAPIKey):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	case errors.Is(err, service.ErrJWTSecretMissing):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token issuance not configured"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(h.auth.TokenTTL().Seconds()),
	})
}

// Refresh handles POST /admin/refresh
//
// Re-reads both catalog documents from disk. Guarded by JWTAuth.
//
// Response 200: {"raw_total":120,"normalized_total":118}
func (h *Handler) Refresh(c *gin.Context) {
	rawTotal, storeTotal := h.catalog.Reload()
	c.JSON(http.StatusOK, gin.H{
		"raw_total":        rawTotal,
		"normalized_total": storeTotal,
	})
}
