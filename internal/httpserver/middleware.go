package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/identity"
)

const (
	ctxIdentity = "identity"
	ctxStoreID  = "storeID"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// requireAuth verifies the bearer credential and stores the identity.
func (h *handlers) requireAuth(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	id, err := h.deps.Verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	c.Set(ctxIdentity, id)
	c.Next()
}

// optionalAuth verifies a credential when one is present but lets anonymous
// requests through; guest checkout decides later whether one was needed.
func (h *handlers) optionalAuth(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.Next()
		return
	}
	id, err := h.deps.Verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	c.Set(ctxIdentity, id)
	c.Next()
}

// requireSeller resolves the verified identity to its active store.
func (h *handlers) requireSeller(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	store, err := h.deps.Stores.GetActiveByOwner(c.Request.Context(), id.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}
		h.logger.Printf("seller lookup failed uid=%s error=%v", id.UID, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Set(ctxStoreID, store.ID)
	c.Next()
}

func callerIdentity(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}

func callerStoreID(c *gin.Context) string {
	return c.GetString(ctxStoreID)
}
