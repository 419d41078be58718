package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	shippingsvc "storefront-engine/internal/service/shipping"
)

func (h *handlers) getShipping(c *gin.Context) {
	setting, err := h.deps.ShippingSvc.Settings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipping": setting})
}

func (h *handlers) updateShipping(c *gin.Context) {
	var req shippingsvc.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipping payload"})
		return
	}
	setting, err := h.deps.ShippingSvc.Update(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipping": setting})
}
