package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-engine/internal/domain"
)

// writeError maps the engine error taxonomy to HTTP responses. Invalid,
// NotFound, and eligibility reasons are surfaced verbatim.
func writeError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		body := gin.H{"error": de.Message}
		if len(de.Fields) > 0 {
			body["missingFields"] = de.Fields
		}
		c.JSON(statusFor(de.Kind), body)
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidRequest, domain.KindEligibility:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindExternalFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
