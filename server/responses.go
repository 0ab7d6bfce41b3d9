package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ovenworks/go-backoffice-auth/internal/errors"
	"github.com/rs/zerolog/log"
)

// respondError is the single place domain errors become HTTP statuses.
// Anything outside the domain set is logged and collapsed to a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errors.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": errors.ErrEmailTaken.Error()})
	case errors.Is(err, errors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrInvalidCredentials.Error()})
	case errors.Is(err, errors.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrInvalidToken.Error()})
	case errors.Is(err, errors.ErrResetTokenInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrResetTokenInvalid.Error()})
	case errors.Is(err, errors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": errors.ErrForbidden.Error()})
	case errors.Is(err, errors.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errors.ErrAccountNotFound.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
