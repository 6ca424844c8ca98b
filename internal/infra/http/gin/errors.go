package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gearbook/internal/app/policies"
	domainavailability "gearbook/internal/domain/availability"
	domainitems "gearbook/internal/domain/items"
	domainpricing "gearbook/internal/domain/pricing"
	domainrental "gearbook/internal/domain/rental"
	domainrange "gearbook/internal/domain/shared/daterange"
	mongostore "gearbook/internal/infra/db/mongo"
)

// writeError maps application errors onto HTTP statuses. Unknown errors
// surface as 500 without leaking internals.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, policies.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, domainrental.ErrNotFound),
		errors.Is(err, domainitems.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domainavailability.ErrDateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "dates not available"})
	case errors.Is(err, domainrental.ErrInvalidTransition),
		errors.Is(err, mongostore.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainrental.ErrIncompleteInspection):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, policies.ErrPaymentProcessor),
		errors.Is(err, policies.ErrSettlement):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
	case errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainrental.ErrOwnRental),
		errors.Is(err, domainpricing.ErrNoRate),
		errors.Is(err, domainpricing.ErrBelowMinimum),
		errors.Is(err, domainpricing.ErrUnknownTier):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
