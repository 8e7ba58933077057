package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	quotehandlers "travelquote/internal/app/handlers/quotes"
	quotesapp "travelquote/internal/app/quotes"
	"travelquote/internal/domain/pricing"
	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, quote.ErrNotFound), errors.Is(err, quotehandlers.ErrNoProviderQuote):
		return http.StatusNotFound
	case errors.Is(err, quote.ErrInvalidTransition),
		errors.Is(err, quote.ErrConcurrentUpdate),
		errors.Is(err, quotesapp.ErrSweepInProgress):
		return http.StatusConflict
	case errors.Is(err, quotesapp.ErrProviderUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pricing.ErrInvalidTrip),
		errors.Is(err, pricing.ErrNegativeBase),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, quote.ErrNegativePremium),
		errors.Is(err, quote.ErrProviderRequired):
		return http.StatusBadRequest
	case errors.Is(err, quote.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
