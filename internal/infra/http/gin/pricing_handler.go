package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"travelquote/internal/app/dto"
	quotehandlers "travelquote/internal/app/handlers/quotes"
	"travelquote/internal/app/queries"
)

type PricingHandler struct {
	Queries  queries.Bus
	Currency string
}

func (h PricingHandler) Preview(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	base, err := req.base(h.Currency)
	if err != nil {
		writeError(c, err)
		return
	}
	trip, err := req.Trip.toTrip()
	if err != nil {
		writeError(c, err)
		return
	}
	query := quotehandlers.PremiumPreviewQuery{Base: base, Trip: trip}
	result, err := queries.Ask[quotehandlers.PremiumPreviewQuery, dto.PremiumPreview](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type ProviderHandler struct {
	Queries queries.Bus
}

func (h ProviderHandler) List(c *gin.Context) {
	result, err := queries.Ask[quotehandlers.ListProvidersQuery, []dto.Provider](c.Request.Context(), h.Queries, quotehandlers.ListProvidersQuery{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": result})
}

var (
	_ PricingHTTP  = PricingHandler{}
	_ ProviderHTTP = ProviderHandler{}
)
