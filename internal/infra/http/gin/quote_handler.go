package ginserver

import (
	"iter"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"travelquote/internal/app/commands"
	"travelquote/internal/app/dto"
	quotehandlers "travelquote/internal/app/handlers/quotes"
	"travelquote/internal/app/queries"
	"travelquote/internal/domain/quote"
)

type QuoteHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Currency string
}

// Stream emits every available quote as a server-sent event, then a final
// "done" event. The request context bounds the aggregation.
func (h QuoteHandler) Stream(c *gin.Context) {
	seq, err := queries.Ask[quotehandlers.StreamQuotesQuery, iter.Seq[dto.Quote]](c.Request.Context(), h.Queries, quotehandlers.StreamQuotesQuery{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	sent := 0
	for q := range seq {
		c.SSEvent("quote", q)
		c.Writer.Flush()
		sent++
	}
	if c.Request.Context().Err() != nil {
		return
	}
	c.SSEvent("done", gin.H{"count": sent})
	c.Writer.Flush()
}

func (h QuoteHandler) ByProvider(c *gin.Context) {
	query := quotehandlers.ProviderQuoteQuery{ProviderID: c.Param("providerId")}
	result, err := queries.Ask[quotehandlers.ProviderQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) Select(c *gin.Context) {
	id, ok := quoteID(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[quotehandlers.SelectQuoteCommand, dto.Quote](c.Request.Context(), h.Commands, quotehandlers.SelectQuoteCommand{ID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) Reject(c *gin.Context) {
	id, ok := quoteID(c)
	if !ok {
		return
	}
	var req rejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd := quotehandlers.RejectQuoteCommand{ID: id, Reason: req.Reason}
	result, err := commands.Dispatch[quotehandlers.RejectQuoteCommand, dto.Quote](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) Statistics(c *gin.Context) {
	result, err := queries.Ask[quotehandlers.StatisticsQuery, dto.Statistics](c.Request.Context(), h.Queries, quotehandlers.StatisticsQuery{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) Issue(c *gin.Context) {
	var req issueRequest
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
	cmd := quotehandlers.IssueQuoteCommand{ProviderID: req.ProviderID, Reference: req.Reference, Base: base, Trip: trip}
	result, err := commands.Dispatch[quotehandlers.IssueQuoteCommand, dto.Quote](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func quoteID(c *gin.Context) (quote.ID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
		return 0, false
	}
	return quote.ID(id), true
}

var _ QuoteHTTP = QuoteHandler{}
