package quotes

import (
	"iter"

	"travelquote/internal/app/commands"
	"travelquote/internal/app/dto"
	"travelquote/internal/app/queries"
	quotesapp "travelquote/internal/app/quotes"
	"travelquote/internal/domain/providers"
)

// Register wires every quote command and query onto the buses.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, engine *quotesapp.Engine, registry *providers.Registry) {
	commands.RegisterHandler[SelectQuoteCommand, dto.Quote](cmdBus, &SelectQuoteHandler{Lifecycle: engine.Lifecycle})
	commands.RegisterHandler[RejectQuoteCommand, dto.Quote](cmdBus, &RejectQuoteHandler{Lifecycle: engine.Lifecycle})
	commands.RegisterHandler[IssueQuoteCommand, dto.Quote](cmdBus, &IssueQuoteHandler{Issuer: engine.Issuer})
	commands.RegisterHandler[SweepExpiredCommand, SweepResult](cmdBus, &SweepExpiredHandler{Lifecycle: engine.Lifecycle})

	queries.RegisterHandler[StreamQuotesQuery, iter.Seq[dto.Quote]](queryBus, &StreamQuotesHandler{Aggregator: engine.Aggregator})
	queries.RegisterHandler[ProviderQuoteQuery, dto.Quote](queryBus, &ProviderQuoteHandler{Aggregator: engine.Aggregator})
	queries.RegisterHandler[StatisticsQuery, dto.Statistics](queryBus, &StatisticsHandler{Reporter: engine.Reporter})
	queries.RegisterHandler[PremiumPreviewQuery, dto.PremiumPreview](queryBus, PremiumPreviewHandler{})
	queries.RegisterHandler[ListProvidersQuery, []dto.Provider](queryBus, &ListProvidersHandler{Registry: registry})
}
