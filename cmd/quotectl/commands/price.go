package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"travelquote/internal/app/dto"
	quotehandlers "travelquote/internal/app/handlers/quotes"
	"travelquote/internal/app/queries"
	"travelquote/internal/domain/pricing"
	"travelquote/internal/domain/shared/money"
)

type priceOptions struct {
	base      string
	currency  string
	coverage  string
	tripType  string
	cover     string
	start     string
	end       string
	travelers int
}

func newPriceCmd() *cobra.Command {
	opts := &priceOptions{}
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Compute a premium for a trip without storing a quote",
		Example: `  quotectl price --base 49.90 --coverage worldwide --start 2026-07-01 --end 2026-07-14 --cover family --travelers 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			preview, err := opts.run(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, preview)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.base, "base", "", "base price in major units, e.g. 49.90")
	f.StringVar(&opts.currency, "currency", "USD", "ISO currency code")
	f.StringVar(&opts.coverage, "coverage", "domestic", "domestic, schengen or worldwide")
	f.StringVar(&opts.tripType, "trip-type", "single", "single or annual")
	f.StringVar(&opts.cover, "cover", "individual", "individual, family or group")
	f.StringVar(&opts.start, "start", "", "first travel day (YYYY-MM-DD)")
	f.StringVar(&opts.end, "end", "", "last travel day (YYYY-MM-DD)")
	f.IntVar(&opts.travelers, "travelers", 1, "number of travelers")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (o *priceOptions) run(ctx context.Context) (dto.PremiumPreview, error) {
	major, err := decimal.NewFromString(strings.TrimSpace(o.base))
	if err != nil {
		return dto.PremiumPreview{}, fmt.Errorf("invalid --base: %w", err)
	}
	base, err := money.FromDecimal(major, o.currency)
	if err != nil {
		return dto.PremiumPreview{}, err
	}
	start, err := time.Parse(time.DateOnly, o.start)
	if err != nil {
		return dto.PremiumPreview{}, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse(time.DateOnly, o.end)
	if err != nil {
		return dto.PremiumPreview{}, fmt.Errorf("invalid --end: %w", err)
	}
	trip := pricing.Trip{
		Coverage:  pricing.ParseCoverage(o.coverage),
		TripType:  pricing.ParseTripType(o.tripType),
		Cover:     pricing.ParseCover(o.cover),
		Start:     start,
		End:       end,
		Travelers: o.travelers,
	}
	bus := queries.NewInMemoryBus()
	queries.RegisterHandler[quotehandlers.PremiumPreviewQuery, dto.PremiumPreview](bus, quotehandlers.PremiumPreviewHandler{})
	return queries.Ask[quotehandlers.PremiumPreviewQuery, dto.PremiumPreview](ctx, bus, quotehandlers.PremiumPreviewQuery{Base: base, Trip: trip})
}
