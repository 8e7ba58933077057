package ginserver

import (
	"fmt"
	"strings"
	"time"

	"travelquote/internal/domain/pricing"
	"travelquote/internal/domain/shared/money"
)

const dateLayout = "2006-01-02"

type tripRequest struct {
	Coverage  string `json:"coverage"`
	TripType  string `json:"trip_type"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Cover     string `json:"cover"`
	Travelers int    `json:"travelers"`
}

func (r tripRequest) toTrip() (pricing.Trip, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return pricing.Trip{}, fmt.Errorf("%w: start_date: %v", pricing.ErrInvalidTrip, err)
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return pricing.Trip{}, fmt.Errorf("%w: end_date: %v", pricing.ErrInvalidTrip, err)
	}
	return pricing.Trip{
		Coverage:  pricing.ParseCoverage(r.Coverage),
		TripType:  pricing.ParseTripType(r.TripType),
		Start:     start,
		End:       end,
		Cover:     pricing.ParseCover(r.Cover),
		Travelers: r.Travelers,
	}, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

type priceRequest struct {
	BasePriceMinor int64       `json:"base_price_minor"`
	Currency       string      `json:"currency"`
	Trip           tripRequest `json:"trip" binding:"required"`
}

func (r priceRequest) base(defaultCurrency string) (money.Money, error) {
	currency := r.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return money.New(r.BasePriceMinor, currency)
}

type issueRequest struct {
	ProviderID string `json:"provider_id" binding:"required"`
	Reference  string `json:"reference"`
	priceRequest
}

type rejectRequest struct {
	Reason string `json:"reason"`
}
