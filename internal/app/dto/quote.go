package dto

import (
	"time"

	"travelquote/internal/domain/providers"
	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

type Money struct {
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Display     string `json:"display"`
}

func MapMoney(m money.Money) Money {
	return Money{AmountMinor: m.Amount, Currency: m.Currency, Display: m.Major().StringFixed(2)}
}

type Quote struct {
	ID           int64     `json:"id"`
	ProviderID   string    `json:"provider_id"`
	Reference    string    `json:"reference,omitempty"`
	Premium      Money     `json:"premium"`
	CoverageType string    `json:"coverage_type,omitempty"`
	ValidUntil   time.Time `json:"valid_until"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Status       string    `json:"status"`
}

func MapQuote(q quote.Quote) Quote {
	return Quote{
		ID:           int64(q.ID),
		ProviderID:   q.ProviderID,
		Reference:    q.Reference,
		Premium:      MapMoney(q.Premium),
		CoverageType: q.CoverageType,
		ValidUntil:   q.ValidUntil,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
		Status:       string(q.Status),
	}
}

type Statistics struct {
	Total    int64 `json:"total"`
	Selected int64 `json:"selected"`
	Expired  int64 `json:"expired"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

func MapStatistics(s quote.Statistics) Statistics {
	return Statistics(s)
}

type PremiumPreview struct {
	Base       Money  `json:"base"`
	Premium    Money  `json:"premium"`
	Multiplier string `json:"multiplier"`
	Days       int    `json:"days"`
}

// Provider omits the API key.
type Provider struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
	Source  string `json:"source"`
	APIURL  string `json:"api_url,omitempty"`
	HasKey  bool   `json:"has_api_key"`
}

func MapProvider(cfg providers.Config) Provider {
	return Provider{
		ID:      cfg.ID,
		Enabled: cfg.Enabled,
		Source:  string(cfg.Source),
		APIURL:  cfg.APIURL,
		HasKey:  cfg.APIKey != "",
	}
}
