package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

type quoteFixture struct {
	ProviderID   string `json:"provider_id"`
	Reference    string `json:"reference"`
	PremiumMinor int64  `json:"premium_minor"`
	Currency     string `json:"currency"`
	CoverageType string `json:"coverage_type"`
	ValidUntil   string `json:"valid_until"`
	Status       string `json:"status"`
}

// LoadFixtures seeds store with the quotes listed in a JSON file. A missing
// file is not an error. Fixtures are keyed by provider and reference; one
// already present in store is left untouched, so reloading is a no-op.
func LoadFixtures(ctx context.Context, store quote.Store, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("quote fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []quoteFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	batch := make([]*quote.Quote, 0, len(fixtures))
	seen := make(map[[2]string]struct{}, len(fixtures))
	skipped := 0
	for i, fx := range fixtures {
		q, err := fx.toQuote(now)
		if err != nil {
			logger.Error("fixture invalid", "index", i, "provider", fx.ProviderID, "error", err)
			continue
		}
		key := [2]string{q.ProviderID, q.Reference}
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		seen[key] = struct{}{}
		_, err = store.FindByReference(ctx, q.ProviderID, q.Reference)
		switch {
		case err == nil:
			skipped++
			continue
		case !errors.Is(err, quote.ErrNotFound):
			return fmt.Errorf("lookup fixture %s/%s: %w", q.ProviderID, q.Reference, err)
		}
		batch = append(batch, q)
	}
	if skipped > 0 {
		logger.Info("quote fixtures already present", "count", skipped)
	}
	if len(batch) == 0 {
		return nil
	}
	if _, err := store.SaveAll(ctx, batch); err != nil {
		return fmt.Errorf("save fixtures: %w", err)
	}
	logger.Info("quote fixtures imported", "count", len(batch))
	return nil
}

func (fx quoteFixture) toQuote(now time.Time) (*quote.Quote, error) {
	if strings.TrimSpace(fx.Reference) == "" {
		return nil, errors.New("reference is required")
	}
	currency := fx.Currency
	if currency == "" {
		currency = "USD"
	}
	premium, err := money.New(fx.PremiumMinor, currency)
	if err != nil {
		return nil, err
	}
	validUntil := now.Add(24 * time.Hour)
	if strings.TrimSpace(fx.ValidUntil) != "" {
		if validUntil, err = time.Parse(time.RFC3339, fx.ValidUntil); err != nil {
			return nil, fmt.Errorf("valid_until: %w", err)
		}
	}
	q, err := quote.New(quote.CreateParams{
		ProviderID:   fx.ProviderID,
		Reference:    fx.Reference,
		Premium:      premium,
		CoverageType: fx.CoverageType,
		ValidUntil:   validUntil,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	if fx.Status != "" {
		status := quote.Status(strings.ToUpper(fx.Status))
		if !status.Valid() {
			return nil, fmt.Errorf("unknown status %q", fx.Status)
		}
		q.Status = status
	}
	return q, nil
}
