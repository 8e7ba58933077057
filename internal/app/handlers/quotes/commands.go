package quotes

import (
	"context"
	"time"

	"travelquote/internal/app/commands"
	"travelquote/internal/app/dto"
	quotesapp "travelquote/internal/app/quotes"
	"travelquote/internal/domain/pricing"
	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

const (
	selectQuoteKey  = "quotes.select"
	rejectQuoteKey  = "quotes.reject"
	issueQuoteKey   = "quotes.issue"
	sweepExpiredKey = "quotes.sweep_expired"
)

type SelectQuoteCommand struct {
	ID quote.ID
}

func (SelectQuoteCommand) Key() string { return selectQuoteKey }

type SelectQuoteHandler struct {
	Lifecycle *quotesapp.Lifecycle
}

func (h *SelectQuoteHandler) Handle(ctx context.Context, cmd SelectQuoteCommand) (dto.Quote, error) {
	q, err := h.Lifecycle.Select(ctx, cmd.ID)
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(q), nil
}

type RejectQuoteCommand struct {
	ID     quote.ID
	Reason string
}

func (RejectQuoteCommand) Key() string { return rejectQuoteKey }

type RejectQuoteHandler struct {
	Lifecycle *quotesapp.Lifecycle
}

func (h *RejectQuoteHandler) Handle(ctx context.Context, cmd RejectQuoteCommand) (dto.Quote, error) {
	q, err := h.Lifecycle.Reject(ctx, cmd.ID, cmd.Reason)
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(q), nil
}

type IssueQuoteCommand struct {
	ProviderID string
	Reference  string
	Base       money.Money
	Trip       pricing.Trip
}

func (IssueQuoteCommand) Key() string { return issueQuoteKey }

type IssueQuoteHandler struct {
	Issuer *quotesapp.Issuer
}

func (h *IssueQuoteHandler) Handle(ctx context.Context, cmd IssueQuoteCommand) (dto.Quote, error) {
	q, err := h.Issuer.Issue(ctx, quotesapp.IssueRequest{
		ProviderID: cmd.ProviderID,
		Reference:  cmd.Reference,
		BasePrice:  cmd.Base,
		Trip:       cmd.Trip,
	})
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(q), nil
}

// SweepExpiredCommand expires every pending quote past its validity at Now.
type SweepExpiredCommand struct {
	Now time.Time
}

func (SweepExpiredCommand) Key() string { return sweepExpiredKey }

type SweepResult struct {
	Expired int `json:"expired"`
}

type SweepExpiredHandler struct {
	Lifecycle *quotesapp.Lifecycle
}

func (h *SweepExpiredHandler) Handle(ctx context.Context, cmd SweepExpiredCommand) (SweepResult, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	n, err := h.Lifecycle.SweepExpired(ctx, now)
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{Expired: n}, nil
}

var (
	_ commands.Handler[SelectQuoteCommand, dto.Quote]    = (*SelectQuoteHandler)(nil)
	_ commands.Handler[RejectQuoteCommand, dto.Quote]    = (*RejectQuoteHandler)(nil)
	_ commands.Handler[IssueQuoteCommand, dto.Quote]     = (*IssueQuoteHandler)(nil)
	_ commands.Handler[SweepExpiredCommand, SweepResult] = (*SweepExpiredHandler)(nil)
)
