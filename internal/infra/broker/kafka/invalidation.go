package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"
)

// CacheInvalidator is the slice of the quote cache peers need to drop state.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

type envelope struct {
	Type    string `json:"type"`
	Source  string `json:"source"`
	Subject string `json:"subject"`
}

// InvalidationHandler clears the local quote cache whenever another instance
// publishes a quote lifecycle event.
type InvalidationHandler struct {
	Cache  CacheInvalidator
	Source string
	Logger *slog.Logger
}

func (h InvalidationHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt envelope
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger().Warn("dropping malformed quote event", "offset", msg.Offset, "error", err)
		return nil
	}
	if !strings.HasPrefix(evt.Type, "quote.") {
		return nil
	}
	if h.Source != "" && evt.Source == h.Source {
		return nil
	}
	if err := h.Cache.InvalidateAll(ctx); err != nil {
		return err
	}
	h.logger().Debug("quote cache invalidated by peer", "type", evt.Type, "quote_id", evt.Subject)
	return nil
}

func (h InvalidationHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
