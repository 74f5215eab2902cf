package chat

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"go-storefront/models"
)

// Providers reported by the health endpoint.
const (
	ProviderOpenAI   = "openai"
	ProviderFallback = "fallback"
)

// Responder produces an assistant reply given the prior turns of a session.
type Responder interface {
	Reply(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

// Assistant answers support questions with a model-backed responder and
// falls back to canned answers when the model is absent or fails.
type Assistant struct {
	primary Responder
	logger  *zap.Logger
}

// NewAssistant wraps primary, which may be nil.
func NewAssistant(primary Responder, logger *zap.Logger) *Assistant {
	return &Assistant{primary: primary, logger: logger}
}

// Provider names the responder that will be tried first.
func (a *Assistant) Provider() string {
	if a.primary == nil {
		return ProviderFallback
	}
	return ProviderOpenAI
}

// Reply returns the reply and the provider that produced it.
func (a *Assistant) Reply(ctx context.Context, history []models.ChatMessage, message string) (string, string) {
	if a.primary != nil {
		reply, err := a.primary.Reply(ctx, history, message)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply, ProviderOpenAI
		}
		if err == nil {
			err = errors.New("empty reply")
		}
		a.logger.Warn("chat model failed, using fallback", zap.Error(err))
	}
	return FallbackReply(message), ProviderFallback
}

type cannedAnswer struct {
	keywords []string
	reply    string
}

var cannedAnswers = []cannedAnswer{
	{
		keywords: []string{"track", "where is my order", "order status", "shipping status"},
		reply:    "You can follow your order on the Track Order page using your order number (it starts with ORD- or TS) and the email you ordered with.",
	},
	{
		keywords: []string{"cancel"},
		reply:    "Orders can be cancelled from the order details page while they are pending or processing. Once an order has shipped it can no longer be cancelled.",
	},
	{
		keywords: []string{"return", "refund", "exchange"},
		reply:    "Delivered items can be returned within 30 days. Refunds go back to the original payment method within 5-7 business days.",
	},
	{
		keywords: []string{"shipping", "delivery", "deliver"},
		reply:    "Shipping is free on orders over $100. Otherwise a flat $10.00 shipping fee applies. Most orders arrive within 5-7 business days.",
	},
	{
		keywords: []string{"payment", "card", "pay"},
		reply:    "We accept major credit and debit cards. You can manage saved cards under Account > Payment Methods; we only ever store the last four digits.",
	},
	{
		keywords: []string{"address"},
		reply:    "You can add, edit or choose a default delivery address under Account > Addresses. Changes do not affect orders already placed.",
	},
	{
		keywords: []string{"hello", "hi", "hey"},
		reply:    "Hi there! How can I help you today? I can answer questions about orders, shipping, returns and payments.",
	},
}

// DefaultReply is used when no canned answer matches.
const DefaultReply = "Thanks for your message! I can help with orders, shipping, returns and payments. For anything else, please contact our support team."

// FallbackReply picks a canned answer by keyword.
func FallbackReply(message string) string {
	text := strings.ToLower(message)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, ans := range cannedAnswers {
		for _, kw := range ans.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(text, kw) {
					return ans.reply
				}
				continue
			}
			for _, w := range words {
				if w == kw || strings.HasPrefix(w, kw) && len(kw) > 3 {
					return ans.reply
				}
			}
		}
	}
	return DefaultReply
}
