package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"go-storefront/models"
)

type stubResponder struct {
	reply string
	err   error
	calls int
}

func (s *stubResponder) Reply(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestFallbackReply(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"Where is my order?", "Track Order"},
		{"How do I cancel", "cancelled"},
		{"I want a refund", "30 days"},
		{"how much is shipping", "over $100"},
		{"Hi", "How can I help"},
		{"tell me a joke", DefaultReply},
		{"this is hilarious", DefaultReply},
	}
	for _, tt := range tests {
		if got := FallbackReply(tt.msg); !strings.Contains(got, tt.want) {
			t.Errorf("FallbackReply(%q) = %q, want it to contain %q", tt.msg, got, tt.want)
		}
	}
}

func TestAssistant_UsesPrimary(t *testing.T) {
	stub := &stubResponder{reply: "model answer"}
	a := NewAssistant(stub, zap.NewNop())
	reply, provider := a.Reply(context.Background(), nil, "hello")
	if reply != "model answer" || provider != ProviderOpenAI {
		t.Fatalf("got %q from %s", reply, provider)
	}
}

func TestAssistant_FallsBackOnError(t *testing.T) {
	stub := &stubResponder{err: errors.New("rate limited")}
	a := NewAssistant(stub, zap.NewNop())
	reply, provider := a.Reply(context.Background(), nil, "refund please")
	if provider != ProviderFallback || !strings.Contains(reply, "30 days") {
		t.Fatalf("got %q from %s", reply, provider)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one model call, got %d", stub.calls)
	}
}

func TestAssistant_NoPrimary(t *testing.T) {
	a := NewAssistant(NewOpenAIResponder("", "gpt-4o-mini"), zap.NewNop())
	if a.Provider() != ProviderFallback {
		t.Fatalf("expected fallback provider, got %s", a.Provider())
	}
}
