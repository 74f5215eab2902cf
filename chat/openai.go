package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"go-storefront/models"
)

const systemPrompt = "You are the customer support assistant of an online store. " +
	"Answer briefly and only about orders, shipping, returns, payments, addresses and products. " +
	"Free shipping applies to orders over $100, otherwise shipping is $10. " +
	"Orders can be cancelled only while pending or processing. Never ask for full card numbers."

// OpenAIResponder answers with the chat completions API.
type OpenAIResponder struct {
	client openai.Client
	model  string
}

// NewOpenAIResponder returns nil when apiKey is empty so callers can pass
// the result straight to NewAssistant.
func NewOpenAIResponder(apiKey, model string) Responder {
	if apiKey == "" {
		return nil
	}
	return &OpenAIResponder{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (r *OpenAIResponder) Reply(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case models.ChatRoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case models.ChatRoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(message))

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(r.model),
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
