package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

// defaultAnthropicMaxTokens caps replies when the request sets no limit; the
// Messages API requires one.
const defaultAnthropicMaxTokens = 1024

// Anthropic uses the Messages API. It has no seed and no schema-constrained
// decoding, so schema-bearing requests are refused.
type Anthropic struct {
	client anthropic.Client
	log    *logrus.Entry
}

func NewAnthropic(baseURL, apiKey string, timeout time.Duration, log *logrus.Entry) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Anthropic{client: anthropic.NewClient(opts...), log: log}
}

func (a *Anthropic) SupportsSchema() bool { return false }

func (a *Anthropic) Send(ctx context.Context, req Request) (Response, error) {
	if req.Schema != nil {
		return Response{}, ErrSchemaUnsupported
	}

	msgs := make([]anthropic.MessageParam, 0, req.Conversation.Len())
	for _, m := range req.Conversation.Messages() {
		switch m.Role {
		case RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			return Response{}, fmt.Errorf("anthropic: unsupported role %q", m.Role)
		}
	}

	maxTokens := req.Options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	a.log.WithFields(logrus.Fields{
		"model":    req.Model,
		"messages": len(msgs),
		"seed":     req.Options.Seed,
	}).Debug("anthropic: seed is not supported; sending without it")

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	})
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: messages call: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	reason := string(msg.StopReason)
	return Response{
		Message:          text.String(),
		Complete:         reason == "end_turn" || reason == "stop_sequence",
		DoneReason:       reason,
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
	}, nil
}
