package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

// OpenAI speaks the chat completions protocol, which also covers Ollama's
// /v1 compatibility endpoint and other OpenAI-compatible servers.
type OpenAI struct {
	client openai.Client
	log    *logrus.Entry
}

// NewOpenAI builds a transport with SDK retries disabled; a failed call is
// reported once and not replayed.
func NewOpenAI(baseURL, apiKey string, timeout time.Duration, log *logrus.Entry) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...), log: log}
}

type openaiJSONSchema struct {
	Name   string `json:"name"`
	Schema Schema `json:"schema"`
	Strict bool   `json:"strict"`
}

type openaiResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *openaiJSONSchema `json:"json_schema,omitempty"`
}

type openaiChatRequest struct {
	Model          string                `json:"model"`
	Messages       []Message             `json:"messages"`
	Seed           int64                 `json:"seed"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	ResponseFormat *openaiResponseFormat `json:"response_format,omitempty"`
}

type openaiChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type openaiChatResponse struct {
	Choices []openaiChatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (o *OpenAI) Send(ctx context.Context, req Request) (Response, error) {
	body := openaiChatRequest{
		Model:     req.Model,
		Messages:  req.Conversation.Messages(),
		Seed:      req.Options.Seed,
		MaxTokens: req.Options.MaxTokens,
	}
	if req.Schema != nil {
		// Strict mode rejects length and uniqueness keywords; the reply is
		// validated locally instead.
		body.ResponseFormat = &openaiResponseFormat{
			Type:       "json_schema",
			JSONSchema: &openaiJSONSchema{Name: "Response", Schema: req.Schema, Strict: false},
		}
	}
	if req.Options.ContextWindow > 0 {
		o.log.WithField("context_window", req.Options.ContextWindow).Debug("openai: context window is server-side; not sent")
	}

	var out openaiChatResponse
	if err := o.client.Post(ctx, "chat/completions", body, &out); err != nil {
		return Response{}, err
	}
	if len(out.Choices) == 0 {
		return Response{}, errors.New("openai: no choices returned")
	}
	choice := out.Choices[0]
	return Response{
		Message:          strings.TrimSpace(choice.Message.Content),
		Complete:         choice.FinishReason == "stop",
		DoneReason:       choice.FinishReason,
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
	}, nil
}
