package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/sirupsen/logrus"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama talks to the native Ollama chat API.
type Ollama struct {
	baseURL string
	client  *api.Client
	log     *logrus.Entry
}

// NewOllama creates a transport for baseURL (default http://localhost:11434).
// A zero timeout leaves calls bounded only by ctx.
func NewOllama(baseURL string, timeout time.Duration, log *logrus.Entry) (*Ollama, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ollama: base url %q: %w", baseURL, err)
	}
	return &Ollama{
		baseURL: baseURL,
		client:  api.NewClient(base, &http.Client{Timeout: timeout}),
		log:     log,
	}, nil
}

func (o *Ollama) Send(ctx context.Context, req Request) (Response, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: make([]api.Message, 0, req.Conversation.Len()),
		Stream:   &stream,
		Options: map[string]any{
			"seed": req.Options.Seed,
		},
	}
	for _, m := range req.Conversation.Messages() {
		chatReq.Messages = append(chatReq.Messages, api.Message{Role: string(m.Role), Content: m.Content})
	}
	if req.Options.ContextWindow > 0 {
		chatReq.Options["num_ctx"] = req.Options.ContextWindow
	}
	if req.Options.MaxTokens > 0 {
		chatReq.Options["num_predict"] = req.Options.MaxTokens
	}
	if req.Schema != nil {
		format, err := json.Marshal(req.Schema)
		if err != nil {
			return Response{}, fmt.Errorf("marshaling schema: %w", err)
		}
		chatReq.Format = format
	}

	o.log.WithFields(logrus.Fields{
		"model":    req.Model,
		"messages": req.Conversation.Len(),
		"schema":   req.Schema != nil,
	}).Debug("ollama: chat request")

	// Stream is off, so fn runs once with the whole reply.
	var out api.ChatResponse
	err := o.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		out = r
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return Response{}, fmt.Errorf("ollama returned status %d: %w", statusErr.StatusCode, err)
		}
		return Response{}, fmt.Errorf("calling ollama: %w", err)
	}

	return Response{
		Message:          out.Message.Content,
		Complete:         out.Done && out.DoneReason != "length",
		DoneReason:       out.DoneReason,
		PromptTokens:     out.Metrics.PromptEvalCount,
		CompletionTokens: out.Metrics.EvalCount,
	}, nil
}
