// Package disambiguate picks the readings of a polyphonic character that fit
// its phrase by holding a two-turn conversation with an LLM: free-form
// reasoning first, then a schema-constrained summary of the answer.
package disambiguate

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sncix/pinyin-annotation/internal/core/chat"
)

// Config is fixed for the lifetime of an Engine. The same Seed is sent on
// both turns so runs are reproducible.
type Config struct {
	Model              string
	Seed               int64
	ContextWindow      int
	MaxReasoningTokens int
}

type Engine struct {
	transport chat.Transport
	cfg       Config
	log       *logrus.Entry
}

func NewEngine(transport chat.Transport, cfg Config, log *logrus.Entry) *Engine {
	return &Engine{transport: transport, cfg: cfg, log: log}
}

func (e *Engine) Model() string { return e.cfg.Model }

// Prune returns the subset of candidates that fits hanzi in the bracketed
// phrase. Candidates of size <= 1 are returned unchanged without a model
// call. An incomplete second turn degrades to an empty result; a complete
// one that fails validation is an error wrapping ErrSchemaValidation.
// Each character gets its own conversation.
func (e *Engine) Prune(ctx context.Context, hanzi, bracketed string, candidates []string) ([]string, error) {
	if len(candidates) <= 1 {
		return candidates, nil
	}
	log := e.log.WithField("hanzi", hanzi)

	first := chat.Request{
		Model:        e.cfg.Model,
		Conversation: chat.NewConversation(reasoningPrompt(hanzi, bracketed, candidates)),
		Options: chat.Options{
			ContextWindow: e.cfg.ContextWindow,
			Seed:          e.cfg.Seed,
			MaxTokens:     e.cfg.MaxReasoningTokens,
		},
	}
	resp1, err := e.transport.Send(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("reasoning turn for %q in %q: %w", hanzi, bracketed, err)
	}
	log.Info(resp1.Message)
	logUsage(log, 1, resp1)

	second := chat.Request{
		Model: e.cfg.Model,
		Conversation: first.Conversation.
			With(chat.RoleAssistant, resp1.Message).
			With(chat.RoleUser, summaryPrompt(hanzi)),
		Options: chat.Options{
			ContextWindow: e.cfg.ContextWindow,
			Seed:          e.cfg.Seed,
		},
		Schema: ResponseSchema(),
	}
	resp2, err := e.transport.Send(ctx, second)
	if err != nil {
		return nil, fmt.Errorf("summary turn for %q in %q: %w", hanzi, bracketed, err)
	}
	logUsage(log, 2, resp2)

	// A cut-off structured reply may still parse into a wrong subset.
	if !resp2.Complete {
		log.WithField("done_reason", resp2.DoneReason).Warnf("incomplete structured response: %s", resp2.Message)
		return []string{}, nil
	}

	parsed, err := ParseStructuredResponse(resp2.Message)
	if err != nil {
		return nil, fmt.Errorf("summary turn for %q in %q: %w", hanzi, bracketed, err)
	}
	log.Infof("results=%v reason=%s", parsed.Results, parsed.Reason)

	return restrict(log, parsed.Results, candidates), nil
}

func logUsage(log *logrus.Entry, turn int, resp chat.Response) {
	log.WithField("turn", turn).Infof("prompt_eval_count=%d eval_count=%d", resp.PromptTokens, resp.CompletionTokens)
}

// restrict keeps the candidates the model chose, in candidate order. Choices
// that are not candidates are dropped.
func restrict(log *logrus.Entry, chosen, candidates []string) []string {
	want := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		want[NormalizeReading(c)] = false
	}

	out := make([]string, 0, len(chosen))
	for _, c := range candidates {
		key := NormalizeReading(c)
		if used, ok := want[key]; ok && !used {
			want[key] = true
			out = append(out, c)
		}
	}
	for c, used := range want {
		if !used {
			log.Warnf("discarding reading %q: not a candidate", c)
		}
	}
	return out
}
