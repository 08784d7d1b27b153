// Package chat is the request/response channel to an LLM chat service.
//
// A Transport receives the whole conversation on every call, plus optional
// generation options and an optional JSON schema the output must conform to.
// Implementations that cannot constrain output to a schema reject
// schema-bearing requests with ErrSchemaUnsupported.
package chat

import (
	"context"
	"errors"
)

// ErrSchemaUnsupported is returned by transports without structured-output support.
var ErrSchemaUnsupported = errors.New("chat: provider does not support schema-constrained output")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an append-only message history. With returns a new value
// and never mutates the receiver.
type Conversation struct {
	messages []Message
}

// NewConversation starts a conversation with a single user message.
func NewConversation(userMessage string) Conversation {
	return Conversation{messages: []Message{{Role: RoleUser, Content: userMessage}}}
}

func (c Conversation) With(role Role, content string) Conversation {
	next := make([]Message, len(c.messages), len(c.messages)+1)
	copy(next, c.messages)
	next = append(next, Message{Role: role, Content: content})
	return Conversation{messages: next}
}

// Messages returns a copy of the history in order.
func (c Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c Conversation) Len() int { return len(c.messages) }

// Options bound generation. Zero MaxTokens means no explicit cap.
type Options struct {
	ContextWindow int
	Seed          int64
	MaxTokens     int
}

// SupportsSchema reports whether t can constrain replies to a Schema.
// Transports declare a lack of support with a SupportsSchema() bool method.
func SupportsSchema(t Transport) bool {
	if s, ok := t.(interface{ SupportsSchema() bool }); ok {
		return s.SupportsSchema()
	}
	return true
}

// Schema is a JSON schema document.
type Schema map[string]any

type Request struct {
	Model        string
	Conversation Conversation
	Options      Options
	// Schema, when non-nil, constrains the reply.
	Schema Schema
}

type Response struct {
	Message string
	// Complete is false when generation stopped early (length or repetition cutoff).
	Complete         bool
	DoneReason       string
	PromptTokens     int
	CompletionTokens int
}

type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}
