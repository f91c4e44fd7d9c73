// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/postdeck/internal/platform/validate"
	"github.com/taibuivan/postdeck/pkg/uuidv7"
)

var errNoRule = errors.New("assistant: no rule matched and the table has no fallback")

// ErrorReply is appended to the transcript when a prompt cannot be answered.
const ErrorReply = "Désolé, une erreur est survenue. Veuillez réessayer."

// Role is who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"is_error,omitempty"`
}

// Conversation is an append-only transcript with a responder behind it.
type Conversation struct {
	responder *Responder
	now       func() time.Time

	mu       sync.Mutex
	messages []Message
}

// NewConversation opens with a greeting addressed to name ("Utilisateur" when empty).
func NewConversation(responder *Responder, name string) *Conversation {
	if name == "" {
		name = "Utilisateur"
	}

	conversation := &Conversation{responder: responder, now: time.Now}
	conversation.append(RoleAssistant, fmt.Sprintf(
		"Bonjour %s ! Je suis votre assistant IA pour le community management. Comment puis-je vous aider aujourd'hui ?", name,
	), false)
	return conversation
}

// Send records the prompt, asks the responder and records the answer.
// On failure an apology is recorded instead and the error is returned.
// A blank prompt is rejected without touching the transcript.
func (conversation *Conversation) Send(ctx context.Context, prompt string) (Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return Message{}, validate.RequiredError("prompt", "This field is required")
	}

	conversation.append(RoleUser, prompt, false)

	reply, err := conversation.responder.Respond(ctx, prompt)
	if err != nil {
		return conversation.append(RoleAssistant, ErrorReply, true), err
	}
	return conversation.append(RoleAssistant, reply, false), nil
}

// Messages returns a copy of the transcript.
func (conversation *Conversation) Messages() []Message {
	conversation.mu.Lock()
	defer conversation.mu.Unlock()
	return append([]Message(nil), conversation.messages...)
}

func (conversation *Conversation) append(role Role, content string, isError bool) Message {
	message := Message{
		ID:        uuidv7.New(),
		Role:      role,
		Content:   content,
		Timestamp: conversation.now(),
		IsError:   isError,
	}

	conversation.mu.Lock()
	conversation.messages = append(conversation.messages, message)
	conversation.mu.Unlock()
	return message
}
