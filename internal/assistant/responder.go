// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/validate"
)

// DefaultDelay mimics the latency of a real generation service.
const DefaultDelay = 1500 * time.Millisecond

// Responder answers prompts from a rule table after a simulated delay.
type Responder struct {
	rules  []Rule
	delay  time.Duration
	logger *slog.Logger
}

// NewResponder builds a Responder. Nil rules means [DefaultRules].
func NewResponder(rules []Rule, delay time.Duration, logger *slog.Logger) *Responder {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Responder{rules: rules, delay: delay, logger: logger}
}

// Respond returns the reply of the first matching rule.
func (responder *Responder) Respond(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", validate.RequiredError("prompt", "This field is required")
	}

	// ── 1. Simulated latency ──────────────────────────────────────────────
	if responder.delay > 0 {
		timer := time.NewTimer(responder.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", apperr.Canceled(ctx.Err())
		}
	}

	// ── 2. Rule dispatch ──────────────────────────────────────────────────
	rule, ok := Match(responder.rules, prompt)
	if !ok {
		return "", apperr.Internal(errNoRule)
	}

	responder.logger.DebugContext(ctx, "assistant_rule_matched", slog.String("rule", rule.Name))
	return rule.Reply(prompt), nil
}
