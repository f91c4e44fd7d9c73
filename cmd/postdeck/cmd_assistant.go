// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taibuivan/postdeck/internal/assistant"
	"github.com/taibuivan/postdeck/internal/platform/ctxutil"
	"github.com/taibuivan/postdeck/internal/session"
)

func newAskCmd(deps *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Ask the community management assistant",
		Long: `Ask the assistant for post ideas, hashtags, timing or analytics tips.

Without a prompt, the greeting and a few suggestions are printed.
The greeting uses the logged-in account's name when the session verifies.
Verification behaves as in whoami: if the identity server rejects the stored
token or cannot be reached, the stored token is cleared and you need to log
in again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deps.run(cmd, func(ctx context.Context) error {
				responder := assistant.NewResponder(nil, deps.cfg.AssistantDelay, ctxutil.GetLogger(ctx))
				conversation := assistant.NewConversation(responder, accountName(ctx, deps))

				out := cmd.OutOrStdout()
				if len(args) == 0 {
					printTranscript(out, conversation.Messages())
					fmt.Fprintln(out, "\nSuggestions:")
					for _, suggestion := range assistant.Suggestions {
						fmt.Fprintf(out, "  - %s\n", suggestion)
					}
					return nil
				}

				_, err := conversation.Send(ctx, strings.Join(args, " "))
				printTranscript(out, conversation.Messages())
				return err
			})
		},
	}
}

// accountName verifies a restored session to greet the user by name. Any
// failure falls back to the anonymous greeting; a failed verification has
// already cleared the stored token.
func accountName(ctx context.Context, deps *app) string {
	manager, err := deps.session(ctx)
	if err != nil {
		ctxutil.GetLogger(ctx).Debug("assistant_session_unavailable", slog.Any("error", err))
		return ""
	}

	if manager.Snapshot().State != session.StateUnverified {
		return ""
	}

	user, err := manager.Verify(ctx)
	if err != nil {
		ctxutil.GetLogger(ctx).Debug("assistant_session_unverified", slog.Any("error", err))
		return ""
	}
	return user.Name
}

func printTranscript(out io.Writer, messages []assistant.Message) {
	for _, message := range messages {
		prefix := "assistant"
		if message.Role == assistant.RoleUser {
			prefix = "vous"
		}
		fmt.Fprintf(out, "%s> %s\n", prefix, message.Content)
	}
}
