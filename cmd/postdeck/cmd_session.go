// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/constants"
	"github.com/taibuivan/postdeck/internal/session"
	"github.com/taibuivan/postdeck/pkg/slice"
)

func newLoginCmd(deps *app) *cobra.Command {
	var email, password string
	var demo bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Exchange credentials for a session token.

The token is stored in the configured token store (file, redis or memory)
and reused by later commands until 'postdeck logout'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if demo {
				email, password = constants.DemoEmail, constants.DemoPassword
			}

			return deps.run(cmd, func(ctx context.Context) error {
				manager, err := deps.session(ctx)
				if err != nil {
					return err
				}

				user, err := manager.Login(ctx, email, password)
				if err != nil {
					return describe(err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.DisplayName(), user.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&demo, "demo", false, "Use the demo account")
	cmd.MarkFlagsMutuallyExclusive("demo", "email")
	return cmd
}

func newRegisterCmd(deps *app) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  `Create an account. Registering does not log in; run 'postdeck login' afterwards.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.run(cmd, func(ctx context.Context) error {
				manager, err := deps.session(ctx)
				if err != nil {
					return err
				}

				message, err := manager.Register(ctx, name, email, password)
				if err != nil {
					return describe(err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), message)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (at least 8 characters)")
	return cmd
}

func newLogoutCmd(deps *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.run(cmd, func(ctx context.Context) error {
				manager, err := deps.session(ctx)
				if err != nil {
					return err
				}

				manager.Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(deps *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Verify the stored session and print the account",
		Long: `Verify the stored token against the identity API.

An expired or rejected token is removed, exactly as the dashboard did when
it mounted with a stale session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.run(cmd, func(ctx context.Context) error {
				manager, err := deps.session(ctx)
				if err != nil {
					return err
				}

				if manager.Snapshot().State == session.StateAnonymous {
					return apperr.Unauthorized("Not logged in")
				}

				user, err := manager.Verify(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s <%s>\n", user.DisplayName(), user.Email)
				fmt.Fprintf(out, "id: %s\n", user.ID)
				return nil
			})
		},
	}
}

// describe appends field details to validation errors so the user sees
// which flag to fix.
func describe(err error) error {
	appErr := apperr.As(err)
	if appErr == nil || len(appErr.Details) == 0 {
		return err
	}

	lines := slice.Map(appErr.Details, func(detail apperr.FieldError) string {
		return fmt.Sprintf("\n  %s: %s", detail.Field, detail.Message)
	})
	return fmt.Errorf("%w%s", err, strings.Join(lines, ""))
}
