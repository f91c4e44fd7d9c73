// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command postdeck is the terminal client of the social media dashboard:
// session commands against the identity API, the content calendar and the
// assistant.
//
// Configuration comes from POSTDECK_* environment variables; see
// [config.Client]. Logs are JSON on stderr; command output goes to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/constants"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	debug     bool
	ephemeral bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		cancel()
		os.Exit(exitCode(err))
	}
}

// newRootCmd builds the command tree. Output writers are injected so tests
// can capture them.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	deps := &app{opts: opts, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Social media dashboard in the terminal",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (also POSTDECK_DEBUG)")
	rootCmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep the session in memory only")

	rootCmd.AddCommand(
		newLoginCmd(deps),
		newRegisterCmd(deps),
		newLogoutCmd(deps),
		newWhoamiCmd(deps),
		newCalendarCmd(deps),
		newAskCmd(deps),
	)

	return rootCmd
}

// reportError prints err for the user. Plain errors come from flags,
// arguments or local files and get a pointer to the help text.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	if !apperr.IsAppError(err) {
		fmt.Fprintf(w, "Run '%s --help' for usage.\n", constants.AppName)
	}
}

// exitCode maps failures onto conventional process exit codes.
func exitCode(err error) int {
	switch {
	case apperr.HasCode(err, apperr.CodeCanceled):
		return 130
	case apperr.HasCode(err, apperr.CodeUnauthorized):
		return 3
	case apperr.HasCode(err, apperr.CodeNetwork):
		return 4
	default:
		return 1
	}
}
