package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"carrinho/internal/session"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Drain the outbox against the remote store",
		Long: `Run one sync pass: queued ops are delivered in order, stopping at
the first failure. Requires CARRINHO_REMOTE_URL and a valid
CARRINHO_ACCESS_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
	return cmd
}

type syncResult struct {
	Applied   int `json:"applied"`
	Remaining int `json:"remaining"`
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	engine, sessions, err := a.newEngine()
	if err != nil {
		return err
	}
	if sessions.Current() == nil {
		return NewExitError(ExitCommandError, "not signed in: set CARRINHO_ACCESS_TOKEN")
	}

	ctx := cmd.Context()
	applied, syncErr := engine.SyncOnce(ctx)
	remaining, err := a.queue.Depth(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "read queue depth", err)
	}

	result := syncResult{Applied: applied, Remaining: remaining}
	if syncErr != nil {
		out.Error("sync halted", syncErr.Error())
		return WrapExitError(ExitFailure, fmt.Sprintf("sync halted after %d ops, %d left", applied, remaining), syncErr)
	}

	if out.JSON() {
		return out.Success(result)
	}
	fmt.Fprintf(out.Writer, "Synced %d ops, %d remaining\n", applied, remaining)
	return nil
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show sync status: session, queue depth, dead letters",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
	return cmd
}

type statusResult struct {
	RemoteConfigured bool   `json:"remoteConfigured"`
	SignedIn         bool   `json:"signedIn"`
	UserID           string `json:"userId,omitempty"`
	SessionError     string `json:"sessionError,omitempty"`
	QueueDepth       int    `json:"queueDepth"`
	DeadLetters      int    `json:"deadLetters"`
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	result := statusResult{RemoteConfigured: a.cfg.RemoteURL != ""}

	if a.cfg.AccessToken != "" {
		sessions := session.NewManager()
		if err := sessions.SetToken(a.cfg.AccessToken); err != nil {
			result.SessionError = err.Error()
		} else if sess := sessions.Current(); sess != nil {
			result.SignedIn = true
			result.UserID = sess.UserID
		}
	}

	result.QueueDepth, err = a.queue.Depth(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "read queue depth", err)
	}
	dead, err := a.queue.DeadLetters(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "read dead letters", err)
	}
	result.DeadLetters = len(dead)

	if out.JSON() {
		return out.Success(result)
	}

	fmt.Fprintf(out.Writer, "Remote:       %s\n", orNone(a.cfg.RemoteURL))
	switch {
	case result.SignedIn:
		fmt.Fprintf(out.Writer, "Session:      %s\n", result.UserID)
	case result.SessionError != "":
		fmt.Fprintf(out.Writer, "Session:      invalid (%s)\n", result.SessionError)
	default:
		fmt.Fprintln(out.Writer, "Session:      none")
	}
	fmt.Fprintf(out.Writer, "Queue:        %d pending\n", result.QueueDepth)
	fmt.Fprintf(out.Writer, "Dead letters: %d\n", result.DeadLetters)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
