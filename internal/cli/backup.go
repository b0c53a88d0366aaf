package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"carrinho/internal/store"
)

// BackupOptions holds flags for the export and import commands.
type BackupOptions struct {
	*RootOptions
	File string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the local store as backup JSON",
		Long: `Write the full local state (carts, items, pending outbox) as JSON.

The snapshot round-trips through "carrinho import" on another device.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "out", "", "output file (default stdout)")
	return cmd
}

func runExport(opts *BackupOptions, cmd *cobra.Command) error {
	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	snap, err := a.store.Export(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "export store", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "encode snapshot", err)
	}
	data = append(data, '\n')

	if opts.File == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.File, data, 0o600); err != nil {
		return WrapExitError(ExitCommandError, "write backup file", err)
	}
	return nil
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the local store with a backup JSON snapshot",
		Long: `Replace ALL local state with the given snapshot. Existing carts,
items, and queued ops are dropped first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "in", "", "snapshot file (required)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runImport(opts *BackupOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	data, err := os.ReadFile(opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "read backup file", err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return WrapExitError(ExitCommandError, "parse backup file", err)
	}

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Import(cmd.Context(), snap); err != nil {
		return WrapExitError(ExitCommandError, "import snapshot", err)
	}

	if out.JSON() {
		return out.Success(map[string]int{"carts": len(snap.Carts)})
	}
	fmt.Fprintf(out.Writer, "Imported %d carts\n", len(snap.Carts))
	return nil
}

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Force bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Wipe all local data",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "confirm wiping everything")
	return cmd
}

func runClear(opts *ClearOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	if !opts.Force {
		return NewExitError(ExitCommandError, "refusing to wipe local data without --force")
	}

	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Clear(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "clear store", err)
	}

	if out.JSON() {
		return out.Success("cleared")
	}
	fmt.Fprintln(out.Writer, "Local store cleared")
	return nil
}
