// Package cmd provides the command-line interface for vmmgr.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// ErrInvalidArguments is returned when the command line does not name exactly
// one address file.
var ErrInvalidArguments = errors.New("invalid arguments")

// Execute runs the root command and exits. The exit goes through atexit so
// that trace files and databases are flushed.
func Execute() {
	root := newRootCmd(os.Stdout, os.Stderr)

	err := root.ExecuteContext(context.Background())
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)

		if errors.Is(err, ErrInvalidArguments) {
			fmt.Fprintln(os.Stderr, root.UsageString())
		}

		slog.Error("run failed", "error", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "vmmgr ADDRESS_FILE",
		Short: "Translate logical addresses through a TLB and a page table.",
		Long: `vmmgr reads one decimal logical address per line from ADDRESS_FILE, ` +
			`translates each one through a 16-entry TLB and a page table, ` +
			`loading pages from the backing store on page faults, and prints ` +
			`the page-fault rate and the TLB hit rate.`,
		Args:          exactlyOneAddressFile,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args[0], stdout, stderr)
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	o.addFlags(rootCmd)

	return rootCmd
}

func exactlyOneAddressFile(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	return nil
}
