package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/iconfont/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit       int
	Allocations bool
}

// BuildDetail is one build with the files it wrote.
type BuildDetail struct {
	Build   history.Build    `json:"build"`
	Outputs []history.Output `json:"outputs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [build-id]",
		Short: "List recorded builds or show one build's outputs",
		Long: `List builds recorded in the history database, newest first.

With a build ID, show that build and every file it wrote with its size
and SHA-256. With --allocations, list every codepoint ever handed out;
these are never reused, even after the icon leaves the manifest.

Example:
  iconfont history
  iconfont history 0190c5b4-...
  iconfont history --allocations --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd, args)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of builds to list (0 for all)")
	cmd.Flags().BoolVar(&opts.Allocations, "allocations", false, "list recorded codepoint allocations")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)

	settings, err := loadSettings(opts.toolchain)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid environment", err)
	}
	layout, err := LoadLayout(cmd, opts.RootOptions, settings)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	if layout.History == "" {
		msg := "build history is disabled"
		_ = formatter.Error(ErrCodeUsage, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if _, err := os.Stat(layout.History); err != nil {
		msg := fmt.Sprintf("no build history at %s", layout.History)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return WrapExitError(ExitFailure, msg, err)
	}

	store, err := history.Open(layout.History)
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to open history", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	switch {
	case opts.Allocations:
		allocations, err := store.Allocations(ctx)
		if err != nil {
			return historyError(formatter, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(allocations)
		}
		outputAllocationsText(formatter.Writer, allocations)
		return nil

	case len(args) == 1:
		b, err := store.Build(ctx, args[0])
		if err != nil {
			return historyError(formatter, err)
		}
		outputs, err := store.Outputs(ctx, b.ID)
		if err != nil {
			return historyError(formatter, err)
		}
		detail := BuildDetail{Build: b, Outputs: outputs}
		if formatter.Format == "json" {
			return formatter.Success(detail)
		}
		outputBuildText(formatter.Writer, detail)
		return nil

	default:
		builds, err := store.Builds(ctx, opts.Limit)
		if err != nil {
			return historyError(formatter, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(builds)
		}
		outputBuildsText(formatter.Writer, builds)
		return nil
	}
}

func historyError(formatter *OutputFormatter, err error) error {
	if errors.Is(err, history.ErrNotFound) {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitFailure, "unknown build", err)
	}
	_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
	return WrapExitError(ExitFailure, "history query failed", err)
}

func outputBuildsText(w io.Writer, builds []history.Build) {
	if len(builds) == 0 {
		fmt.Fprintln(w, "No builds recorded.")
		return
	}
	for _, b := range builds {
		fmt.Fprintf(w, "%s  %s  %-6s  %4d icons  %s@%s\n",
			b.ID, b.StartedAt.Format(time.RFC3339), b.Status, b.Icons, b.PackageName, b.PackageVersion)
	}
}

func outputBuildText(w io.Writer, d BuildDetail) {
	b := d.Build
	fmt.Fprintf(w, "Build:    %s\n", b.ID)
	fmt.Fprintf(w, "Status:   %s\n", b.Status)
	if b.Message != "" {
		fmt.Fprintf(w, "Message:  %s\n", b.Message)
	}
	fmt.Fprintf(w, "Package:  %s@%s\n", b.PackageName, b.PackageVersion)
	fmt.Fprintf(w, "Tool:     %s\n", b.ToolVersion)
	fmt.Fprintf(w, "Icons:    %d\n", b.Icons)
	fmt.Fprintf(w, "Started:  %s\n", b.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", b.FinishedAt.Sub(b.StartedAt))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Outputs ===")
	if len(d.Outputs) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, o := range d.Outputs {
		fmt.Fprintf(w, "  %-40s %8d  %s\n", o.Path, o.Size, o.SHA256[:12])
	}
}

func outputAllocationsText(w io.Writer, allocations []history.Allocation) {
	if len(allocations) == 0 {
		fmt.Fprintln(w, "No codepoints allocated.")
		return
	}
	for _, a := range allocations {
		fmt.Fprintf(w, "%s  %-30s  %s\n", a.Codepoint, a.Name, a.Version)
	}
}
