package cli

import (
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the manifest, config and glyphs without building",
		Long: `Check the manifest, the font-build file and every glyph without
renaming files, writing configuration or compiling fonts.

Reports the icons a build would add and the files it would rename, and
fails with the same icon errors a build would report. Faster than build
for development feedback.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, cmd, true)
		},
	}

	return cmd
}
