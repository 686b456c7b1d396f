package commands

import (
	"github.com/spf13/cobra"

	"omnibust/internal/engine"
)

var scanFlags runFlags

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report references without modifying anything",
	Long: `Scans the project and reports every reference, its resolved static files
and whether its token is current, without writing any file. Equivalent to
'rewrite --dry-run'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scanFlags.dryRun = true
		return executeRun(&scanFlags, engine.ModeRewrite, 0)
	},
}

func init() {
	addRunFlags(scanCmd, &scanFlags)
	// A scan never writes, so hide the knob that implies otherwise.
	_ = scanCmd.Flags().MarkHidden("dry-run")
}
