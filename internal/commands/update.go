package commands

import (
	"github.com/spf13/cobra"

	"omnibust/internal/engine"
)

var updateFlags runFlags

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh tokens of already-busted references",
	Long: `Scans code files for references that already carry a bust token and
refreshes each token whose asset changed. References without a token are left
alone; use 'rewrite' to bust those too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(&updateFlags, engine.ModeUpdate, 0)
	},
}

func init() {
	addRunFlags(updateCmd, &updateFlags)
}
