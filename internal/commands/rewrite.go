package commands

import (
	"github.com/spf13/cobra"

	"omnibust/internal/engine"
	"omnibust/internal/scanner"
)

var rewriteFlags struct {
	runFlags
	toFilename    bool
	toQuerystring bool
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Bust plain references and refresh existing tokens",
	Long: `Like 'update', but additionally busts plain references to known static
assets. Freshly busted references use the encoding from the 'target' config
key; --filename or --querystring converts every reference to that encoding.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var target scanner.Kind
		if rewriteFlags.toFilename {
			target = scanner.KindFilename
		}
		if rewriteFlags.toQuerystring {
			target = scanner.KindQuery
		}
		return executeRun(&rewriteFlags.runFlags, engine.ModeRewrite, target)
	},
}

func init() {
	addRunFlags(rewriteCmd, &rewriteFlags.runFlags)
	rewriteCmd.Flags().BoolVar(&rewriteFlags.toFilename, "filename", false, "Rewrite all references to filename busting")
	rewriteCmd.Flags().BoolVar(&rewriteFlags.toQuerystring, "querystring", false, "Rewrite all references to query-string busting")
	rewriteCmd.MarkFlagsMutuallyExclusive("filename", "querystring")
}
