package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"omnibust/internal/config"
	"omnibust/internal/logging"
)

var (
	verbose bool
	quiet   bool
	cfgFile string
	project string
	version string
	commit  string
	date    string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "omnibust",
	Short: "Omnibust - cachebusting asset reference rewriter",
	Long: `Omnibust scans your project for references to static assets, computes a
content-derived bust token per asset, and rewrites each reference in place so
browser and CDN caches fetch fresh copies when assets change.

References round-trip through three encodings: plain, filename-embedded
(app_cb_<token>.js) and query-string (app.js?_cb_=<token>).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose, quiet)
		var (
			loaded config.Config
			err    error
		)
		if cfgFile != "" {
			loaded, err = config.LoadFile(cfgFile)
		} else {
			loaded, err = config.Load(project)
		}
		if err != nil {
			slog.Warn("Failed to load config file", "error", err)
			cfg = config.Default()
		} else {
			cfg = loaded
		}
	},
}

// Execute runs the root command with injected build info.
func Execute(v, c, d string) error {
	version = v
	commit = c
	date = d
	return rootCmd.Execute()
}

// GetVersion returns the current version.
func GetVersion() string {
	return version
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Only log errors")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: omnibust.yaml in the project dir)")
	rootCmd.PersistentFlags().StringVarP(&project, "project", "p", ".", "Project directory to scan")
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(versionCmd)
}
