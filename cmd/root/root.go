// Package root contains the root command for the application
package root

import (
	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/config"
	"github.com/finsift/finsift/internal/logging"
)

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// Cfg is the loaded application configuration, available to all commands
	// after PersistentPreRun.
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "finsift",
		Short: "A rule-based transaction description classifier.",
		Long: `finsift classifies free-form transaction descriptions into spending
categories using a keyword catalog with exact-phrase overrides. It runs as a
one-shot CLI, a CSV batch processor, or an HTTP service.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to finsift!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			Cfg = config.GetGlobalConfig()
			Log = logging.NewLogrusAdapter(Cfg.Log.Level, Cfg.Log.Format)
		},
	}

	// Shared command flags
	Text       string
	Amount     string
	Input      string
	Output     string
	NoRedis    bool
	CatalogArg string
)

// Init sets up persistent flags on the root command.
func Init() {
	Cmd.PersistentFlags().StringVarP(&CatalogArg, "catalog", "c", "", "Path to the category catalog file (overrides configuration)")
}

// CatalogFile returns the catalog file to load: the --catalog flag when set,
// otherwise the configured path.
func CatalogFile() string {
	if CatalogArg != "" {
		return CatalogArg
	}
	return Cfg.Catalog.File
}
