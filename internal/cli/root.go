package cli

import (
	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
)

var (
	// Global flags
	logLevel  string
	logFormat string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "draftaid",
	Short: "Fantasy football draft aid",
	Long: `Draft aid for Sleeper drafts.

Loads your rankings CSV, matches it against the Sleeper player catalog and
keeps the board current as picks come in.

Examples:
  draftaid serve
  draftaid board --csv rankings.csv --draft-id 1124851234567890
  draftaid match --csv rankings.csv
  draftaid leagues list`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error), overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json|text), overrides LOG_FORMAT")
}

// setup loads configuration and initializes the logger before any command runs
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFormat != "" {
		c.LogFormat = logFormat
	}
	logger.InitWith(c.LogLevel, c.LogFormat, cmd.ErrOrStderr())
	cfg = c
	return nil
}
