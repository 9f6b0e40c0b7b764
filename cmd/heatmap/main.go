package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	err := rootCmd.Execute()
	logging.Close()
	if err != nil {
		reportError(os.Stderr, err, verbose)
		os.Exit(errors.ExitCode(err))
	}
}

// reportError prints err, with type, context and stack when verbose
func reportError(w io.Writer, err error, verbose bool) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if !verbose {
		return
	}
	if detail := errors.Detail(err); detail != "" {
		fmt.Fprintf(w, "\n%s", detail)
	}
}

var rootCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Commit sentiment heatmap and burnout signals for git repositories",
	Long: `heatmap classifies the emotional tone of commit messages, aggregates it
into a timeline with a moving average, and flags stretches of history where
high-stress commits cluster.

The burnout score is a heuristic rubric, not a calibrated measurement.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}

		level, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return errors.ConfigErrorf("logging.level: %v", err)
		}
		if verbose {
			level = slog.LevelDebug
		}
		return logging.Initialize(logging.Config{
			Level:      level,
			OutputFile: cfg.Logging.File,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .heatmap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Set custom version template
	rootCmd.SetVersionTemplate(`heatmap {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(configureCmd)
}
