package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tablescope/internal/config"
	"github.com/KaramelBytes/tablescope/internal/logger"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tablescope",
	Short: "tablescope: CSV data screens in the browser and on the terminal",
	Long: `tablescope loads CSV files (Korean codepages and compressed files included),
filters, aggregates and ranks them, and renders the results as charts and tables.
Run "tablescope serve" for the web screens or use inspect, rank and export directly.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tablescope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so local commands still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	level := cfg.LogLevel
	if rootCmd.PersistentFlags().Changed("log-level") && logLevel != "" {
		level = logLevel
	}
	if debug {
		level = "debug"
	}
	logger.SetLevel(level)
}

// currentConfig returns the loaded configuration, or defaults when no
// initializer ran.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}
