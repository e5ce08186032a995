package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/mcat-prep/backend/internal/config"
	"github.com/mcat-prep/backend/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "mcatgen",
	Short:        "Generate and inspect MCAT practice questions",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the environment and builds a logger that writes to
// stderr so stdout stays machine readable.
func loadConfig(cmd *cobra.Command) (config.Config, *logrus.Entry) {
	cfg := config.Load()
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	log := logging.NewLogger("mcatgen", cfg.LogLevel)
	log.Logger.SetOutput(os.Stderr)
	return cfg, log
}
