package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var verbose bool

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "thedesk",
	Short: "thedesk - reading and writing journal with reflective insights",
	Long: `thedesk serves a personal reading and writing journal.

Run "thedesk serve" to start the HTTP gateway, or "thedesk insight --file entries.json"
to produce a one-off insight from a JSON array of entries.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, insightCmd)
}

// newLogger builds the process logger. Local runs get the development
// encoder; everything else logs JSON.
func newLogger(appEnv string) (*zap.Logger, error) {
	var cfg zap.Config
	if appEnv == "" || strings.EqualFold(appEnv, "local") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
