// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/trendy-repos/internal/config"
	"github.com/naka-gawa/trendy-repos/internal/gateway"
)

const (
	exitFatal       = 1
	exitRecoverable = 2
)

var (
	settings   = config.New()
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "trendy-repos",
	Short: "A CLI tool to list trending GitHub repositories.",
	Long: `trendy-repos lists the most starred GitHub repositories created after
a given date, using the GitHub search API. Results are printed as JSON.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitFatal)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	flags.StringVar(&configFile, "config", "", "Path to a config file (yaml, json or toml)")
	flags.String("base-url", gateway.DefaultBaseURL, "Root of the GitHub REST API")
	flags.Duration("timeout", gateway.DefaultTimeout, "Timeout for a single API request")

	_ = settings.BindPFlag(config.KeyVerbose, flags.Lookup("verbose"))
	_ = settings.BindPFlag(config.KeyBaseURL, flags.Lookup("base-url"))
	_ = settings.BindPFlag(config.KeyTimeout, flags.Lookup("timeout"))
}

// newGateway loads configuration and wires the logger and gateway shared by commands.
// The caller owns the gateway and must Close it.
func newGateway() (*gateway.RepoSearchGateway, *zap.Logger, error) {
	cfg, err := config.Load(settings, configFile)
	if err != nil {
		return nil, nil, err
	}

	// Default: discard all logs.
	logger := zap.NewNop()
	if cfg.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	gw, err := gateway.NewRepoSearchGateway(cfg.GatewayOptions(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search gateway: %w", err)
	}
	return gw, logger, nil
}

// writeJSON prints v as pretty-printed JSON.
func writeJSON(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
