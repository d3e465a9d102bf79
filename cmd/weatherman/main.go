// Command weatherman runs a forecasting job described by a JSON or YAML request file.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bryanwhiting/weatherman/config"
	"github.com/bryanwhiting/weatherman/request"
	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand
type rootFlags struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "weatherman",
		Short:         "Backtest and forecast time series",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (YAML)")

	rootCmd.AddCommand(runCmd(flags))
	rootCmd.AddCommand(validateCmd())
	return rootCmd
}

// setupLogger installs the configured slog handler as the default logger
func setupLogger(cfg *config.Config, w io.Writer) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	handlerOpt := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(w, handlerOpt)
	if strings.EqualFold(cfg.Log.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpt)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// readRequest decodes the request file by extension and applies overrides before normalizing.
// Keys in overrides replace the file's.
func readRequest(path string, overrides map[string]any) (*request.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read request, %w", err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = request.DecodeYAML(data)
	default:
		raw, err = request.DecodeJSON(data)
	}
	if err != nil {
		return nil, err
	}

	for k, v := range overrides {
		raw[k] = v
	}
	return request.Normalize(raw)
}
