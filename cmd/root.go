package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/hatena-sync/internal/config"
)

var (
	configPath string
	verbose    bool
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "hatena-sync",
	Short: "Sync Hatena Blog entries with a local Markdown directory",
	Long: `hatena-sync mirrors a Hatena Blog into a directory of Markdown files with
YAML front matter and pushes local drafts back through the AtomPub API.

Posts live in <local_dir>/published, <local_dir>/draft and <local_dir>/feature.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the configuration file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(previewCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case "text", "":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	default:
		return fmt.Errorf("invalid --log-format %q (want text or json)", logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig reads the file named by --config.
func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}
