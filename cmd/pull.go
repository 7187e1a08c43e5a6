package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/hatena-sync/internal/blogsync"
	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/hatena"
	"github.com/Tiliavir/hatena-sync/internal/highlights"
)

var pullDryRun bool

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download every remote entry into the local directory",
	Long: `Fetches all entries, converts Hatena notation to Markdown, rewrites links
between entries to [[file|title]] links and writes published/ and draft/.
Local posts in those directories that no longer exist remotely are deleted.`,
	Args: cobra.NoArgs,
	RunE: runPull,
}

func init() {
	pullCmd.Flags().BoolVar(&pullDryRun, "dry-run", false, "Print planned operations without writing")
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return pull(cmd, cfg, hatena.NewClient(cfg), pullDryRun)
}

func pull(cmd *cobra.Command, cfg config.Config, remote blogsync.Fetcher, dryRun bool) error {
	out := cmd.OutOrStdout()

	asins, err := highlights.LoadASINIndex(cfg.HighlightsDir)
	if err != nil {
		slog.Warn("highlight notes unavailable, ASIN links stay as they are", "error", err)
		asins = nil
	}

	dryTag := ""
	if dryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Pulling entries into %s%s...\n\n", cfg.LocalDir, dryTag)

	result, err := blogsync.Pull(cmd.Context(), cfg, remote, blogsync.PullOptions{
		DryRun:    dryRun,
		ASINIndex: asins,
		Out:       out,
	})
	if err != nil {
		return err
	}
	printPullSummary(out, result)
	return nil
}

func printPullSummary(out io.Writer, r blogsync.SyncResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  %d written\n", r.Written)
	fmt.Fprintf(out, "  %d unchanged\n", r.Unchanged)
	fmt.Fprintf(out, "  %d deleted\n", r.Deleted)
	fmt.Fprintf(out, "  %d published, %d unlisted, %d drafts\n", r.Published, r.Unlisted, r.Drafts)
}
