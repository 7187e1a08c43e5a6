package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/hatena-sync/internal/blogsync"
	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/hatena"
	"github.com/Tiliavir/hatena-sync/internal/storage"
)

var (
	syncDirection string
	syncDryRun    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull remote entries and push every post in feature/",
	Long: `With --direction both (the default) sync first pulls, then pushes each post
in feature/ as a draft. --direction pull or push runs only one half.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncDirection, "direction", "both", "Sync direction: pull, push or both")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Pull without writing; skips the push half")
}

// remote is what a full sync needs from the blog; *hatena.Client has both.
type remote interface {
	blogsync.Fetcher
	blogsync.Submitter
}

func runSync(cmd *cobra.Command, args []string) error {
	switch syncDirection {
	case "pull", "push", "both":
	default:
		return fmt.Errorf("invalid --direction %q (want pull, push or both)", syncDirection)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return syncPosts(cmd, cfg, hatena.NewClient(cfg), syncDirection, syncDryRun)
}

func syncPosts(cmd *cobra.Command, cfg config.Config, r remote, direction string, dryRun bool) error {
	if direction == "pull" || direction == "both" {
		if err := pull(cmd, cfg, r, dryRun); err != nil {
			return err
		}
	}
	if direction == "pull" || dryRun {
		return nil
	}

	feature := storage.Layout{Root: cfg.LocalDir}.Feature()
	names, err := storage.ListMarkdown(feature)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nPushing %d post(s) from %s...\n\n", len(names), feature)
	for _, name := range names {
		if _, err := push(cmd, cfg, r, filepath.Join(feature, name)); err != nil {
			return err
		}
	}
	return nil
}
