package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tiliavir/hatena-sync/internal/blogsync"
	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/hatena"
)

var pushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Submit a local post to the blog as a draft",
	Long: `Creates the entry when the post has no id yet, otherwise updates it.
[[file]] links to pulled posts become links to the published entries.
The updated post is written to draft/; posts pushed from feature/ are moved.`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, err = push(cmd, cfg, hatena.NewClient(cfg), args[0])
	return err
}

func push(cmd *cobra.Command, cfg config.Config, remote blogsync.Submitter, path string) (blogsync.PushResult, error) {
	return blogsync.Push(cmd.Context(), cfg, remote, path, blogsync.PushOptions{Out: cmd.OutOrStdout()})
}
