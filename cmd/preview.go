package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tiliavir/hatena-sync/internal/preview"
	"github.com/Tiliavir/hatena-sync/internal/storage"
)

var (
	previewOutput    string
	previewHardWraps bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Render a local post to HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Write the HTML page to this file instead of stdout")
	previewCmd.Flags().BoolVar(&previewHardWraps, "hard-wraps", true, "Render single newlines as line breaks")
}

func runPreview(cmd *cobra.Command, args []string) error {
	post, err := storage.ReadPost(args[0])
	if err != nil {
		return err
	}
	page, err := preview.Page(post, preview.Options{HardWraps: previewHardWraps})
	if err != nil {
		return err
	}
	if previewOutput != "" {
		return storage.WriteFile(previewOutput, page)
	}
	_, err = cmd.OutOrStdout().Write(page)
	return err
}
