// Package blogsync reconciles the local post tree with the remote blog.
package blogsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/linkindex"
	"github.com/Tiliavir/hatena-sync/internal/markup"
	"github.com/Tiliavir/hatena-sync/internal/model"
	"github.com/Tiliavir/hatena-sync/internal/storage"
	"github.com/Tiliavir/hatena-sync/internal/timecalc"
)

// Fetcher lists every remote entry. *hatena.Client implements it.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]model.RemoteEntry, error)
}

// SyncResult holds counters for a pull.
type SyncResult struct {
	Written   int
	Unchanged int
	Deleted   int
	Drafts    int
	Published int
	Unlisted  int
}

// PullOptions configures a pull.
type PullOptions struct {
	// DryRun computes the result without touching the file system.
	DryRun bool
	// ASINIndex maps ASINs to highlight note names; see highlights.LoadASINIndex.
	ASINIndex map[string]string
	// Out receives progress lines. Defaults to os.Stdout.
	Out    io.Writer
	Logger *slog.Logger
}

func (o PullOptions) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

func (o PullOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Pull mirrors every remote entry into cfg.LocalDir: drafts into draft/,
// published and unlisted entries into published/. Local posts in those two
// directories that no longer correspond to a remote entry are deleted.
// Nothing is written when fetching fails.
func Pull(ctx context.Context, cfg config.Config, remote Fetcher, opts PullOptions) (SyncResult, error) {
	var result SyncResult
	out := opts.out()
	log := opts.logger()

	entries, err := remote.FetchAll(ctx)
	if err != nil {
		return result, fmt.Errorf("fetching entries: %w", err)
	}
	log.Debug("fetched entries", "count", len(entries))

	for i := range entries {
		if !entries[i].IsMarkdown() {
			entries[i].Content = markup.NativeToMarkdown(entries[i].Content)
		}
	}

	// The index must cover every entry before any body is rewritten.
	idx := linkindex.Build(entries, linkindex.Filename)
	pattern := markup.EntryLinkPattern(cfg.CustomDomains)

	layout := storage.Layout{Root: cfg.LocalDir}
	seen := map[string]map[string]bool{
		layout.Published(): {},
		layout.Draft():     {},
	}

	for _, e := range entries {
		status := e.Status()
		dir := layout.DirFor(status)
		name := linkindex.Filename(e)
		path := filepath.Join(dir, name)

		body := e.Content
		if pattern != nil {
			body = markup.RewriteEntryLinksToLocal(body, pattern, idx.URLToFilename, idx.URLToTitle)
		}
		if len(opts.ASINIndex) > 0 {
			body = markup.RewriteAsinTokens(body, opts.ASINIndex)
		}

		content := []byte(storage.BuildFrontMatter(frontMatterFor(e), body))
		if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
			fmt.Fprintf(out, "  – Unchanged: %s\n", name)
			result.Unchanged++
		} else {
			if !opts.DryRun {
				if err := storage.WriteFile(path, content); err != nil {
					return result, fmt.Errorf("writing %s: %w", path, err)
				}
			}
			fmt.Fprintf(out, "  ✓ Written:   %s/%s (%s)\n", filepath.Base(dir), name, status)
			result.Written++
		}
		seen[dir][name] = true

		switch status {
		case model.StatusDraft:
			result.Drafts++
		case model.StatusUnlisted:
			result.Unlisted++
		default:
			result.Published++
		}
	}

	for _, dir := range []string{layout.Published(), layout.Draft()} {
		removed, err := storage.Prune(dir, seen[dir], opts.DryRun)
		for _, name := range removed {
			fmt.Fprintf(out, "  ✗ Deleted:   %s/%s\n", filepath.Base(dir), name)
		}
		result.Deleted += len(removed)
		if err != nil {
			return result, fmt.Errorf("removing stale posts: %w", err)
		}
	}
	return result, nil
}

func frontMatterFor(e model.RemoteEntry) model.FrontMatter {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.FrontMatter{
		Title:     e.DisplayTitle(),
		Date:      timecalc.FormatDate(timecalc.EntryDate(e.Published, e.Updated)),
		Updated:   timecalc.FormatTimestamp(e.Updated),
		Tags:      tags,
		Status:    e.Status(),
		Category:  e.Category,
		Permalink: e.Permalink,
		ID:        e.ID,
	}
}
