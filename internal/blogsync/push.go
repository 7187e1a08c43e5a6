package blogsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/hatena"
	"github.com/Tiliavir/hatena-sync/internal/linkindex"
	"github.com/Tiliavir/hatena-sync/internal/markup"
	"github.com/Tiliavir/hatena-sync/internal/model"
	"github.com/Tiliavir/hatena-sync/internal/storage"
	"github.com/Tiliavir/hatena-sync/internal/timecalc"
)

// Submitter creates or updates a remote entry. *hatena.Client implements it.
type Submitter interface {
	Submit(ctx context.Context, s hatena.Submission, id string) (hatena.SubmitResult, error)
}

// PushOptions configures a push.
type PushOptions struct {
	// Now stamps the "updated" field. Defaults to time.Now.
	Now    func() time.Time
	Out    io.Writer
	Logger *slog.Logger
}

// PushResult describes a pushed post.
type PushResult struct {
	// Path is where the updated post was written.
	Path      string
	ID        string
	Permalink string
	// Created is set when the entry did not exist remotely before.
	Created bool
	// Incomplete is set when the server's reply could not be read, so ID and
	// Permalink may be stale.
	Incomplete bool
	// Removed is the feature/ source file deleted after the move, if any.
	Removed string
}

// Push submits the post at path as a draft and writes the updated post into
// draft/. Posts pushed from feature/ are moved there.
func Push(ctx context.Context, cfg config.Config, remote Submitter, path string, opts PushOptions) (PushResult, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	post, err := storage.ReadPost(path)
	if err != nil {
		return PushResult{}, err
	}
	fm := post.FrontMatter
	if strings.TrimSpace(fm.Title) == "" {
		return PushResult{}, &storage.ContentError{Path: path, Reason: "missing title"}
	}

	layout := storage.Layout{Root: cfg.LocalDir}
	filenameToURL, err := linkindex.ScanPermalinks(log, layout.Draft(), layout.Published())
	if err != nil {
		return PushResult{}, err
	}

	sub := hatena.Submission{
		Title:      fm.Title,
		Content:    markup.RewriteLocalLinksToRemote(post.Body, filenameToURL),
		Categories: categories(fm),
		Draft:      true,
	}
	res, err := remote.Submit(ctx, sub, fm.ID)
	if err != nil {
		return PushResult{}, fmt.Errorf("submitting %s: %w", path, err)
	}
	if res.Incomplete {
		log.Warn("entry submitted but the response could not be read; id and permalink not updated", "path", path)
	}

	result := PushResult{Created: fm.ID == "", Incomplete: res.Incomplete}
	if res.ID != "" {
		fm.ID = res.ID
	}
	if res.Permalink != "" {
		fm.Permalink = res.Permalink
	}
	fm.Updated = timecalc.FormatTimestamp(now())
	fm.Status = model.StatusDraft

	target := filepath.Join(layout.Draft(), filepath.Base(path))
	if err := storage.WritePost(target, fm, post.Body); err != nil {
		return PushResult{}, err
	}
	result.Path = target
	result.ID = fm.ID
	result.Permalink = fm.Permalink

	if inDir(path, layout.Feature()) && !samePath(path, target) {
		if err := os.Remove(path); err != nil {
			return result, fmt.Errorf("removing %s after push: %w", path, err)
		}
		result.Removed = path
	}

	verb := "Updated"
	if result.Created {
		verb = "Created"
	}
	fmt.Fprintf(out, "  ↑ %s: %s → %s\n", verb, fm.Title, target)
	return result, nil
}

// categories returns the tags plus the category when it is not a tag already.
func categories(fm model.FrontMatter) []string {
	cats := append([]string(nil), fm.Tags...)
	if c := strings.TrimSpace(fm.Category); c != "" && !slices.Contains(cats, c) {
		cats = append(cats, c)
	}
	return cats
}

func inDir(path, dir string) bool {
	return samePath(filepath.Dir(path), dir)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
