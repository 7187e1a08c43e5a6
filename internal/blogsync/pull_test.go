package blogsync_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/hatena-sync/internal/blogsync"
	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/model"
)

type fakeFetcher struct {
	entries []model.RemoteEntry
	err     error
}

func (f fakeFetcher) FetchAll(context.Context) ([]model.RemoteEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Pull converts bodies in place; hand out a copy so runs stay independent.
	return append([]model.RemoteEntry(nil), f.entries...), nil
}

var jst = time.FixedZone("JST", 9*60*60)

func remoteEntries() []model.RemoteEntry {
	return []model.RemoteEntry{
		{
			ID:          "tag:blog-1",
			Title:       "First",
			Permalink:   "https://blog.example.com/entry/2024/01/01/first",
			Content:     "* Heading\nsee https://blog.example.com/entry/second\n[asin:B0G13D2JS4:detail]",
			ContentType: "text/x-hatena-syntax",
			Published:   time.Date(2024, 1, 1, 9, 0, 0, 0, jst),
			Updated:     time.Date(2024, 1, 2, 10, 0, 0, 0, jst),
			Tags:        []string{"Go"},
			Category:    "Go",
		},
		{
			ID:        "tag:blog-2",
			Title:     "Second",
			Permalink: "https://blog.example.com/entry/second",
			Content:   "# Already markdown\n''left alone''",
			Syntax:    "markdown",
			Updated:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Draft:     true,
		},
		{
			ID:        "tag:blog-3",
			Title:     "Third",
			Permalink: "https://blog.example.com/entry/third",
			Content:   "hidden",
			Updated:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Unlisted:  true,
		},
	}
}

func seed(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPull(t *testing.T) {
	root := t.TempDir()
	seed(t, root, map[string]string{
		"published/stale.md": "old",
		"draft/gone.md":      "old",
		"feature/wip.md":     "work in progress",
	})
	cfg := config.Config{LocalDir: root, CustomDomains: []string{"https://blog.example.com/"}}
	opts := blogsync.PullOptions{
		ASINIndex: map[string]string{"B0G13D2JS4": "book.md"},
		Out:       &bytes.Buffer{},
	}

	res, err := blogsync.Pull(context.Background(), cfg, fakeFetcher{entries: remoteEntries()}, opts)
	require.NoError(t, err)
	assert.Equal(t, blogsync.SyncResult{Written: 3, Deleted: 2, Drafts: 1, Published: 1, Unlisted: 1}, res)

	want := `---
title: "First"
date: 2024-01-01
updated: 2024-01-02T10:00:00+09:00
tags: ["Go"]
status: published
category: "Go"
permalink: "https://blog.example.com/entry/2024/01/01/first"
id: "tag:blog-1"
---

# Heading
see [[second.md|Second]]
『[[book]]』`
	assert.Equal(t, want, readFile(t, filepath.Join(root, "published", "2024-01-01-first.md")))

	draft := readFile(t, filepath.Join(root, "draft", "second.md"))
	assert.Contains(t, draft, "status: draft\n")
	assert.Contains(t, draft, "date: 2024-02-01\n")
	assert.Contains(t, draft, "tags: []\n")
	assert.Contains(t, draft, "# Already markdown\n''left alone''")

	assert.Contains(t, readFile(t, filepath.Join(root, "published", "third.md")), "status: unlisted\n")

	for _, gone := range []string{"published/stale.md", "draft/gone.md"} {
		_, err := os.Stat(filepath.Join(root, gone))
		assert.True(t, os.IsNotExist(err), "%s should be deleted", gone)
	}
	assert.Equal(t, "work in progress", readFile(t, filepath.Join(root, "feature", "wip.md")))
}

func TestPullIsIdempotent(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{LocalDir: root, CustomDomains: []string{"blog.example.com"}}
	remote := fakeFetcher{entries: remoteEntries()}
	opts := blogsync.PullOptions{Out: &bytes.Buffer{}}

	_, err := blogsync.Pull(context.Background(), cfg, remote, opts)
	require.NoError(t, err)
	first := readFile(t, filepath.Join(root, "published", "2024-01-01-first.md"))

	res, err := blogsync.Pull(context.Background(), cfg, remote, opts)
	require.NoError(t, err)
	assert.Equal(t, blogsync.SyncResult{Unchanged: 3, Drafts: 1, Published: 1, Unlisted: 1}, res)
	assert.Equal(t, first, readFile(t, filepath.Join(root, "published", "2024-01-01-first.md")))
}

func TestPullStatusChangeMovesPost(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{LocalDir: root}
	entries := remoteEntries()
	opts := blogsync.PullOptions{Out: &bytes.Buffer{}}

	_, err := blogsync.Pull(context.Background(), cfg, fakeFetcher{entries: entries}, opts)
	require.NoError(t, err)

	entries[1].Draft = false
	res, err := blogsync.Pull(context.Background(), cfg, fakeFetcher{entries: entries}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)

	_, err = os.Stat(filepath.Join(root, "draft", "second.md"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, readFile(t, filepath.Join(root, "published", "second.md")), "status: published\n")
}

func TestPullWithoutCustomDomainsKeepsLinks(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{LocalDir: root}

	_, err := blogsync.Pull(context.Background(), cfg, fakeFetcher{entries: remoteEntries()}, blogsync.PullOptions{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	body := readFile(t, filepath.Join(root, "published", "2024-01-01-first.md"))
	assert.Contains(t, body, "see https://blog.example.com/entry/second\n")
	assert.Contains(t, body, "[asin:B0G13D2JS4:detail]")
}

func TestPullDryRun(t *testing.T) {
	root := t.TempDir()
	seed(t, root, map[string]string{"published/stale.md": "old"})
	cfg := config.Config{LocalDir: root}

	res, err := blogsync.Pull(context.Background(), cfg, fakeFetcher{entries: remoteEntries()},
		blogsync.PullOptions{DryRun: true, Out: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Written)
	assert.Equal(t, 1, res.Deleted)

	_, err = os.Stat(filepath.Join(root, "draft"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, "old", readFile(t, filepath.Join(root, "published", "stale.md")))
}

func TestPullFetchErrorWritesNothing(t *testing.T) {
	root := t.TempDir()
	seed(t, root, map[string]string{"published/keep.md": "old"})
	boom := errors.New("network down")

	_, err := blogsync.Pull(context.Background(), config.Config{LocalDir: root}, fakeFetcher{err: boom}, blogsync.PullOptions{Out: &bytes.Buffer{}})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "old", readFile(t, filepath.Join(root, "published", "keep.md")))
}
