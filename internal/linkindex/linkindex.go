// Package linkindex maps published entry URLs to local filenames and back.
// Indexes are rebuilt on every run and never persisted.
package linkindex

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tiliavir/hatena-sync/internal/markup"
	"github.com/Tiliavir/hatena-sync/internal/model"
	"github.com/Tiliavir/hatena-sync/internal/storage"
)

const untitled = "untitled"

// Filename returns the local file name for an entry: the permalink path
// after "/entry/" with slashes turned into dashes, or the sanitized title
// when the entry has no permalink.
func Filename(e model.RemoteEntry) string {
	if i := strings.Index(e.Permalink, "/entry/"); i >= 0 {
		slug := strings.Trim(e.Permalink[i+len("/entry/"):], "/")
		if slug != "" {
			return strings.ReplaceAll(slug, "/", "-") + storage.Ext
		}
	}
	name := strings.ReplaceAll(strings.TrimSpace(e.Title), "/", "_")
	if name == "" {
		name = untitled
	}
	return name + storage.Ext
}

// Index maps normalized entry URLs to local filenames and display titles.
type Index struct {
	URLToFilename map[string]string
	URLToTitle    map[string]string
}

// Build indexes every entry under its permalink and, when the identifier is
// itself a URL, under its identifier. It must run over the complete entry set
// before any body is rewritten so links to later entries resolve.
func Build(entries []model.RemoteEntry, filename func(model.RemoteEntry) string) *Index {
	if filename == nil {
		filename = Filename
	}
	idx := &Index{
		URLToFilename: make(map[string]string, len(entries)),
		URLToTitle:    make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		name := filepath.Base(filename(e))
		title := e.DisplayTitle()
		for _, u := range []string{e.Permalink, e.ID} {
			if !isURL(u) {
				continue
			}
			key := markup.NormalizeURL(u)
			idx.URLToFilename[key] = name
			if title != "" {
				idx.URLToTitle[key] = title
			}
		}
	}
	return idx
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// ScanPermalinks reads the front matter of every post in dirs and maps file
// name to permalink. Posts without a permalink or with unreadable front
// matter are skipped. Later directories win on name clashes.
func ScanPermalinks(logger *slog.Logger, dirs ...string) (map[string]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	index := make(map[string]string)
	for _, dir := range dirs {
		names, err := storage.ListMarkdown(dir)
		if err != nil {
			return nil, fmt.Errorf("scanning permalinks: %w", err)
		}
		for _, name := range names {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("scanning permalinks: %w", err)
			}
			fm, _, err := storage.ParseFrontMatter(data)
			if err != nil {
				logger.Debug("skipping post without usable front matter", "path", path, "error", err)
				continue
			}
			if p := strings.TrimSpace(fm.Permalink); p != "" {
				index[name] = p
			}
		}
	}
	return index, nil
}
