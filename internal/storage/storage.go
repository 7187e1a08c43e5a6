// Package storage owns the local post tree: one Markdown file per entry with
// a YAML front-matter block, split into published/, draft/ and feature/.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/hatena-sync/internal/model"
	"github.com/Tiliavir/hatena-sync/internal/timecalc"
)

const (
	PublishedDir = "published"
	DraftDir     = "draft"
	FeatureDir   = "feature"

	// Ext is the extension of every post file.
	Ext = ".md"
)

// ErrPostExists is returned by NewDraft when the target file already exists.
var ErrPostExists = errors.New("post already exists")

// ContentError reports a local post that cannot be used, e.g. a file
// without front matter or without a title.
type ContentError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid post %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid post %s: %s", e.Path, e.Reason)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// Layout resolves the bucket directories below a local root.
type Layout struct {
	Root string
}

func (l Layout) Published() string { return filepath.Join(l.Root, PublishedDir) }
func (l Layout) Draft() string     { return filepath.Join(l.Root, DraftDir) }
func (l Layout) Feature() string   { return filepath.Join(l.Root, FeatureDir) }

// DirFor returns the directory a pulled entry with the given status belongs
// in. Unlisted entries live next to published ones.
func (l Layout) DirFor(s model.Status) string {
	if s == model.StatusDraft {
		return l.Draft()
	}
	return l.Published()
}

// WriteFile atomically writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// WritePost serializes front matter and body and writes them to path.
func WritePost(path string, fm model.FrontMatter, body string) error {
	return WriteFile(path, []byte(BuildFrontMatter(fm, body)))
}

// ReadPost loads and parses the post at path.
func ReadPost(path string) (model.LocalPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.LocalPost{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		reason := "malformed front matter"
		if errors.Is(err, ErrNoFrontMatter) {
			reason = "no front matter"
		}
		return model.LocalPost{}, &ContentError{Path: path, Reason: reason, Err: err}
	}
	return model.LocalPost{Path: path, FrontMatter: fm, Body: body}, nil
}

// ListMarkdown returns the sorted base names of the .md files directly in
// dir. A missing directory is empty.
func ListMarkdown(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Prune removes every .md file in dir whose name is not in keep and returns
// the names it removed. With dryRun set nothing is removed, but the names
// that would be are still returned.
func Prune(dir string, keep map[string]bool, dryRun bool) ([]string, error) {
	names, err := ListMarkdown(dir)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, name := range names {
		if keep[name] {
			continue
		}
		if !dryRun {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return removed, fmt.Errorf("storage error removing %s: %w", name, err)
			}
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// NewDraft creates feature/<name>.md under root with an empty front matter
// and returns its path. An existing file is never overwritten.
func NewDraft(root, name string, now time.Time) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("post name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("post name %q must not contain a path", name)
	}
	if !strings.HasSuffix(name, Ext) {
		name += Ext
	}
	path := filepath.Join(Layout{Root: root}.Feature(), name)

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s: %w", path, ErrPostExists)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("storage error checking %s: %w", path, err)
	}

	fm := model.FrontMatter{
		Date:   timecalc.FormatDate(now),
		Tags:   []string{},
		Status: model.StatusDraft,
	}
	if err := WritePost(path, fm, ""); err != nil {
		return "", err
	}
	return path, nil
}
