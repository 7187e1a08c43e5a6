package storage

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/hatena-sync/internal/model"
)

// ErrNoFrontMatter is returned when a file does not start with a --- block.
var ErrNoFrontMatter = errors.New("no front matter")

const delimiter = "---"

var yamlFormat = frontmatter.NewFormat(delimiter, delimiter, yaml.Unmarshal)

// ParseFrontMatter splits a post into its front matter and body. The blank
// line separating the two is not part of the body.
func ParseFrontMatter(data []byte) (model.FrontMatter, string, error) {
	var fm model.FrontMatter
	rest, err := frontmatter.MustParse(bytes.NewReader(data), &fm, yamlFormat)
	if errors.Is(err, frontmatter.ErrNotFound) {
		return model.FrontMatter{}, "", ErrNoFrontMatter
	}
	if err != nil {
		return model.FrontMatter{}, "", fmt.Errorf("parse front matter: %w", err)
	}
	return fm, trimSeparator(string(rest)), nil
}

// trimSeparator drops the single blank line after the closing delimiter.
// Further leading blank lines belong to the body.
func trimSeparator(rest string) string {
	if r, ok := strings.CutPrefix(rest, "\r\n"); ok {
		return r
	}
	return strings.TrimPrefix(rest, "\n")
}

// BuildFrontMatter renders fm and body as a post file. Keys are always
// written in the same order so unchanged entries produce identical files.
func BuildFrontMatter(fm model.FrontMatter, body string) string {
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	fmt.Fprintf(&b, "title: %s\n", strconv.Quote(fm.Title))
	fmt.Fprintf(&b, "date: %s\n", plain(fm.Date))
	fmt.Fprintf(&b, "updated: %s\n", plain(fm.Updated))
	fmt.Fprintf(&b, "tags: %s\n", flowList(fm.Tags))
	fmt.Fprintf(&b, "status: %s\n", plain(string(fm.Status)))
	fmt.Fprintf(&b, "category: %s\n", strconv.Quote(fm.Category))
	fmt.Fprintf(&b, "permalink: %s\n", strconv.Quote(fm.Permalink))
	fmt.Fprintf(&b, "id: %s\n", strconv.Quote(fm.ID))
	b.WriteString(delimiter + "\n\n")
	b.WriteString(body)
	return b.String()
}

// plain writes dates and enumerations unquoted; empty values become "".
func plain(s string) string {
	if s == "" {
		return `""`
	}
	return s
}

func flowList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
