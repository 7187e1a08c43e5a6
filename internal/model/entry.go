package model

import (
	"strings"
	"time"
)

// Status is the publication state recorded in a local post's front matter.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusUnlisted  Status = "unlisted"
	StatusPublished Status = "published"
)

// RemoteEntry is one blog entry as read from the AtomPub feed.
// Optional feed fields are represented by their zero value.
type RemoteEntry struct {
	ID          string
	Title       string
	Permalink   string
	EditURL     string
	Content     string
	ContentType string
	Syntax      string
	Updated     time.Time
	Published   time.Time
	Tags        []string
	Category    string
	Draft       bool
	Unlisted    bool
}

// Status classifies the entry. Draft wins over unlisted.
func (e RemoteEntry) Status() Status {
	switch {
	case e.Draft:
		return StatusDraft
	case e.Unlisted:
		return StatusUnlisted
	default:
		return StatusPublished
	}
}

// IsMarkdown reports whether the entry body is already Markdown.
func (e RemoteEntry) IsMarkdown() bool {
	return strings.EqualFold(e.Syntax, "markdown") || strings.EqualFold(e.ContentType, "text/x-markdown")
}

// IDSuffix returns the entry's numeric part, i.e. everything after the last
// "-" of an identifier like "tag:blog.hatena.ne.jp,2013:blog-user-1-2".
func (e RemoteEntry) IDSuffix() string {
	return IDSuffix(e.ID)
}

// IDSuffix is the string form of RemoteEntry.IDSuffix, used for identifiers
// read back from front matter.
func IDSuffix(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "-"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// DisplayTitle is the entry title, trimmed.
func (e RemoteEntry) DisplayTitle() string {
	return strings.TrimSpace(e.Title)
}
