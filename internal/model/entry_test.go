package model_test

import (
	"testing"

	"github.com/Tiliavir/hatena-sync/internal/model"
)

func TestRemoteEntryStatus(t *testing.T) {
	tests := []struct {
		draft, unlisted bool
		want            model.Status
	}{
		{false, false, model.StatusPublished},
		{false, true, model.StatusUnlisted},
		{true, false, model.StatusDraft},
		{true, true, model.StatusDraft},
	}
	for _, tt := range tests {
		e := model.RemoteEntry{Draft: tt.draft, Unlisted: tt.unlisted}
		if got := e.Status(); got != tt.want {
			t.Errorf("Status(draft=%v, unlisted=%v) = %q, want %q", tt.draft, tt.unlisted, got, tt.want)
		}
	}
}

func TestRemoteEntryIsMarkdown(t *testing.T) {
	tests := []struct {
		syntax, contentType string
		want                bool
	}{
		{"markdown", "", true},
		{"Markdown", "text/x-hatena-syntax", true},
		{"", "text/x-markdown", true},
		{"", "text/x-hatena-syntax", false},
		{"hatena", "text/html", false},
		{"", "", false},
	}
	for _, tt := range tests {
		e := model.RemoteEntry{Syntax: tt.syntax, ContentType: tt.contentType}
		if got := e.IsMarkdown(); got != tt.want {
			t.Errorf("IsMarkdown(%q, %q) = %v, want %v", tt.syntax, tt.contentType, got, tt.want)
		}
	}
}

func TestIDSuffix(t *testing.T) {
	tests := map[string]string{
		"tag:blog.hatena.ne.jp,2013:blog-user-12345-67890": "67890",
		"plain":   "plain",
		"":        "",
		" a-b-c ": "c",
	}
	for id, want := range tests {
		if got := model.IDSuffix(id); got != want {
			t.Errorf("IDSuffix(%q) = %q, want %q", id, got, want)
		}
	}
	if got := (model.RemoteEntry{ID: "x-1"}).IDSuffix(); got != "1" {
		t.Errorf("RemoteEntry.IDSuffix() = %q, want %q", got, "1")
	}
}
