package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/hatena"
	"github.com/Tiliavir/hatena-sync/internal/storage"
)

func writeConfig(t *testing.T, localDir string) string {
	t.Helper()
	for _, k := range []string{"HATENA_USERNAME", "HATENA_BLOG_ID", "HATENA_API_KEY", "HATENA_LOCAL_DIR"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "config.json")
	body := fmt.Sprintf(`{"username":"test","blog_id":"test.hatenablog.com","api_key":"xxx","local_dir":%q}`, localDir)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func executeCommand(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNewCreatesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	out, err := executeCommand("new", "2024-01-01-test", "-c", cfgPath)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	created := filepath.Join(dir, "feature", "2024-01-01-test.md")
	if !strings.Contains(out, created) {
		t.Errorf("output %q does not mention %s", out, created)
	}
	data, err := os.ReadFile(created)
	if err != nil {
		t.Fatalf("reading created file: %v", err)
	}
	for _, want := range []string{"---", "title:", "status: draft"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("created file missing %q:\n%s", want, data)
		}
	}
}

func TestNewFileAlreadyExists(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	existing := filepath.Join(dir, "feature", "existing.md")
	if err := os.MkdirAll(filepath.Dir(existing), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := executeCommand("new", "existing", "-c", cfgPath)
	if !errors.Is(err, storage.ErrPostExists) {
		t.Fatalf("err = %v, want ErrPostExists", err)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "content" {
		t.Errorf("existing file was overwritten: %q", data)
	}
}

func TestMissingConfigKeys(t *testing.T) {
	for _, k := range []string{"HATENA_USERNAME", "HATENA_BLOG_ID", "HATENA_API_KEY", "HATENA_LOCAL_DIR"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"username":"u"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := executeCommand("pull", "-c", path)
	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *config.Error", err)
	}
	if got, want := err.Error(), "missing keys in config: api_key, blog_id"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestSyncRejectsUnknownDirection(t *testing.T) {
	_, err := executeCommand("sync", "--direction", "sideways", "-c", "unused.json")
	if err == nil || !strings.Contains(err.Error(), "invalid --direction") {
		t.Fatalf("err = %v, want invalid direction", err)
	}
	syncDirection = "both"
}

func TestSetupLoggingRejectsUnknownFormat(t *testing.T) {
	logFormat = "xml"
	defer func() { logFormat = "text" }()
	if err := setupLogging(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

const e2eFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:app="http://www.w3.org/2007/app">
<entry>
  <id>tag:blog.hatena.ne.jp,2013:blog-test-1-100</id>
  <link rel="alternate" type="text/html" href="https://blog.example.com/entry/hello"/>
  <title>Hello</title>
  <updated>2024-01-01T00:00:00Z</updated>
  <content type="text/x-hatena-syntax">* Hello</content>
  <app:control><app:draft>no</app:draft></app:control>
</entry>
</feed>`

const e2eCreated = `<?xml version="1.0" encoding="utf-8"?>
<entry xmlns="http://www.w3.org/2005/Atom">
  <id>tag:blog.hatena.ne.jp,2013:blog-test-1-200</id>
  <link rel="alternate" type="text/html" href="https://blog.example.com/entry/draft"/>
  <title>Draft</title>
</entry>`

func TestSyncPullThenPush(t *testing.T) {
	var posted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, e2eFeed)
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			posted = string(body)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, e2eCreated)
		default:
			http.Error(w, "unexpected", http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := config.Config{Username: "test", BlogID: "b", APIKey: "k", LocalDir: dir, Endpoint: srv.URL, Auth: "basic"}
	src := filepath.Join(dir, "feature", "draft.md")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("---\ntitle: \"Draft\"\n---\n\nSee [[hello.md]]"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &cobra.Command{}
	c.SetContext(context.Background())
	var out bytes.Buffer
	c.SetOut(&out)

	if err := syncPosts(c, cfg, hatena.NewClient(cfg), "both", false); err != nil {
		t.Fatalf("sync: %v", err)
	}

	pulled, err := storage.ReadPost(filepath.Join(dir, "published", "hello.md"))
	if err != nil {
		t.Fatalf("pulled post: %v", err)
	}
	if pulled.Body != "# Hello" {
		t.Errorf("pulled body = %q, want %q", pulled.Body, "# Hello")
	}

	if !strings.Contains(posted, "See [hello.md](https://blog.example.com/entry/hello)") {
		t.Errorf("submitted entry does not link the pulled post:\n%s", posted)
	}

	pushed, err := storage.ReadPost(filepath.Join(dir, "draft", "draft.md"))
	if err != nil {
		t.Fatalf("pushed post: %v", err)
	}
	if pushed.FrontMatter.ID != "tag:blog.hatena.ne.jp,2013:blog-test-1-200" {
		t.Errorf("pushed id = %q", pushed.FrontMatter.ID)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("feature source still present: %v", err)
	}
}
