package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the validated hatena-sync configuration, usually config.json in
// the working directory. JSON files support single-line // comments.
type Config struct {
	Username string `json:"username" yaml:"username"`
	BlogID   string `json:"blog_id" yaml:"blog_id"`
	APIKey   string `json:"api_key" yaml:"api_key"`
	// LocalDir is the root holding published/, draft/ and feature/.
	LocalDir string `json:"local_dir" yaml:"local_dir"`
	// CustomDomains are the hosts the blog is served from, e.g. "blog.example.com".
	// Entry links pointing at them are rewritten to local links on pull.
	CustomDomains []string `json:"custom_domains" yaml:"custom_domains"`
	// HighlightsDir holds book highlight notes carrying an "asin" front-matter key.
	HighlightsDir string `json:"highlights_dir" yaml:"highlights_dir"`
	// Auth selects the Authorization scheme: "wsse", "basic" or "bearer".
	Auth string `json:"auth" yaml:"auth"`
	// Endpoint overrides the AtomPub collection URL.
	Endpoint       string `json:"endpoint" yaml:"endpoint"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

const (
	// DefaultLocalDir is used when local_dir is not set.
	DefaultLocalDir = "posts"
	// DefaultAuth is Hatena's documented AtomPub authentication.
	DefaultAuth = "wsse"
	// DefaultTimeoutSeconds bounds a single HTTP request.
	DefaultTimeoutSeconds = 30
	// DefaultPath is the config file looked up when --config is not given.
	DefaultPath = "config.json"

	atomEndpointFormat = "https://blog.hatena.ne.jp/%s/%s/atom/entry"
)

// Error reports a configuration problem. It is returned before any network
// activity takes place.
type Error struct {
	Path    string
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing keys in config: %s", strings.Join(e.Missing, ", "))
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the configuration at path, applies a .env file next to the
// working directory and HATENA_* environment overrides, fills defaults and
// validates the result.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Path: path, Err: fmt.Errorf("reading config file: %w", err)}
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}

	applyEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes raw config bytes. ext selects YAML for ".yaml"/".yml";
// anything else is treated as commented JSON.
func Parse(data []byte, ext string) (Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing JSON: %w", err)
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"HATENA_USERNAME", &cfg.Username},
		{"HATENA_BLOG_ID", &cfg.BlogID},
		{"HATENA_API_KEY", &cfg.APIKey},
		{"HATENA_LOCAL_DIR", &cfg.LocalDir},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

// applyDefaults fills zero-value optional fields with built-in defaults.
func (c *Config) applyDefaults() {
	if c.LocalDir == "" {
		c.LocalDir = DefaultLocalDir
	}
	if c.Auth == "" {
		c.Auth = DefaultAuth
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Validate checks that required keys are present and enumerations are known.
func (c *Config) Validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.BlogID == "" {
		missing = append(missing, "blog_id")
	}
	if c.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &Error{Missing: missing}
	}

	switch c.Auth {
	case "", "wsse", "basic", "bearer":
	default:
		return &Error{Err: fmt.Errorf("unknown auth %q (want wsse, basic or bearer)", c.Auth)}
	}
	return nil
}

// FeedURL returns the AtomPub collection URL for the configured blog.
func (c Config) FeedURL() string {
	if c.Endpoint != "" {
		return strings.TrimRight(c.Endpoint, "/")
	}
	return fmt.Sprintf(atomEndpointFormat, c.Username, c.BlogID)
}

// Timeout is the per-request HTTP timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
