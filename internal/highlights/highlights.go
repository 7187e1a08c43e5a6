// Package highlights indexes book-highlight notes by ASIN so pulled entries
// can link [asin:...] tokens to them.
package highlights

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
)

type noteMeta struct {
	ASIN string `yaml:"asin" toml:"asin"`
}

// LoadASINIndex walks dir and maps the "asin" front-matter value of every
// Markdown note to the note's file name. Notes without front matter or
// without an asin are ignored; a missing dir yields an empty index.
func LoadASINIndex(dir string) (map[string]string, error) {
	index := make(map[string]string)
	if dir == "" {
		return index, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return index, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var meta noteMeta
		if _, err := frontmatter.Parse(bytes.NewReader(data), &meta); err != nil {
			return nil
		}
		if asin := strings.ToUpper(strings.TrimSpace(meta.ASIN)); asin != "" {
			index[asin] = d.Name()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading highlights from %s: %w", dir, err)
	}
	return index, nil
}
