// Package preview renders local posts to HTML for a quick look before pushing.
package preview

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/Tiliavir/hatena-sync/internal/model"
)

// Options tunes rendering.
type Options struct {
	// HardWraps renders single newlines as <br>, as Hatena's Markdown mode does.
	HardWraps bool
	// Safe drops raw HTML from the output.
	Safe bool
}

func newEngine(opts Options) goldmark.Markdown {
	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}
	if !opts.Safe {
		rendererOptions = append(rendererOptions, gmhtml.WithUnsafe())
	}
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

// Render converts a Markdown body to an HTML fragment.
func Render(markdown []byte, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := newEngine(opts).Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// Page renders a post as a standalone HTML document titled after the post.
func Page(post model.LocalPost, opts Options) ([]byte, error) {
	body, err := Render([]byte(post.Body), opts)
	if err != nil {
		return nil, err
	}
	title := html.EscapeString(post.FrontMatter.Title)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", title)
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", title)
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}
