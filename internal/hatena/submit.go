package hatena

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/Tiliavir/hatena-sync/internal/model"
)

// MarkdownContentType marks a submitted body as Markdown.
const MarkdownContentType = "text/x-markdown"

// Submission is an entry to create or update.
type Submission struct {
	Title      string
	Content    string
	Categories []string
	Draft      bool
}

type submissionXML struct {
	XMLName    xml.Name          `xml:"entry"`
	Xmlns      string            `xml:"xmlns,attr"`
	XmlnsApp   string            `xml:"xmlns:app,attr"`
	Title      string            `xml:"title"`
	Content    atomContent       `xml:"content"`
	Categories []atomCategory    `xml:"category"`
	Control    submissionControl `xml:"app:control"`
}

type submissionControl struct {
	Draft string `xml:"app:draft"`
}

// Marshal renders the submission as an Atom entry document body.
func (s Submission) Marshal() ([]byte, error) {
	x := submissionXML{
		Xmlns:    atomNS,
		XmlnsApp: appNS,
		Title:    s.Title,
		Content:  atomContent{Type: MarkdownContentType, Body: s.Content},
		Control:  submissionControl{Draft: "no"},
	}
	for _, c := range s.Categories {
		x.Categories = append(x.Categories, atomCategory{Term: c})
	}
	if s.Draft {
		x.Control.Draft = "yes"
	}

	out, err := xml.MarshalIndent(x, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding entry: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// SubmitResult is what the server reported about a submitted entry. When the
// response could not be read, Incomplete is set and ID and Permalink are
// empty.
type SubmitResult struct {
	ID         string
	Permalink  string
	Incomplete bool
}

// Submit creates a new entry, or replaces the entry with the given ID when
// id is not empty.
func (c *Client) Submit(ctx context.Context, s Submission, id string) (SubmitResult, error) {
	body, err := s.Marshal()
	if err != nil {
		return SubmitResult{}, err
	}

	method, target := http.MethodPost, c.baseURL
	if id != "" {
		method = http.MethodPut
		target = strings.TrimRight(c.baseURL, "/") + "/" + model.IDSuffix(id)
	}

	data, err := c.do(ctx, method, target, body, http.StatusOK, http.StatusCreated)
	if err != nil {
		return SubmitResult{}, err
	}

	var entry atomEntry
	if err := xml.Unmarshal(data, &entry); err != nil {
		c.logger().Warn("could not parse submit response", "url", target, "error", err)
		return SubmitResult{Incomplete: true}, nil
	}
	e := entry.toModel()
	return SubmitResult{ID: e.ID, Permalink: e.Permalink}, nil
}
