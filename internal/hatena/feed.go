package hatena

import (
	"strings"

	"github.com/Tiliavir/hatena-sync/internal/model"
	"github.com/Tiliavir/hatena-sync/internal/timecalc"
)

const (
	atomNS = "http://www.w3.org/2005/Atom"
	appNS  = "http://www.w3.org/2007/app"
)

// atomFeed is one page of the AtomPub collection. Tags carry no namespace so
// elements match by local name, e.g. both <draft> and <app:draft>.
type atomFeed struct {
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomControl struct {
	Draft    string `xml:"draft"`
	Unlisted string `xml:"unlisted"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Updated    string         `xml:"updated"`
	Published  string         `xml:"published"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
	Content    atomContent    `xml:"content"`
	Control    atomControl    `xml:"control"`
	Draft      string         `xml:"draft"`
	Unlisted   string         `xml:"unlisted"`
	Syntax     string         `xml:"syntax"`
}

func linkHref(links []atomLink, rel string) string {
	for _, l := range links {
		if l.Rel == rel {
			return strings.TrimSpace(l.Href)
		}
	}
	return ""
}

func yes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

// toModel converts a decoded entry. Unparsable dates become the zero time.
func (a atomEntry) toModel() model.RemoteEntry {
	e := model.RemoteEntry{
		ID:          strings.TrimSpace(a.ID),
		Title:       a.Title,
		Permalink:   linkHref(a.Links, "alternate"),
		EditURL:     linkHref(a.Links, "edit"),
		Content:     a.Content.Body,
		ContentType: strings.TrimSpace(a.Content.Type),
		Syntax:      strings.TrimSpace(a.Syntax),
	}
	e.Updated, _ = timecalc.ParseFeedTime(strings.TrimSpace(a.Updated))
	e.Published, _ = timecalc.ParseFeedTime(strings.TrimSpace(a.Published))

	for _, c := range a.Categories {
		if term := strings.TrimSpace(c.Term); term != "" {
			e.Tags = append(e.Tags, term)
		}
	}
	if len(e.Tags) > 0 {
		e.Category = e.Tags[0]
	}

	e.Draft = yes(a.Draft) || yes(a.Control.Draft)
	e.Unlisted = !e.Draft && (yes(a.Unlisted) || yes(a.Control.Unlisted))
	return e
}
