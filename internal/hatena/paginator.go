package hatena

import (
	"context"

	"github.com/Tiliavir/hatena-sync/internal/model"
)

// Paginator walks the collection page by page, following rel="next" links.
// Entries are yielded in feed order; an entry whose ID was already yielded is
// skipped. Iteration ends after the last page, at a page that yields no new
// entries, at a next link that was already visited, or at the first error.
//
//	p := client.Entries(ctx)
//	for p.Next() {
//		e := p.Entry()
//	}
//	if err := p.Err(); err != nil { ... }
type Paginator struct {
	client *Client
	ctx    context.Context

	next    string
	visited map[string]bool
	seen    map[string]bool

	page    []model.RemoteEntry
	fetched bool
	yielded int // entries yielded from the current page
	cur     model.RemoteEntry
	err     error
}

// Entries returns a Paginator starting at the collection's first page.
func (c *Client) Entries(ctx context.Context) *Paginator {
	return &Paginator{
		client:  c,
		ctx:     ctx,
		next:    c.baseURL,
		visited: make(map[string]bool),
		seen:    make(map[string]bool),
	}
}

// Next advances to the next entry, fetching pages as needed.
func (p *Paginator) Next() bool {
	for p.err == nil {
		if len(p.page) > 0 {
			e := p.page[0]
			p.page = p.page[1:]
			if e.ID != "" {
				if p.seen[e.ID] {
					continue
				}
				p.seen[e.ID] = true
			}
			p.cur = e
			p.yielded++
			return true
		}

		// Stop after a page made entirely of already seen entries.
		if p.fetched && p.yielded == 0 {
			p.client.logger().Debug("feed page yielded no new entries; stopping")
			return false
		}
		if p.next == "" || p.visited[p.next] {
			return false
		}
		pageURL := p.next
		p.visited[pageURL] = true

		entries, next, err := p.client.fetchPage(p.ctx, pageURL)
		if err != nil {
			p.err = err
			return false
		}
		p.client.logger().Debug("fetched feed page", "url", pageURL, "entries", len(entries))
		if len(entries) == 0 {
			p.next = ""
			return false
		}
		p.page = entries
		p.next = next
		p.fetched = true
		p.yielded = 0
	}
	return false
}

// Entry returns the entry Next advanced to.
func (p *Paginator) Entry() model.RemoteEntry {
	return p.cur
}

// Err returns the error that stopped the iteration, if any.
func (p *Paginator) Err() error {
	return p.err
}
