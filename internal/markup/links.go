package markup

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	asinRe           = regexp.MustCompile(`\[asin:([A-Z0-9]+)(?::[^\]]*)?\]`)
	titledWikiLinkRe = regexp.MustCompile(`\[\[([^\[\]|]+)\|([^\[\]]+)\]\]`)
	plainWikiLinkRe  = regexp.MustCompile(`\[\[([^\[\]|]+)\]\]`)
)

// RewriteAsinTokens replaces [asin:ASIN:...] tokens whose ASIN has a local
// highlight note with 『[[note]]』. Unknown ASINs are left as they are.
func RewriteAsinTokens(text string, asinToName map[string]string) string {
	if len(asinToName) == 0 {
		return text
	}
	return asinRe.ReplaceAllStringFunc(text, func(match string) string {
		m := asinRe.FindStringSubmatch(match)
		name, ok := asinToName[m[1]]
		if !ok {
			return match
		}
		return "『[[" + strings.TrimSuffix(name, filepath.Ext(name)) + "]]』"
	})
}

// RewriteLocalLinksToRemote turns [[name|title]] and [[name]] links to known
// local posts into Markdown links to the published entry. ".md" is appended
// to name for the lookup when missing.
func RewriteLocalLinksToRemote(text string, filenameToURL map[string]string) string {
	if len(filenameToURL) == 0 {
		return text
	}
	lookup := func(name string) (string, bool) {
		name = strings.TrimSpace(name)
		if !strings.HasSuffix(name, ".md") {
			name += ".md"
		}
		u, ok := filenameToURL[name]
		return u, ok
	}

	text = titledWikiLinkRe.ReplaceAllStringFunc(text, func(match string) string {
		m := titledWikiLinkRe.FindStringSubmatch(match)
		u, ok := lookup(m[1])
		if !ok {
			return match
		}
		return "[" + m[2] + "](" + u + ")"
	})
	return plainWikiLinkRe.ReplaceAllStringFunc(text, func(match string) string {
		m := plainWikiLinkRe.FindStringSubmatch(match)
		u, ok := lookup(m[1])
		if !ok {
			return match
		}
		return "[" + m[1] + "](" + u + ")"
	})
}

// LinkPattern matches links to entries hosted on the blog's own domains.
// Build one with EntryLinkPattern.
type LinkPattern struct {
	// [text](url)
	markdown *regexp.Regexp
	// [url:embed], [url:title], [url:title=text], [url]
	bracketed *regexp.Regexp
	// url, url:embed, url=text
	bare *regexp.Regexp
}

// EntryLinkPattern compiles the entry-link matcher for the given custom
// domains. Schemes and trailing slashes are ignored. It returns nil when no
// usable domain is configured, which disables entry link rewriting.
func EntryLinkPattern(domains []string) *LinkPattern {
	var hosts []string
	for _, d := range domains {
		d = strings.TrimSpace(d)
		d = strings.TrimPrefix(d, "https://")
		d = strings.TrimPrefix(d, "http://")
		d = strings.TrimRight(d, "/")
		if d == "" {
			continue
		}
		hosts = append(hosts, regexp.QuoteMeta(d))
	}
	if len(hosts) == 0 {
		return nil
	}

	entryURL := `https?://(?:` + strings.Join(hosts, "|") + `)/entry/[^\s\[\]()<>"':=]+`
	suffix := `(:embed(?::cite)?)?(:title)?(?:=([^\]\n]*))?`
	return &LinkPattern{
		markdown:  regexp.MustCompile(`\[([^\[\]\n]*)\]\((` + entryURL + `)(?:\s+"[^"\n]*")?\)`),
		bracketed: regexp.MustCompile(`\[(` + entryURL + `)` + suffix + `\]`),
		bare:      regexp.MustCompile(`(` + entryURL + `)(:embed)?(?:=([^\s\]]*))?`),
	}
}

// RewriteEntryLinksToLocal replaces links to known entries with [[file|title]].
// The link's own title wins over the indexed title; without either the link
// is just [[file]]. Unknown entries and a nil pattern leave text unchanged.
func RewriteEntryLinksToLocal(text string, p *LinkPattern, urlToFilename, urlToTitle map[string]string) string {
	if p == nil || len(urlToFilename) == 0 {
		return text
	}
	local := func(match, rawURL, custom string) string {
		key := NormalizeURL(rawURL)
		filename, ok := urlToFilename[key]
		if !ok {
			return match
		}
		title := strings.TrimSpace(custom)
		if title == "" {
			title = urlToTitle[key]
		}
		if title == "" {
			return "[[" + filename + "]]"
		}
		return "[[" + filename + "|" + title + "]]"
	}

	text = p.markdown.ReplaceAllStringFunc(text, func(match string) string {
		m := p.markdown.FindStringSubmatch(match)
		custom := m[1]
		if custom == m[2] {
			custom = ""
		}
		return local(match, m[2], custom)
	})
	text = p.bracketed.ReplaceAllStringFunc(text, func(match string) string {
		m := p.bracketed.FindStringSubmatch(match)
		return local(match, m[1], m[4])
	})
	return replaceBare(text, p.bare, func(m []string) string {
		return local(m[0], m[1], m[3])
	})
}

// replaceBare is ReplaceAllStringFunc for bare URLs, skipping matches that sit
// inside other markup: an attribute value or a parenthesized link target.
func replaceBare(text string, re *regexp.Regexp, repl func(m []string) string) string {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start > 0 && strings.ContainsRune(`("'`, rune(text[start-1])) {
			continue
		}
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(text[last:start])
		b.WriteString(repl(m))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// NormalizeURL drops the scheme and trailing slashes so http/https and
// "/entry/x/" vs "/entry/x" index to the same key.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimRight(u, "/")
}
