// Package markup converts entry bodies between Hatena notation, Markdown and
// Obsidian-style [[links]]. Every function here is total: text that matches
// no rule is returned unchanged.
package markup

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe     = regexp.MustCompile(`^(\*{1,6})\s+(.*)$`)
	listRe        = regexp.MustCompile(`^-\s*(.*)$`)
	orderedListRe = regexp.MustCompile(`^\+\s*(.*)$`)
	quoteRe       = regexp.MustCompile(`^(>+)\s*(.*)$`)

	italicBoldRe = regexp.MustCompile(`'''''(.+?)'''''`)
	boldRe       = regexp.MustCompile(`'''(.+?)'''`)
	italicRe     = regexp.MustCompile(`''(.+?)''`)

	titledLinkRe = regexp.MustCompile(`\[(https?://[^\s\]]+?):title=([^\]]+)\]`)
	embedRe      = regexp.MustCompile(`\[(https?://[^\s\]]+?):embed(?::cite)?\]`)
	plainLinkRe  = regexp.MustCompile(`\[(https?://[^\s\]]+?)(?::title)?\]`)
	imageURLRe   = regexp.MustCompile(`(^|\s):(https?://[^\s\]\)]+)`)
	definitionRe = regexp.MustCompile(`^:([^:]+):(.+)$`)
	inlineQuote  = regexp.MustCompile(`^>>(.*)<<$`)
	preLineRe    = regexp.MustCompile(`^>\|(.*)\|<$`)
	footnoteRe   = regexp.MustCompile(`^\(\(((?:[^()]|\([^()]*\))+)\)\)$`)
	moreRe       = regexp.MustCompile(`^={4,}$`)
	texRe        = regexp.MustCompile(`\[tex:([^\]]+)\]`)
	contentsRe   = regexp.MustCompile(`^\[:contents\]$`)
	categoryRe   = regexp.MustCompile(`^\[([^\[\]:]+)\]$`)

	codeLangRe = regexp.MustCompile(`^>\|([A-Za-z0-9_+#.-]+)\|$`)
)

const fence = "```"

// lineRule rewrites a single physical line.
type lineRule struct {
	name  string
	apply func(string) string
}

// lineRules returns the per-line rules in application order. The footnote
// rule numbers definitions, so a fresh set is built for every document.
func lineRules() []lineRule {
	footnotes := 0
	return []lineRule{
		{"heading", func(line string) string {
			m := headingRe.FindStringSubmatch(line)
			if m == nil {
				return line
			}
			return strings.Repeat("#", len(m[1])) + " " + m[2]
		}},
		{"list", func(line string) string {
			if m := listRe.FindStringSubmatch(line); m != nil {
				return "- " + strings.TrimSpace(m[1])
			}
			if m := orderedListRe.FindStringSubmatch(line); m != nil {
				return "1. " + strings.TrimSpace(m[1])
			}
			return line
		}},
		{"quote", func(line string) string {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, ">>") || strings.HasPrefix(trimmed, ">|") || strings.HasSuffix(trimmed, "<<") {
				return line
			}
			m := quoteRe.FindStringSubmatch(line)
			if m == nil {
				return line
			}
			return m[1] + " " + strings.TrimSpace(m[2])
		}},
		{"emphasis", func(line string) string {
			line = italicBoldRe.ReplaceAllString(line, "*$1*")
			line = boldRe.ReplaceAllString(line, "**$1**")
			return italicRe.ReplaceAllString(line, "*$1*")
		}},
		{"titled-link", func(line string) string {
			return titledLinkRe.ReplaceAllString(line, "[$2]($1)")
		}},
		{"embed", func(line string) string {
			line = embedRe.ReplaceAllString(line, "$1")
			return plainLinkRe.ReplaceAllString(line, "[$1]($1)")
		}},
		{"image-url", func(line string) string {
			return imageURLRe.ReplaceAllString(line, "$1![]($2)")
		}},
		{"definition", func(line string) string {
			m := definitionRe.FindStringSubmatch(line)
			if m == nil {
				return line
			}
			return fmt.Sprintf("<dl><dt>%s</dt><dd>%s</dd></dl>", strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
		}},
		{"inline-quote", func(line string) string {
			m := inlineQuote.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				return line
			}
			return "> " + strings.TrimSpace(m[1])
		}},
		{"pre-line", func(line string) string {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, ">||") {
				return line
			}
			m := preLineRe.FindStringSubmatch(trimmed)
			if m == nil {
				return line
			}
			return fence + "\n" + m[1] + "\n" + fence
		}},
		{"footnote", func(line string) string {
			m := footnoteRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				return line
			}
			footnotes++
			return fmt.Sprintf("[^%d]: %s", footnotes, strings.TrimSpace(m[1]))
		}},
		{"more", func(line string) string {
			if moreRe.MatchString(strings.TrimSpace(line)) {
				return "<!-- more -->"
			}
			return line
		}},
		{"tex", func(line string) string {
			return texRe.ReplaceAllString(line, "$$$1$$")
		}},
		{"contents", func(line string) string {
			if contentsRe.MatchString(strings.TrimSpace(line)) {
				return "<!-- toc -->"
			}
			return line
		}},
		{"category", func(line string) string {
			m := categoryRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				return line
			}
			return "<!-- category: " + strings.TrimSpace(m[1]) + " -->"
		}},
	}
}

// blockState is the multi-line construct the converter is currently inside.
type blockState int

const (
	stateNormal blockState = iota
	stateQuote
	stateCode
)

// NativeToMarkdown converts a Hatena-notation body to Markdown.
//
// Each line outside a code block is passed through the line rules in order.
// A small state machine then tracks ">>" ... "<<" quote blocks and
// ">||" ... "||<" code blocks; code block contents are copied verbatim.
func NativeToMarkdown(text string) string {
	rules := lineRules()
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	state := stateNormal
	resume := stateNormal // state to return to after a code block
	emit := func(s string) {
		if state == stateQuote || (state == stateCode && resume == stateQuote) {
			if s == "" {
				out = append(out, ">")
				return
			}
			out = append(out, "> "+s)
			return
		}
		out = append(out, s)
	}

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)

		if state == stateCode {
			if strings.HasSuffix(trimmed, "||<") {
				if last := strings.TrimSuffix(trimmed, "||<"); last != "" {
					emit(last)
				}
				emit(fence)
				state = resume
				continue
			}
			emit(raw)
			continue
		}

		if inner, ok := oneLineCode(trimmed); ok {
			emit(fence)
			emit(inner)
			emit(fence)
			continue
		}
		if lang, ok := codeOpener(trimmed); ok {
			resume = state
			state = stateCode
			emit(fence + lang)
			continue
		}

		line := raw
		for _, r := range rules {
			line = r.apply(line)
		}
		converted := strings.TrimSpace(line)

		switch state {
		case stateNormal:
			if strings.HasPrefix(converted, ">>") {
				state = stateQuote
				if rest := strings.TrimSpace(strings.TrimPrefix(converted, ">>")); rest != "" {
					emit(rest)
				}
				continue
			}
			for _, l := range strings.Split(line, "\n") {
				emit(l)
			}
		case stateQuote:
			if strings.HasSuffix(converted, "<<") {
				rest := strings.TrimSpace(strings.TrimSuffix(converted, "<<"))
				if rest != "" {
					emit(rest)
				}
				state = stateNormal
				continue
			}
			for _, l := range strings.Split(line, "\n") {
				emit(l)
			}
		}
	}

	return strings.Join(out, "\n")
}

// oneLineCode recognizes a whole code block written on one line, ">||x||<".
func oneLineCode(trimmed string) (string, bool) {
	if len(trimmed) > len(">||||<") && strings.HasPrefix(trimmed, ">||") && strings.HasSuffix(trimmed, "||<") {
		return trimmed[len(">||") : len(trimmed)-len("||<")], true
	}
	return "", false
}

// codeOpener recognizes ">||" and ">|lang|" lines and returns the fence
// language, if any.
func codeOpener(trimmed string) (string, bool) {
	if strings.HasPrefix(trimmed, ">||") {
		return "", true
	}
	if m := codeLangRe.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	return "", false
}
