// Package dom provides the DOM utilities the reconciliation core runs on:
// a small CSS-selector engine over golang.org/x/net/html trees, node
// helpers, and stable XPath addressing for nodes that must be located again
// inside the live page.
//
// The selector engine supports the subset the page signatures need:
//   - tag:            "button", "div"
//   - .class:         ".feed-item" (multiple: "div.a.b")
//   - #id:            "#main"
//   - [attr]:         "div[data-urn]"
//   - [attr=val]:     "div[role=article]"
//   - [attr^=val]:    "button[aria-label^=Comment]"
//   - [attr*=val]:    "div[class*=comments]"
//   - descendant combinator via spaces: ".feed-item .actions button"
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// QuerySelectorAll returns all element nodes under root (inclusive) matching
// the selector, in document order.
func QuerySelectorAll(root *html.Node, selector string) []*html.Node {
	parts := strings.Fields(selector)
	if len(parts) == 0 || root == nil {
		return nil
	}

	matches := matchSimple(root, parts[0])
	for i := 1; i < len(parts); i++ {
		var next []*html.Node
		for _, parent := range matches {
			for _, m := range matchSimple(parent, parts[i]) {
				if m != parent {
					next = append(next, m)
				}
			}
		}
		matches = dedupeNodes(next)
	}
	return matches
}

// QuerySelector returns the first match in document order, or nil.
func QuerySelector(root *html.Node, selector string) *html.Node {
	all := QuerySelectorAll(root, selector)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// Matches reports whether the node itself matches a single simple selector
// (no combinators).
func Matches(n *html.Node, selector string) bool {
	return matchesSelector(n, parseSimpleSelector(selector))
}

// Closest walks from n upward (inclusive) and returns the first ancestor
// matching the simple selector, or nil.
func Closest(n *html.Node, selector string) *html.Node {
	m := parseSimpleSelector(selector)
	for cur := n; cur != nil; cur = cur.Parent {
		if matchesSelector(cur, m) {
			return cur
		}
	}
	return nil
}

func matchSimple(root *html.Node, sel string) []*html.Node {
	m := parseSimpleSelector(sel)
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if matchesSelector(n, m) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

type attrMatch struct {
	key string
	val string
	op  byte // 0 = presence, '=' exact, '^' prefix, '*' substring
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

// parseSimpleSelector parses "tag.a.b#id[attr^=val]" style selectors.
func parseSimpleSelector(sel string) simpleSelector {
	var s simpleSelector

	// Attribute selectors, possibly several.
	for {
		idx := strings.IndexByte(sel, '[')
		if idx < 0 {
			break
		}
		end := strings.IndexByte(sel[idx:], ']')
		if end < 0 {
			break
		}
		attrPart := sel[idx+1 : idx+end]
		sel = sel[:idx] + sel[idx+end+1:]

		var am attrMatch
		if eq := strings.IndexByte(attrPart, '='); eq >= 0 {
			key := attrPart[:eq]
			am.val = strings.Trim(attrPart[eq+1:], `"'`)
			switch {
			case strings.HasSuffix(key, "^"):
				am.op, am.key = '^', key[:len(key)-1]
			case strings.HasSuffix(key, "*"):
				am.op, am.key = '*', key[:len(key)-1]
			default:
				am.op, am.key = '=', key
			}
		} else {
			am.key = attrPart
		}
		s.attrs = append(s.attrs, am)
	}

	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		rest := sel[idx+1:]
		if dot := strings.IndexByte(rest, '.'); dot >= 0 {
			s.id = rest[:dot]
			sel = sel[:idx] + rest[dot:]
		} else {
			s.id = rest
			sel = sel[:idx]
		}
	}

	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		s.classes = strings.Split(sel[idx+1:], ".")
		sel = sel[:idx]
	}

	s.tag = sel
	return s
}

func matchesSelector(n *html.Node, s simpleSelector) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && s.tag != "*" && n.Data != s.tag {
		return false
	}
	if s.id != "" && Attr(n, "id") != s.id {
		return false
	}
	if len(s.classes) > 0 {
		have := strings.Fields(Attr(n, "class"))
		for _, want := range s.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, am := range s.attrs {
		if !HasAttr(n, am.key) {
			return false
		}
		val := Attr(n, am.key)
		switch am.op {
		case '=':
			if val != am.val {
				return false
			}
		case '^':
			if !strings.HasPrefix(val, am.val) {
				return false
			}
		case '*':
			if !strings.Contains(val, am.val) {
				return false
			}
		}
	}
	return true
}

// dedupeNodes removes duplicate pointers preserving first-seen order.
func dedupeNodes(nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}
	seen := make(map[*html.Node]bool, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
