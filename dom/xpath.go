package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// PathTo computes an absolute positional XPath for an element node, e.g.
// /html/body/div[2]/ul/li[3]. The path is stable for as long as the page's
// structure above the node does not change; it is the address used to locate
// the same element again inside the live page.
func PathTo(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var parts []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		idx := 1
		total := 1
		if cur.Parent != nil {
			idx = 0
			total = 0
			for s := cur.Parent.FirstChild; s != nil; s = s.NextSibling {
				if s.Type == html.ElementNode && s.Data == cur.Data {
					total++
					if s == cur {
						idx = total
					}
				}
			}
		}
		if total > 1 {
			parts = append(parts, fmt.Sprintf("%s[%d]", cur.Data, idx))
		} else {
			parts = append(parts, cur.Data)
		}
	}

	// Reverse into root-first order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// FindPath resolves an absolute positional XPath produced by [PathTo] against
// a parsed document. Returns nil when any step fails to match.
func FindPath(doc *html.Node, xpath string) *html.Node {
	xpath = strings.TrimPrefix(strings.TrimSpace(xpath), "/")
	if xpath == "" || doc == nil {
		return nil
	}

	current := doc
	for _, step := range strings.Split(xpath, "/") {
		tag, pos := parsePathStep(step)
		if tag == "" {
			return nil
		}
		var next *html.Node
		count := 0
		for c := current.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				count++
				if count == pos {
					next = c
					break
				}
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// parsePathStep parses "div" or "div[3]" into tag and 1-based position.
func parsePathStep(step string) (string, int) {
	idx := strings.IndexByte(step, '[')
	if idx < 0 {
		return step, 1
	}
	tag := step[:idx]
	posStr := strings.TrimRight(step[idx+1:], "]")
	pos, err := strconv.Atoi(posStr)
	if err != nil || pos < 1 {
		return "", 0
	}
	return tag, pos
}
