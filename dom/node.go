package dom

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of an attribute on a node, or "".
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the node carries the attribute.
func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces an attribute on a node.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// ClassList returns the node's classes as a slice.
func ClassList(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// CollectText gathers all text content under a node, whitespace-collapsed
// and trimmed.
func CollectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return CollapseWhitespace(sb.String())
}

// Render serialises a node subtree back to HTML.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Detach removes a node from its parent. No-op when already detached.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertAfter inserts newNode as the next sibling of ref.
func InsertAfter(ref, newNode *html.Node) {
	if ref == nil || ref.Parent == nil {
		return
	}
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(newNode, ref.NextSibling)
	} else {
		ref.Parent.AppendChild(newNode)
	}
}

var multiSpaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace folds runs of whitespace into single spaces and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}
