package feedpage

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewAffordance builds the affordance subtree for a logical identity: a
// wrapper carrying the presence marker and the trigger button. fallback
// switches on the block-level styling class used for tier-3 placement.
// The browser applier renders this same subtree into the live page.
func NewAffordance(logicalID string, fallback bool) *html.Node {
	class := AffordanceClass
	if fallback {
		class += " " + FallbackClass
	}

	wrapper := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr: []html.Attribute{
			{Key: AffordanceAttr, Val: logicalID},
			{Key: "class", Val: class},
		},
	}

	button := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Button,
		Data:     "button",
		Attr: []html.Attribute{
			{Key: "type", Val: "button"},
			{Key: "class", Val: AffordanceClass + "__trigger"},
			{Key: ActionAttr, Val: ActionTrigger},
		},
	}
	button.AppendChild(&html.Node{Type: html.TextNode, Data: "Generate"})
	wrapper.AppendChild(button)

	return wrapper
}

// AffordanceID returns the logical identity an affordance node was inserted
// for (the marker attribute's value).
func AffordanceID(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == AffordanceAttr {
			return a.Val
		}
	}
	return ""
}
