package feedpage

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/feedloom/dom"
)

// Markup conventions for the affordance subtree feedloom owns inside the
// host page. The attribute marks physical presence; its value carries the
// logical identity the affordance was inserted for.
const (
	AffordanceAttr  = "data-feedloom-affordance"
	AffordanceClass = "feedloom-affordance"
	// FallbackClass marks a block-level tier-3 placement.
	FallbackClass = "feedloom-affordance--fallback"
	// PanelClass marks the expanded generated-content panel.
	PanelClass = "feedloom-panel"
)

// Action markers on clickable controls inside an affordance. A delegated
// in-page listener reads the attribute and reports the action.
const (
	ActionAttr = "data-feedloom-action"

	ActionTrigger    = "trigger"
	ActionGenerate   = "generate"
	ActionRegenerate = "regenerate"
	ActionAccept     = "accept"
	ActionClose      = "close"
)

// Snapshot is one parsed view of the live page. It is immutable from the
// core's perspective: a later page mutation produces a new Snapshot.
type Snapshot struct {
	doc *html.Node
	sig *Signatures
}

// Parse reads an HTML document into a Snapshot.
func Parse(r io.Reader, sig *Signatures) (*Snapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("feedpage: parse: %w", err)
	}
	return NewSnapshot(doc, sig), nil
}

// ParseString is a convenience wrapper around [Parse].
func ParseString(src string, sig *Signatures) (*Snapshot, error) {
	return Parse(strings.NewReader(src), sig)
}

// NewSnapshot wraps an already-parsed document.
func NewSnapshot(doc *html.Node, sig *Signatures) *Snapshot {
	if sig == nil {
		sig = Default()
	}
	return &Snapshot{doc: doc, sig: sig}
}

// Doc exposes the underlying document, needed by appliers and tests.
func (s *Snapshot) Doc() *html.Node { return s.doc }

// Signatures returns the signature set this snapshot was scanned with.
func (s *Snapshot) Signatures() *Signatures { return s.sig }

// Items enumerates candidate feed items: the union of the item selectors,
// de-duplicated, in document order. Nodes inside a feedloom affordance are
// never items.
func (s *Snapshot) Items() []*Item {
	seen := make(map[*html.Node]bool)
	var ordered []*html.Node

	for _, sel := range s.sig.Items {
		for _, n := range dom.QuerySelectorAll(s.doc, sel) {
			if seen[n] || insideAffordance(n) {
				continue
			}
			seen[n] = true
			ordered = append(ordered, n)
		}
	}

	// Union order follows selector-list order; re-sort into document order
	// so ordinal identity (tier 4) is stable across signature permutations.
	ordered = sortDocumentOrder(s.doc, seen, len(ordered))

	items := make([]*Item, len(ordered))
	for i, n := range ordered {
		items[i] = &Item{Node: n, sig: s.sig}
	}
	return items
}

// Affordances returns every physically present affordance in document order.
func (s *Snapshot) Affordances() []*html.Node {
	return dom.QuerySelectorAll(s.doc, "["+AffordanceAttr+"]")
}

// ItemFor returns the nearest ancestor item containing n, or nil.
func (s *Snapshot) ItemFor(n *html.Node) *Item {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		for _, sel := range s.sig.Items {
			if dom.Matches(cur, lastSimple(sel)) {
				return &Item{Node: cur, sig: s.sig}
			}
		}
	}
	return nil
}

// sortDocumentOrder walks the tree once collecting the flagged nodes.
func sortDocumentOrder(doc *html.Node, flagged map[*html.Node]bool, n int) []*html.Node {
	out := make([]*html.Node, 0, n)
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if flagged[node] {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func insideAffordance(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if dom.HasAttr(cur, AffordanceAttr) {
			return true
		}
	}
	return false
}

// lastSimple strips descendant combinators: ItemFor matches ancestors
// against the final simple selector of each item signature.
func lastSimple(sel string) string {
	parts := strings.Fields(sel)
	if len(parts) == 0 {
		return sel
	}
	return parts[len(parts)-1]
}
