package feedpage

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/feedloom/dom"
)

// Item is one candidate feed item: an opaque subtree owned by the host page.
// All accessors are read-only queries against the current DOM state; the
// backing node may be detached by the page at any time, in which case the
// queries simply return nothing.
type Item struct {
	Node *html.Node
	sig  *Signatures
}

// Signatures returns the signature set the item was enumerated with.
func (it *Item) Signatures() *Signatures { return it.sig }

// IdentityValue returns the value of the first explicit identity attribute
// present on the item, or "".
func (it *Item) IdentityValue() string {
	for _, attr := range it.sig.IdentityAttrs {
		if v := dom.Attr(it.Node, attr); v != "" {
			return v
		}
	}
	return ""
}

// DOMID returns the item's generic id attribute, or "".
func (it *Item) DOMID() string {
	return dom.Attr(it.Node, "id")
}

// Classes returns the item's style-class list.
func (it *Item) Classes() []string {
	return dom.ClassList(it.Node)
}

// ActionBar locates the structured action region, or nil.
func (it *Item) ActionBar() *html.Node {
	for _, sel := range it.sig.ActionBars {
		if n := dom.QuerySelector(it.Node, sel); n != nil && n != it.Node {
			return n
		}
	}
	return nil
}

// CommentControl locates a comment-action control under scope (pass the
// action bar, or the item node itself), or nil. First signature match wins.
func (it *Item) CommentControl(scope *html.Node) *html.Node {
	if scope == nil {
		scope = it.Node
	}
	for _, sel := range it.sig.CommentControls {
		if n := dom.QuerySelector(scope, sel); n != nil {
			return n
		}
	}
	return nil
}

// CommentInput locates an open comment editor region, or nil.
func (it *Item) CommentInput() *html.Node {
	for _, sel := range it.sig.CommentInputs {
		if n := dom.QuerySelector(it.Node, sel); n != nil {
			return n
		}
	}
	return nil
}

// SubmitControl locates the comment editor's submit button, or nil.
func (it *Item) SubmitControl() *html.Node {
	for _, sel := range it.sig.SubmitControls {
		if n := dom.QuerySelector(it.Node, sel); n != nil {
			return n
		}
	}
	return nil
}

// HasCommentSurface reports whether the item exposes any comment-action
// control or comment-input region. Short-circuits on the first match.
func (it *Item) HasCommentSurface() bool {
	if it.CommentControl(it.Node) != nil {
		return true
	}
	return it.CommentInput() != nil
}

// TextRegions returns the item's caption/body text nodes, in signature order.
func (it *Item) TextRegions() []*html.Node {
	var out []*html.Node
	for _, sel := range it.sig.TextRegions {
		out = append(out, dom.QuerySelectorAll(it.Node, sel)...)
	}
	return out
}

// HasMedia reports whether the item exposes a recognised media marker.
func (it *Item) HasMedia() bool {
	for _, sel := range it.sig.MediaMarkers {
		if dom.QuerySelector(it.Node, sel) != nil {
			return true
		}
	}
	return false
}

// Affordance returns the physically attached affordance under this item, or
// nil. This is a direct DOM query, deliberately independent of any registry
// bookkeeping.
func (it *Item) Affordance() *html.Node {
	return dom.QuerySelector(it.Node, "["+AffordanceAttr+"]")
}
